package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

type AuthService struct {
	Deps
	Tokens *auth.TokenService
}

func NewAuthService(deps Deps, tokens *auth.TokenService) *AuthService {
	return &AuthService{Deps: deps, Tokens: tokens}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager receptionist"`
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// Login checks the credentials and issues a bearer token. Every credential
// failure looks the same to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ? AND active = ?", strings.ToLower(strings.TrimSpace(req.Email)), true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, failure.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !isBcryptHash(user.Password) || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		s.log().WithField("user_id", user.ID).Warn("login rejected")
		return nil, failure.Unauthorized("invalid credentials")
	}

	token, expires, err := s.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, identity auth.Identity) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, identity.ID).Error; err != nil {
		return nil, notFound(err, "user not found")
	}
	return &user, nil
}

func (s *AuthService) CreateUser(ctx context.Context, identity auth.Identity, req CreateUserRequest) (*models.User, error) {
	if identity.Role != models.RoleAdmin {
		return nil, failure.Unauthorized("only admins can create users")
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hash),
		Role:     req.Role,
		Active:   true,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateError(err) {
			return nil, failure.Conflict("email already registered")
		}
		return nil, err
	}
	return &user, nil
}
