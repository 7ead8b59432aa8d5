package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type AuthController struct {
	AuthSvc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{AuthSvc: svc}
}

// Login (POST /api/auth/login)
func (ctrl *AuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := ctrl.AuthSvc.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// Me (GET /api/auth/me)
func (ctrl *AuthController) Me(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	user, err := ctrl.AuthSvc.Me(c.Request.Context(), identity)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}

// CreateUser (POST /api/users), admins only.
func (ctrl *AuthController) CreateUser(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req services.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := ctrl.AuthSvc.CreateUser(c.Request.Context(), identity, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, user)
}
