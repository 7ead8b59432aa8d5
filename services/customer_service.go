package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/storage"
	"hotel-frontdesk/utils"
)

type CustomerService struct {
	Deps
	Storage storage.Storage
}

func NewCustomerService(deps Deps, store storage.Storage) *CustomerService {
	return &CustomerService{Deps: deps, Storage: store}
}

// ImageUpload carries a base64 data URI, e.g. "data:image/png;base64,...".
type ImageUpload struct {
	Image string `json:"image" validate:"required,mimetypes=image/jpeg image/png image/webp,maxfilesize=2"`
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, failure.BadRequestFromString("name is required")
	}
	c, err := resolveCustomer(s.DB.WithContext(ctx), 0, &in)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "customer not found")
	}
	return &c, nil
}

func (s *CustomerService) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, failure.BadRequestFromString("phone is required")
	}
	var c models.Customer
	if err := s.DB.WithContext(ctx).Where("phone = ?", phone).Order("id DESC").First(&c).Error; err != nil {
		return nil, notFound(err, "customer not found")
	}
	return &c, nil
}

func (s *CustomerService) List(ctx context.Context, search string, limit int) ([]models.Customer, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.WithContext(ctx).Order("id DESC").Limit(limit)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}
	var list []models.Customer
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve customers: %w", err)
	}
	return list, nil
}

// UploadImage stores an identity document image. The upload is validated
// before anything is written, and the stored object is removed again when the
// customer row cannot be saved.
func (s *CustomerService) UploadImage(ctx context.Context, customerID uint, in ImageUpload) (*models.Customer, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	contentType, data, err := utils.DecodeDataURI(in.Image)
	if err != nil {
		return nil, failure.BadRequest(err)
	}

	customer, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("customers/%d/%s.%s", customer.ID, uuid.NewString(), imageExtensions[contentType])
	url, err := s.Storage.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	var images []string
	if len(customer.Images) > 0 {
		if err := json.Unmarshal(customer.Images, &images); err != nil {
			s.log().WithError(err).WithField("customer_id", customer.ID).Warn("customer images column is not a list, resetting")
			images = nil
		}
	}
	images = append(images, url)
	raw, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", customer.ID).
		Update("images", datatypes.JSON(raw)).Error; err != nil {
		if derr := s.Storage.Delete(ctx, key); derr != nil {
			s.log().WithFields(logrus.Fields{"key": key, "error": derr}).Error("failed to remove orphaned upload")
		}
		return nil, err
	}
	customer.Images = datatypes.JSON(raw)
	return customer, nil
}
