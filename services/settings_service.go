package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

type SettingsService struct {
	Deps
}

func NewSettingsService(deps Deps) *SettingsService {
	return &SettingsService{Deps: deps}
}

type HotelSettingsInput struct {
	Name       string  `json:"name" validate:"max=255"`
	Address    string  `json:"address"`
	Phone      string  `json:"phone" validate:"max=50"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Website    string  `json:"website"`
	Logo       string  `json:"logo"`
	GSTIN      string  `json:"gstin" validate:"max=20"`
	TaxPercent float64 `json:"taxPercent" validate:"gte=0,lte=100"`
}

// Get returns the single settings row, or an empty one before it was saved.
func (s *SettingsService) Get(ctx context.Context) (*models.HotelSetting, error) {
	var hotel models.HotelSetting
	if err := s.DB.WithContext(ctx).Order("id").First(&hotel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.HotelSetting{}, nil
		}
		return nil, err
	}
	return &hotel, nil
}

func (s *SettingsService) Update(ctx context.Context, in HotelSettingsInput) (*models.HotelSetting, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	hotel, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	hotel.Name = in.Name
	hotel.Address = in.Address
	hotel.Phone = in.Phone
	hotel.Email = in.Email
	hotel.Website = in.Website
	hotel.Logo = in.Logo
	hotel.GSTIN = in.GSTIN
	hotel.TaxPercent = in.TaxPercent

	// Save inserts when the row does not exist yet
	if err := s.DB.WithContext(ctx).Save(hotel).Error; err != nil {
		return nil, err
	}
	return hotel, nil
}
