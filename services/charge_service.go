package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

// ChargeService manages ancillary charges (models.Service) on bookings.
type ChargeService struct {
	Deps
}

func NewChargeService(deps Deps) *ChargeService {
	return &ChargeService{Deps: deps}
}

type ChargeInput struct {
	Name     string  `json:"name" validate:"required,max=150"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=1"`
}

func (s *ChargeService) Add(ctx context.Context, bookingID uint, in ChargeInput) (*models.Service, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}

	var svc models.Service
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(forUpdate).First(&booking, bookingID).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if booking.Status == models.BookingCancelled {
			return failure.Conflict("booking is cancelled")
		}
		svc = models.Service{
			BookingID: booking.ID,
			Name:      strings.TrimSpace(in.Name),
			Price:     utils.RoundMoney(in.Price),
			Quantity:  in.Quantity,
			Active:    true,
		}
		return tx.Create(&svc).Error
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}
	return &svc, nil
}

func (s *ChargeService) List(ctx context.Context, bookingID uint) ([]models.Service, error) {
	var list []models.Service
	err := s.DB.WithContext(ctx).
		Where("booking_id = ? AND active = ?", bookingID, true).
		Order("id").
		Find(&list).Error
	return list, err
}

func (s *ChargeService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Model(&models.Service{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return failure.NotFound("service not found")
	}
	return nil
}
