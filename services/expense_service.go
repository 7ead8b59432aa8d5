package services

import (
	"context"
	"strings"
	"time"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

type ExpenseService struct {
	Deps
}

func NewExpenseService(deps Deps) *ExpenseService {
	return &ExpenseService{Deps: deps}
}

type ExpenseInput struct {
	Category string               `json:"category" validate:"required,max=100"`
	Amount   float64              `json:"amount" validate:"gt=0"`
	Method   models.PaymentMethod `json:"method" validate:"gte=0,lte=2"`
	Date     string               `json:"date"`
	Note     string               `json:"note"`
}

func (s *ExpenseService) Create(ctx context.Context, identity auth.Identity, in ExpenseInput) (*models.Expense, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	date := s.now()
	if in.Date != "" {
		d, err := s.TZ.ParseInstant(in.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}
	e := models.Expense{
		Category: strings.TrimSpace(in.Category),
		Amount:   utils.RoundMoney(in.Amount),
		Method:   in.Method,
		Date:     date,
		Note:     in.Note,
		UserID:   identity.ID,
	}
	if err := s.DB.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns expenses between two civil dates, both inclusive.
func (s *ExpenseService) List(ctx context.Context, from, to string) ([]models.Expense, error) {
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return nil, err
	}
	var list []models.Expense
	err = s.DB.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Order("date DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (s *ExpenseService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Expense{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return failure.NotFound("expense not found")
	}
	return nil
}

// dateRange resolves from/to civil dates. A missing to is today and a missing
// from is the same day as to.
func (d Deps) dateRange(from, to string) (time.Time, time.Time, error) {
	end := d.TZ.Today(d.now())
	var err error
	if strings.TrimSpace(to) != "" {
		if end, err = d.TZ.ParseDate(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	start := end
	if strings.TrimSpace(from) != "" {
		if start, err = d.TZ.ParseDate(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("to must not be before from")
	}
	_, last := d.TZ.DayBounds(end)
	return start, last, nil
}
