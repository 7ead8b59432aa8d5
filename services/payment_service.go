package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

type PaymentService struct {
	Deps
}

func NewPaymentService(deps Deps) *PaymentService {
	return &PaymentService{Deps: deps}
}

type AddPaymentRequest struct {
	Amount        float64              `json:"amount" validate:"gt=0"`
	Method        models.PaymentMethod `json:"method" validate:"gte=0,lte=2"`
	Date          string               `json:"date"`
	TransactionID string               `json:"transactionId"`
	Note          string               `json:"note"`
}

type RefundRequest struct {
	BookingID uint                 `json:"bookingId" validate:"required"`
	Amount    float64              `json:"amount"`
	Method    models.PaymentMethod `json:"method" validate:"gte=0,lte=2"`
	Note      string               `json:"note"`
}

type RefundResult struct {
	Refund   models.Payment   `json:"refund"`
	Payments []models.Payment `json:"payments"`
}

func (s *PaymentService) Add(ctx context.Context, identity auth.Identity, bookingID uint, req AddPaymentRequest) (*models.Payment, error) {
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}
	date := s.now()
	if req.Date != "" {
		d, err := s.TZ.ParseInstant(req.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}

	var p models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(forUpdate).First(&booking, bookingID).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if booking.Status == models.BookingCancelled {
			return failure.Conflict("booking is cancelled")
		}
		p = models.Payment{
			BookingID:     booking.ID,
			UserID:        identity.ID,
			Amount:        utils.RoundMoney(req.Amount),
			Method:        req.Method,
			Date:          date,
			Active:        true,
			TransactionID: strings.TrimSpace(req.TransactionID),
			Note:          req.Note,
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}
	return &p, nil
}

func (s *PaymentService) List(ctx context.Context, bookingID uint) ([]models.Payment, error) {
	var list []models.Payment
	if err := s.DB.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("date DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve payments: %w", err)
	}
	return list, nil
}

// RefundAllocation is what a refund takes from one payment.
type RefundAllocation struct {
	PaymentID uint
	Taken     float64
	Refunded  float64
	Note      string
	Active    bool
}

// planRefund consumes payments newest first (date, then id, descending).
// It fails when amount exceeds what the payments can still give back.
func planRefund(payments []models.Payment, amount float64) ([]RefundAllocation, error) {
	if amount <= 0 {
		return nil, failure.BadRequestFromString("refund amount must be greater than 0")
	}

	ordered := make([]models.Payment, 0, len(payments))
	var available float64
	for _, p := range payments {
		if p.Refundable() > 0 {
			ordered = append(ordered, p)
			available += p.Refundable()
		}
	}
	if utils.RoundMoney(amount) > utils.RoundMoney(available) {
		return nil, failure.BadRequestf("refund amount %s exceeds refundable total %s", money(amount), money(available))
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.After(ordered[j].Date)
		}
		return ordered[i].ID > ordered[j].ID
	})

	remaining := utils.RoundMoney(amount)
	var plan []RefundAllocation
	for _, p := range ordered {
		if remaining <= 0 {
			break
		}
		take := p.Refundable()
		if take > remaining {
			take = remaining
		}
		take = utils.RoundMoney(take)
		remaining = utils.RoundMoney(remaining - take)

		refunded := utils.RoundMoney(p.RefundedAmount + take)
		note := "refunded " + money(take)
		if p.Note != "" {
			note = p.Note + "; " + note
		}
		plan = append(plan, RefundAllocation{
			PaymentID: p.ID,
			Taken:     take,
			Refunded:  refunded,
			Note:      note,
			Active:    refunded < utils.RoundMoney(p.Amount),
		})
	}
	return plan, nil
}

func money(v float64) string {
	return strconv.FormatFloat(utils.RoundMoney(v), 'f', -1, 64)
}

// Refund records a negative payment and marks the consumed payments.
func (s *PaymentService) Refund(ctx context.Context, identity auth.Identity, req RefundRequest) (*RefundResult, error) {
	if req.Amount <= 0 {
		return nil, failure.BadRequestFromString("refund amount must be greater than 0")
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}

	var result RefundResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(forUpdate).First(&booking, req.BookingID).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if !ownsBooking(identity, booking) {
			return failure.Unauthorized("booking belongs to another user")
		}

		var payments []models.Payment
		if err := tx.Clauses(forUpdate).
			Where("booking_id = ? AND active = ? AND amount > ?", booking.ID, true, 0).
			Find(&payments).Error; err != nil {
			return err
		}

		plan, err := planRefund(payments, req.Amount)
		if err != nil {
			return err
		}

		note := strings.TrimSpace(req.Note)
		if note == "" {
			note = "refund"
		}
		result.Refund = models.Payment{
			BookingID: booking.ID,
			UserID:    identity.ID,
			Amount:    -utils.RoundMoney(req.Amount),
			Method:    req.Method,
			Date:      s.now(),
			Active:    true,
			Note:      note,
		}
		if err := tx.Create(&result.Refund).Error; err != nil {
			return fmt.Errorf("failed to create refund: %w", err)
		}

		for _, a := range plan {
			if err := tx.Model(&models.Payment{}).Where("id = ?", a.PaymentID).Updates(map[string]interface{}{
				"refunded_amount": a.Refunded,
				"note":            a.Note,
				"active":          a.Active,
			}).Error; err != nil {
				return fmt.Errorf("failed to update payment %d: %w", a.PaymentID, err)
			}
		}

		return tx.Where("booking_id = ?", booking.ID).Order("date DESC, id DESC").Find(&result.Payments).Error
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}
	s.invalidate(ctx)
	return &result, nil
}
