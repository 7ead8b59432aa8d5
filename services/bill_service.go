package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

type BillService struct {
	Deps
}

func NewBillService(deps Deps) *BillService {
	return &BillService{Deps: deps}
}

type GenerateBillRequest struct {
	IncludeTax bool `json:"includeTax"`
}

// computeBill totals a booking. Payments are signed so refunds reduce Paid.
func computeBill(rooms []models.BookingRoom, charges []models.Service, payments []models.Payment, includeTax bool, taxPercent float64) models.Bill {
	var b models.Bill
	for _, br := range rooms {
		if !br.Active {
			continue
		}
		nights := float64(br.Nights())
		b.RoomTotal += nights * (br.Price + float64(br.ExtraBeds)*br.ExtraBedPrice)
	}
	for _, c := range charges {
		if c.Active {
			b.ServicesTotal += c.Total()
		}
	}
	for _, p := range payments {
		// fully refunded rows are inactive but their refund row still counts
		if p.Active || p.Amount < 0 || p.RefundedAmount > 0 {
			b.Paid += p.Amount
		}
	}

	b.RoomTotal = utils.RoundMoney(b.RoomTotal)
	b.ServicesTotal = utils.RoundMoney(b.ServicesTotal)
	b.Subtotal = utils.RoundMoney(b.RoomTotal + b.ServicesTotal)
	b.IncludeTax = includeTax
	if includeTax && taxPercent > 0 {
		b.TaxAmount = utils.RoundMoney(b.Subtotal * taxPercent / 100)
	}
	b.Total = utils.RoundMoney(b.Subtotal + b.TaxAmount)
	b.Paid = utils.RoundMoney(b.Paid)
	b.Balance = utils.RoundMoney(b.Total - b.Paid)
	return b
}

// Generate computes the bill of a booking and stores it, replacing a previous one.
func (s *BillService) Generate(ctx context.Context, bookingID uint, req GenerateBillRequest) (*models.Bill, error) {
	var bill models.Bill
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		err := tx.Clauses(forUpdate).
			Preload("Rooms", "active = ?", true).
			Preload("Services", "active = ?", true).
			Preload("Payments").
			First(&booking, bookingID).Error
		if err != nil {
			return notFound(err, "booking not found")
		}
		if booking.Status == models.BookingCancelled {
			return failure.Conflict("booking is cancelled")
		}
		if len(booking.Rooms) == 0 {
			return failure.BadRequestFromString("booking has no rooms")
		}

		var setting models.HotelSetting
		if err := tx.Order("id").First(&setting).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		computed := computeBill(booking.Rooms, booking.Services, booking.Payments, req.IncludeTax, setting.TaxPercent)
		computed.BookingID = booking.ID

		var existing models.Bill
		err = tx.Where("booking_id = ?", booking.ID).First(&existing).Error
		switch {
		case err == nil:
			computed.ID = existing.ID
			computed.CreatedAt = existing.CreatedAt
			computed.InvoiceID = existing.InvoiceID
			if err := tx.Save(&computed).Error; err != nil {
				return fmt.Errorf("failed to update bill: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// invoice ids embed the row id, so insert with a placeholder first
			computed.InvoiceID = "TMP-" + booking.ReferenceCode
			if err := tx.Create(&computed).Error; err != nil {
				return fmt.Errorf("failed to create bill: %w", err)
			}
			computed.InvoiceID = utils.InvoiceID(s.TZ.Day(computed.CreatedAt), computed.ID)
			if err := tx.Model(&models.Bill{}).Where("id = ?", computed.ID).Update("invoice_id", computed.InvoiceID).Error; err != nil {
				return err
			}
		default:
			return err
		}
		bill = computed
		return nil
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}
	return &bill, nil
}

func (s *BillService) Get(ctx context.Context, id uint) (*models.Bill, error) {
	var bill models.Bill
	if err := s.DB.WithContext(ctx).First(&bill, id).Error; err != nil {
		return nil, notFound(err, "bill not found")
	}
	return &bill, nil
}
