package models

import "time"

type PaymentMethod int

const (
	PaymentCash   PaymentMethod = 0
	PaymentCard   PaymentMethod = 1
	PaymentOnline PaymentMethod = 2
)

func (m PaymentMethod) Valid() bool {
	return m >= PaymentCash && m <= PaymentOnline
}

func (m PaymentMethod) String() string {
	switch m {
	case PaymentCash:
		return "CASH"
	case PaymentCard:
		return "CARD"
	case PaymentOnline:
		return "ONLINE"
	}
	return "UNKNOWN"
}

// Payment amounts are signed: refunds are stored as negative rows.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	BookingID      uint          `gorm:"column:booking_id;index" json:"bookingId"`
	UserID         uint          `gorm:"column:user_id" json:"userId"`
	Amount         float64       `gorm:"column:amount" json:"amount"`
	Method         PaymentMethod `gorm:"column:method" json:"method"`
	Date           time.Time     `gorm:"column:date;index" json:"date"`
	IsAdvance      bool          `gorm:"column:is_advance" json:"isAdvance"`
	Active         bool          `gorm:"column:active" json:"active"`
	TransactionID  string        `gorm:"column:transaction_id;size:100" json:"transactionId,omitempty"`
	Note           string        `gorm:"column:note;type:text" json:"note,omitempty"`
	RefundedAmount float64       `gorm:"column:refunded_amount" json:"refundedAmount"`
}

// Refundable is what a refund may still consume from this payment.
func (p Payment) Refundable() float64 {
	if !p.Active || p.Amount <= 0 {
		return 0
	}
	left := p.Amount - p.RefundedAmount
	if left < 0 {
		return 0
	}
	return left
}
