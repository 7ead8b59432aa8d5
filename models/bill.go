package models

import "time"

type Bill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	BookingID     uint    `gorm:"column:booking_id;uniqueIndex" json:"bookingId"`
	InvoiceID     string  `gorm:"column:invoice_id;uniqueIndex;size:40" json:"invoiceId"`
	RoomTotal     float64 `gorm:"column:room_total" json:"roomTotal"`
	ServicesTotal float64 `gorm:"column:services_total" json:"servicesTotal"`
	Subtotal      float64 `gorm:"column:subtotal" json:"subtotal"`
	IncludeTax    bool    `gorm:"column:include_tax" json:"includeTax"`
	TaxAmount     float64 `gorm:"column:tax_amount" json:"taxAmount"`
	Total         float64 `gorm:"column:total" json:"total"`
	Paid          float64 `gorm:"column:paid" json:"paid"`
	Balance       float64 `gorm:"column:balance" json:"balance"`
}
