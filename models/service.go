package models

import "time"

// Service is an ancillary charge (laundry, food, transfers) attached to a booking.
type Service struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	BookingID uint    `gorm:"column:booking_id;index" json:"bookingId"`
	Name      string  `gorm:"column:name;size:150" json:"name"`
	Price     float64 `gorm:"column:price" json:"price"`
	Quantity  int     `gorm:"column:quantity" json:"quantity"`
	Active    bool    `gorm:"column:active" json:"active"`
}

func (s Service) Total() float64 {
	return s.Price * float64(s.Quantity)
}
