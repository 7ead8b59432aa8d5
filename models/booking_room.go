package models

import "time"

// BookingRoom is the unit of stay: one room of a booking with its own dates.
type BookingRoom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	BookingID uint `gorm:"column:booking_id;index" json:"bookingId"`
	RoomID    uint `gorm:"column:room_id;index" json:"roomId"`

	CheckIn  time.Time `gorm:"column:check_in;index" json:"checkIn"`
	CheckOut time.Time `gorm:"column:check_out;index" json:"checkOut"`

	Price         float64 `gorm:"column:price" json:"price"`
	Tax           float64 `gorm:"column:tax" json:"tax"`
	Adults        int     `gorm:"column:adults" json:"adults"`
	Children      int     `gorm:"column:children" json:"children"`
	ExtraBeds     int     `gorm:"column:extra_beds" json:"extraBeds"`
	ExtraBedPrice float64 `gorm:"column:extra_bed_price" json:"extraBedPrice"`
	IsAC          bool    `gorm:"column:is_ac" json:"isAc"`

	CheckedOut   bool       `gorm:"column:checked_out;index" json:"checkedOut"`
	CheckedOutAt *time.Time `gorm:"column:checked_out_at" json:"checkedOutAt,omitempty"`
	Active       bool       `gorm:"column:active;index" json:"active"`
	Version      uint       `gorm:"column:version;not null" json:"version"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Room    *Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// Nights counts billable nights, never fewer than one.
func (br BookingRoom) Nights() int {
	n := int(br.CheckOut.Sub(br.CheckIn).Hours() / 24)
	if br.CheckOut.Sub(br.CheckIn) > time.Duration(n)*24*time.Hour {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
