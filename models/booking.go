package models

import "time"

type BookingStatus int

const (
	BookingCheckedOut BookingStatus = 0
	BookingActive     BookingStatus = 1
	BookingPending    BookingStatus = 2
	BookingCancelled  BookingStatus = 3
)

func (s BookingStatus) String() string {
	switch s {
	case BookingCheckedOut:
		return "CHECKED_OUT"
	case BookingActive:
		return "ACTIVE"
	case BookingPending:
		return "PENDING"
	case BookingCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// BookingType separates online/advance requests from walk-ins.
type BookingType string

const (
	BookingWalkIn  BookingType = "walk_in"
	BookingRequest BookingType = "request"
)

type Booking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ReferenceCode string        `gorm:"column:reference_code;uniqueIndex;size:32" json:"referenceCode"`
	CustomerID    uint          `gorm:"column:customer_id;index" json:"customerId"`
	UserID        uint          `gorm:"column:user_id;index" json:"userId"`
	Status        BookingStatus `gorm:"column:status;index" json:"status"`
	Type          BookingType   `gorm:"column:type;size:20" json:"type"`
	RoomCount     int           `gorm:"column:room_count" json:"roomCount"`
	Origin        string        `gorm:"column:origin;size:100" json:"origin"`
	IsOnline      bool          `gorm:"column:is_online" json:"isOnline"`
	IsAdvance     bool          `gorm:"column:is_advance" json:"isAdvance"`
	RequestedDate *time.Time    `gorm:"column:requested_date" json:"requestedDate,omitempty"`
	Notes         string        `gorm:"column:notes;type:text" json:"notes"`
	Active        bool          `gorm:"column:active;index" json:"active"`
	Version       uint          `gorm:"column:version;not null" json:"version"`

	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Rooms    []BookingRoom `gorm:"foreignKey:BookingID" json:"rooms,omitempty"`
	Payments []Payment     `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
	Services []Service     `gorm:"foreignKey:BookingID" json:"services,omitempty"`
	Bill     *Bill         `gorm:"foreignKey:BookingID" json:"bill,omitempty"`
}

// CustomerName tolerates bookings loaded without the customer relation.
func (b Booking) CustomerName() string {
	if b.Customer == nil {
		return ""
	}
	return b.Customer.Name
}
