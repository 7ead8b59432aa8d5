package models

import "time"

// RoomStatus is the cached occupancy projection stored on a room row.
// The BookingRoom rows referencing the room remain the source of truth.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomReserved    RoomStatus = "RESERVED"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomReserved:
		return true
	}
	return false
}

type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RoomNumber string `gorm:"column:room_number;uniqueIndex;type:varchar(50)" json:"roomNumber"`
	RoomTypeID *uint  `gorm:"column:room_type_id;index" json:"roomTypeId,omitempty"`
	FloorID    *uint  `gorm:"column:floor_id;index" json:"floorId,omitempty"`

	PriceAC          float64 `gorm:"column:price_ac" json:"priceAc"`
	PriceNonAC       float64 `gorm:"column:price_non_ac" json:"priceNonAc"`
	OnlinePriceAC    float64 `gorm:"column:online_price_ac" json:"onlinePriceAc"`
	OnlinePriceNonAC float64 `gorm:"column:online_price_non_ac" json:"onlinePriceNonAc"`

	Capacity    int        `gorm:"column:capacity" json:"capacity"`
	Status      RoomStatus `gorm:"column:status;type:varchar(20)" json:"status"`
	Active      bool       `gorm:"column:active;index" json:"active"`
	Description string     `gorm:"column:description;type:text" json:"description"`

	RoomType *RoomType `gorm:"foreignKey:RoomTypeID" json:"roomType,omitempty"`
	Floor    *Floor    `gorm:"foreignKey:FloorID" json:"floor,omitempty"`
}

// PriceFor picks the nightly rate for the AC selection and booking channel.
func (r Room) PriceFor(ac, online bool) float64 {
	switch {
	case online && ac:
		return r.OnlinePriceAC
	case online:
		return r.OnlinePriceNonAC
	case ac:
		return r.PriceAC
	default:
		return r.PriceNonAC
	}
}
