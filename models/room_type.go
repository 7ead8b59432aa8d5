package models

import "time"

type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TypeName    string `gorm:"column:type_name;size:100" json:"typeName"`
	Description string `gorm:"column:description;size:255" json:"description"`
	MaxGuests   uint   `gorm:"column:max_guests" json:"maxGuests"`

	CreatedAt time.Time `json:"createdAt"`
}
