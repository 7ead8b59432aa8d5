package models

import "time"

type Floor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:50" json:"name"`
	Level     int       `gorm:"column:level;uniqueIndex" json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}
