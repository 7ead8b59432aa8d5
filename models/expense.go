package models

import "time"

type Expense struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Category string        `gorm:"column:category;size:100;index" json:"category"`
	Amount   float64       `gorm:"column:amount" json:"amount"`
	Method   PaymentMethod `gorm:"column:method" json:"method"`
	Date     time.Time     `gorm:"column:date;index" json:"date"`
	Note     string        `gorm:"column:note;type:text" json:"note"`
	UserID   uint          `gorm:"column:user_id" json:"userId"`
}
