package models

import "time"

const (
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleReceptionist = "receptionist"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string `gorm:"column:name;size:255" json:"name"`
	Email    string `gorm:"column:email;uniqueIndex;size:150" json:"email"`
	Password string `gorm:"column:password;size:255" json:"-"`
	Role     string `gorm:"column:role;size:50" json:"role"`
	Active   bool   `gorm:"column:active" json:"active"`
}
