package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Customer struct {
	gorm.Model

	Name     string `gorm:"column:name;size:255" json:"name"`
	Phone    string `gorm:"column:phone;size:32;index" json:"phone"`
	Email    string `gorm:"column:email;size:150" json:"email"`
	Company  string `gorm:"column:company;size:255" json:"company"`
	Address  string `gorm:"column:address;type:text" json:"address"`
	IDType   string `gorm:"column:id_type;size:50" json:"idType"`
	IDNumber string `gorm:"column:id_number;size:100" json:"idNumber"`

	// object keys returned by the storage backend
	Images datatypes.JSON `gorm:"column:images" json:"images,omitempty"`
}
