package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel-frontdesk/models"
)

func TestComputeBill(t *testing.T) {
	rooms := []models.BookingRoom{
		{
			CheckIn:       utc(2024, 1, 1, 9, 0),
			CheckOut:      utc(2024, 1, 3, 7, 0),
			Price:         1000,
			ExtraBeds:     1,
			ExtraBedPrice: 200,
			Active:        true,
		},
		{CheckIn: utc(2024, 1, 1, 9, 0), CheckOut: utc(2024, 1, 2, 9, 0), Price: 5000},
	}
	charges := []models.Service{
		{Name: "laundry", Price: 150, Quantity: 2, Active: true},
		{Name: "minibar", Price: 90, Quantity: 1},
	}
	refunded := models.Payment{Amount: 300, RefundedAmount: 300}
	voided := models.Payment{Amount: 50}
	payments := []models.Payment{
		{Amount: 1000, Active: true},
		refunded,
		{Amount: -300, Active: true},
		voided,
	}

	t.Run("with tax", func(t *testing.T) {
		b := computeBill(rooms, charges, payments, true, 12)
		assert.Equal(t, 2400.0, b.RoomTotal)
		assert.Equal(t, 300.0, b.ServicesTotal)
		assert.Equal(t, 2700.0, b.Subtotal)
		assert.Equal(t, 324.0, b.TaxAmount)
		assert.Equal(t, 3024.0, b.Total)
		assert.Equal(t, 1000.0, b.Paid)
		assert.Equal(t, 2024.0, b.Balance)
		assert.True(t, b.IncludeTax)
	})

	t.Run("without tax", func(t *testing.T) {
		b := computeBill(rooms, charges, payments, false, 12)
		assert.Zero(t, b.TaxAmount)
		assert.Equal(t, 2700.0, b.Total)
		assert.Equal(t, 1700.0, b.Balance)
	})

	t.Run("short stay bills one night", func(t *testing.T) {
		short := []models.BookingRoom{{CheckIn: utc(2024, 1, 1, 9, 0), CheckOut: utc(2024, 1, 1, 15, 0), Price: 800, Active: true}}
		b := computeBill(short, nil, nil, false, 0)
		assert.Equal(t, 800.0, b.Total)
		assert.Equal(t, 800.0, b.Balance)
	})
}
