package services

import (
	"context"
	"fmt"
	"strings"

	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

type RoomService struct {
	Deps
}

func NewRoomService(deps Deps) *RoomService {
	return &RoomService{Deps: deps}
}

type RoomInput struct {
	RoomNumber       string  `json:"roomNumber" validate:"required,max=50"`
	RoomTypeID       *uint   `json:"roomTypeId"`
	FloorID          *uint   `json:"floorId"`
	PriceAC          float64 `json:"priceAc" validate:"gte=0"`
	PriceNonAC       float64 `json:"priceNonAc" validate:"gte=0"`
	OnlinePriceAC    float64 `json:"onlinePriceAc" validate:"gte=0"`
	OnlinePriceNonAC float64 `json:"onlinePriceNonAc" validate:"gte=0"`
	Capacity         int     `json:"capacity" validate:"gte=0"`
	Description      string  `json:"description"`
}

func (in RoomInput) columns() map[string]interface{} {
	return map[string]interface{}{
		"room_number":         strings.TrimSpace(in.RoomNumber),
		"room_type_id":        in.RoomTypeID,
		"floor_id":            in.FloorID,
		"price_ac":            in.PriceAC,
		"price_non_ac":        in.PriceNonAC,
		"online_price_ac":     in.OnlinePriceAC,
		"online_price_non_ac": in.OnlinePriceNonAC,
		"capacity":            in.Capacity,
		"description":         in.Description,
	}
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (*models.Room, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	room := models.Room{
		RoomNumber:       strings.TrimSpace(in.RoomNumber),
		RoomTypeID:       in.RoomTypeID,
		FloorID:          in.FloorID,
		PriceAC:          in.PriceAC,
		PriceNonAC:       in.PriceNonAC,
		OnlinePriceAC:    in.OnlinePriceAC,
		OnlinePriceNonAC: in.OnlinePriceNonAC,
		Capacity:         in.Capacity,
		Description:      in.Description,
		Status:           models.RoomAvailable,
		Active:           true,
	}
	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		return nil, roomWriteError(err, room.RoomNumber)
	}
	s.invalidate(ctx)
	return &room, nil
}

func (s *RoomService) GetAll(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.WithContext(ctx).
		Preload("RoomType").
		Preload("Floor").
		Where("active = ?", true).
		Order("room_number").
		Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Preload("RoomType").Preload("Floor").
		Where("id = ? AND active = ?", id, true).First(&room).Error; err != nil {
		return nil, notFound(err, "room not found")
	}
	return &room, nil
}

func (s *RoomService) Update(ctx context.Context, id uint, in RoomInput) (*models.Room, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND active = ?", id, true).
		Updates(in.columns())
	if res.Error != nil {
		return nil, roomWriteError(res.Error, in.RoomNumber)
	}
	if res.RowsAffected == 0 {
		// an update with unchanged values also reports zero rows
		if _, err := s.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	s.invalidate(ctx)
	return s.GetByID(ctx, id)
}

// SetStatus overrides the cached status. Only MAINTENANCE and AVAILABLE make
// sense as manual values; the rest are derived from stays.
func (s *RoomService) SetStatus(ctx context.Context, id uint, status models.RoomStatus) (*models.Room, error) {
	if status != models.RoomMaintenance && status != models.RoomAvailable {
		return nil, failure.BadRequestf("status must be %s or %s", models.RoomMaintenance, models.RoomAvailable)
	}
	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", room.ID).Update("status", status).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	room.Status = status
	return room, nil
}

// Delete retires the room. Rooms with a live stay cannot be retired.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	var live int64
	if err := s.DB.WithContext(ctx).Model(&models.BookingRoom{}).
		Joins("JOIN bookings ON bookings.id = booking_rooms.booking_id").
		Where("booking_rooms.room_id = ? AND booking_rooms.active = ? AND booking_rooms.checked_out = ?", id, true, false).
		Where("bookings.status IN ? AND bookings.active = ?", []models.BookingStatus{models.BookingActive, models.BookingPending}, true).
		Count(&live).Error; err != nil {
		return err
	}
	if live > 0 {
		return failure.Conflict("room has open bookings")
	}
	if err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Update("active", false).Error; err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func roomWriteError(err error, number string) error {
	switch {
	case isDuplicateError(err):
		return failure.Conflict(fmt.Sprintf("room number %s already exists", number))
	case isForeignKeyError(err):
		return failure.BadRequestFromString("unknown room type or floor")
	}
	return err
}
