package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/availability"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

// RoomChange moves one booking room from OldRoomID to NewRoomID.
type RoomChange struct {
	BookingRoomID uint `json:"bookingRoomId" validate:"required"`
	OldRoomID     uint `json:"oldRoomId" validate:"required"`
	NewRoomID     uint `json:"newRoomId" validate:"required"`
}

// UpdateBookingRequest is a partial update. Nil fields are left untouched and
// a nil Rooms slice leaves the booking rooms as they are.
type UpdateBookingRequest struct {
	BookingID     uint           `json:"bookingId" validate:"required"`
	Version       *uint          `json:"version" validate:"required"`
	Customer      *CustomerInput `json:"customer"`
	RequestedDate *string        `json:"requestedDate"`
	RoomCount     *int           `json:"roomCount" validate:"omitempty,gte=0"`
	Origin        *string        `json:"origin"`
	IsOnline      *bool          `json:"isOnline"`
	IsAdvance     *bool          `json:"isAdvance"`
	Notes         *string        `json:"notes"`
	RoomChanges   []RoomChange   `json:"roomChanges" validate:"dive"`
	Rooms         []StayInput    `json:"rooms" validate:"omitempty,dive"`
	Advance       *AdvanceInput  `json:"advance"`
}

func ownsBooking(identity auth.Identity, b models.Booking) bool {
	return b.UserID == identity.ID || identity.Role == models.RoleAdmin
}

// UpdateBooking applies req as one unit of work. Validation runs before the
// transaction opens; anything failing inside it rolls every step back.
func (s *BookingService) UpdateBooking(ctx context.Context, identity auth.Identity, req UpdateBookingRequest) (*models.Booking, error) {
	if req.Version == nil {
		return nil, failure.BadRequestFromString("version is required")
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}
	stays, err := s.parseStays(req.Rooms)
	if err != nil {
		return nil, err
	}
	var requested *time.Time
	if req.RequestedDate != nil && strings.TrimSpace(*req.RequestedDate) != "" {
		day, err := s.TZ.ParseDate(*req.RequestedDate)
		if err != nil {
			return nil, err
		}
		requested = &day
	}
	if req.Advance != nil && req.IsAdvance != nil && !*req.IsAdvance {
		return nil, failure.BadRequestFromString("advance payment given while isAdvance is false")
	}

	now := s.now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(forUpdate).First(&booking, req.BookingID).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if !ownsBooking(identity, booking) {
			return failure.Unauthorized("booking belongs to another user")
		}
		if booking.Version != *req.Version {
			return failure.Conflict(fmt.Sprintf("booking was modified (version %d, got %d)", booking.Version, *req.Version))
		}

		online := booking.IsOnline
		if req.IsOnline != nil {
			online = *req.IsOnline
		}

		if err := updateBookingFields(tx, booking, req, requested); err != nil {
			return err
		}
		if req.Customer != nil {
			if updates := customerUpdates(req.Customer); len(updates) > 0 {
				if err := tx.Model(&models.Customer{}).Where("id = ?", booking.CustomerID).Updates(updates).Error; err != nil {
					return fmt.Errorf("failed to update customer: %w", err)
				}
			}
		}

		// versions of rows moved below, as the caller last saw them
		seen := map[uint]uint{}
		for _, change := range req.RoomChanges {
			prev, err := applyRoomChange(tx, booking.ID, change, online, now)
			if err != nil {
				return err
			}
			seen[change.BookingRoomID] = prev
		}

		if req.Rooms != nil {
			if err := syncBookingRooms(tx, booking, stays, online, now, seen); err != nil {
				return err
			}
		}

		return syncAdvance(tx, identity, booking.ID, req, now)
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}

	s.invalidate(ctx)
	return s.Get(ctx, req.BookingID)
}

func updateBookingFields(tx *gorm.DB, booking models.Booking, req UpdateBookingRequest, requested *time.Time) error {
	updates := map[string]interface{}{"version": gorm.Expr("version + 1")}
	if requested != nil {
		updates["requested_date"] = *requested
	}
	if req.RoomCount != nil {
		updates["room_count"] = *req.RoomCount
	}
	if req.Origin != nil {
		updates["origin"] = strings.TrimSpace(*req.Origin)
	}
	if req.IsOnline != nil {
		updates["is_online"] = *req.IsOnline
	}
	switch {
	case req.IsAdvance != nil:
		updates["is_advance"] = *req.IsAdvance
	case req.Advance != nil:
		updates["is_advance"] = true
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	res := tx.Model(&models.Booking{}).
		Where("id = ? AND version = ?", booking.ID, booking.Version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return failure.Conflict("booking was modified concurrently")
	}
	return nil
}

// applyRoomChange returns the row version before the move.
func applyRoomChange(tx *gorm.DB, bookingID uint, change RoomChange, online bool, now time.Time) (uint, error) {
	var br models.BookingRoom
	if err := tx.Clauses(forUpdate).
		Where("id = ? AND booking_id = ? AND active = ?", change.BookingRoomID, bookingID, true).
		First(&br).Error; err != nil {
		return 0, notFound(err, fmt.Sprintf("booking room %d not found", change.BookingRoomID))
	}
	if br.RoomID != change.OldRoomID {
		return 0, failure.BadRequestf("booking room %d is not on room %d", br.ID, change.OldRoomID)
	}
	if change.NewRoomID == change.OldRoomID {
		return br.Version, nil
	}

	var room models.Room
	if err := tx.Clauses(forUpdate).Where("id = ? AND active = ?", change.NewRoomID, true).First(&room).Error; err != nil {
		return 0, notFound(err, fmt.Sprintf("room %d not found", change.NewRoomID))
	}
	n, err := countOverlaps(tx, room.ID, br.CheckIn, br.CheckOut, now, br.ID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, failure.Conflict(fmt.Sprintf("room %s is already booked for those dates", room.RoomNumber))
	}

	// a future stay moving away leaves the current occupant in place
	if availability.Occupies(br, now) {
		if err := setRoomStatus(tx, change.OldRoomID, models.RoomAvailable); err != nil {
			return 0, err
		}
	}
	if err := setRoomStatus(tx, room.ID, models.RoomOccupied); err != nil {
		return 0, err
	}
	err = tx.Model(&models.BookingRoom{}).Where("id = ?", br.ID).Updates(map[string]interface{}{
		"room_id": room.ID,
		"price":   stayPrice(room, br.IsAC, online, br.Price),
		"version": gorm.Expr("version + 1"),
	}).Error
	return br.Version, err
}

// syncBookingRooms makes the booking's live rooms match stays: rows not listed
// are removed, rows with an id are updated and the rest are created.
func syncBookingRooms(tx *gorm.DB, booking models.Booking, stays []stay, online bool, now time.Time, seen map[uint]uint) error {
	var existing []models.BookingRoom
	if err := tx.Clauses(forUpdate).
		Where("booking_id = ? AND active = ?", booking.ID, true).
		Find(&existing).Error; err != nil {
		return err
	}
	byID := make(map[uint]models.BookingRoom, len(existing))
	for _, br := range existing {
		byID[br.ID] = br
	}

	keep := map[uint]bool{}
	for _, st := range stays {
		if st.ID == 0 {
			continue
		}
		if _, ok := byID[st.ID]; !ok {
			return failure.NotFound(fmt.Sprintf("booking room %d not found", st.ID))
		}
		keep[st.ID] = true
	}

	for _, br := range existing {
		if keep[br.ID] {
			continue
		}
		if err := tx.Delete(&models.BookingRoom{}, br.ID).Error; err != nil {
			return fmt.Errorf("failed to remove booking room %d: %w", br.ID, err)
		}
		if availability.Occupies(br, now) {
			if err := setRoomStatus(tx, br.RoomID, models.RoomAvailable); err != nil {
				return err
			}
		}
	}

	for _, st := range stays {
		if st.ID != 0 {
			if err := updateStay(tx, byID[st.ID], st, online, now, seen); err != nil {
				return err
			}
			continue
		}
		if err := createStay(tx, booking.ID, st, online, now); err != nil {
			return err
		}
	}
	return nil
}

func updateStay(tx *gorm.DB, row models.BookingRoom, st stay, online bool, now time.Time, seen map[uint]uint) error {
	expected := row.Version
	if v, ok := seen[row.ID]; ok {
		expected = v
	}
	if st.Version != 0 && st.Version != expected {
		return failure.Conflict(fmt.Sprintf("booking room %d was modified (version %d, got %d)", row.ID, expected, st.Version))
	}

	// a room change earlier in this unit may have moved the row
	var current models.BookingRoom
	if err := tx.Where("id = ?", row.ID).First(&current).Error; err != nil {
		return notFound(err, fmt.Sprintf("booking room %d not found", row.ID))
	}

	var room models.Room
	if err := tx.Clauses(forUpdate).First(&room, current.RoomID).Error; err != nil {
		return notFound(err, fmt.Sprintf("room %d not found", current.RoomID))
	}
	if !current.CheckedOut {
		n, err := countOverlaps(tx, room.ID, st.in, st.out, now, current.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return failure.Conflict(fmt.Sprintf("room %s is already booked for those dates", room.RoomNumber))
		}
	}

	return tx.Model(&models.BookingRoom{}).Where("id = ?", current.ID).Updates(map[string]interface{}{
		"check_in":        st.in,
		"check_out":       st.out,
		"adults":          st.Adults,
		"children":        st.Children,
		"extra_beds":      st.ExtraBeds,
		"extra_bed_price": st.ExtraBedPrice,
		"is_ac":           st.IsAC,
		"price":           stayPrice(room, st.IsAC, online, st.Price),
		"version":         gorm.Expr("version + 1"),
	}).Error
}

func createStay(tx *gorm.DB, bookingID uint, st stay, online bool, now time.Time) error {
	var room models.Room
	if err := tx.Clauses(forUpdate).Where("id = ? AND active = ?", st.RoomID, true).First(&room).Error; err != nil {
		return notFound(err, fmt.Sprintf("room %d not found", st.RoomID))
	}
	n, err := countOverlaps(tx, room.ID, st.in, st.out, now, 0)
	if err != nil {
		return err
	}
	if n > 0 {
		return failure.Conflict(fmt.Sprintf("room %s is already booked for those dates", room.RoomNumber))
	}

	br := models.BookingRoom{
		BookingID:     bookingID,
		RoomID:        room.ID,
		CheckIn:       st.in,
		CheckOut:      st.out,
		Price:         stayPrice(room, st.IsAC, online, st.Price),
		Adults:        st.Adults,
		Children:      st.Children,
		ExtraBeds:     st.ExtraBeds,
		ExtraBedPrice: st.ExtraBedPrice,
		IsAC:          st.IsAC,
		Active:        true,
		Version:       1,
	}
	if err := tx.Create(&br).Error; err != nil {
		return fmt.Errorf("failed to create booking room for room %d: %w", room.ID, err)
	}
	return setRoomStatus(tx, room.ID, models.RoomOccupied)
}

// syncAdvance keeps at most one advance payment per booking.
func syncAdvance(tx *gorm.DB, identity auth.Identity, bookingID uint, req UpdateBookingRequest, now time.Time) error {
	if req.IsAdvance != nil && !*req.IsAdvance {
		return tx.Where("booking_id = ? AND is_advance = ?", bookingID, true).Delete(&models.Payment{}).Error
	}
	if req.Advance == nil {
		return nil
	}

	var p models.Payment
	err := tx.Where("booking_id = ? AND is_advance = ?", bookingID, true).Order("id ASC").First(&p).Error
	switch {
	case err == nil:
		return tx.Model(&models.Payment{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"amount":         utils.RoundMoney(req.Advance.Amount),
			"method":         req.Advance.Method,
			"transaction_id": req.Advance.TransactionID,
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = models.Payment{
			BookingID:     bookingID,
			UserID:        identity.ID,
			Amount:        utils.RoundMoney(req.Advance.Amount),
			Method:        req.Advance.Method,
			Date:          now,
			IsAdvance:     true,
			Active:        true,
			TransactionID: req.Advance.TransactionID,
		}
		return tx.Create(&p).Error
	default:
		return err
	}
}
