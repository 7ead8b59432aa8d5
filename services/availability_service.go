package services

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"hotel-frontdesk/availability"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
)

// AvailabilityService loads rows for the availability package and decides
// what, if anything, gets persisted.
type AvailabilityService struct {
	Deps

	// ReadRepair lets RoomsWithAvailability correct stale cached statuses inline.
	ReadRepair bool
	// StrictCheckout is the default for the daily checkout bucket.
	StrictCheckout bool
}

func NewAvailabilityService(deps Deps, readRepair, strictCheckout bool) *AvailabilityService {
	return &AvailabilityService{Deps: deps, ReadRepair: readRepair, StrictCheckout: strictCheckout}
}

type RoomRepair struct {
	RoomID     uint              `json:"roomId"`
	RoomNumber string            `json:"roomNumber"`
	From       models.RoomStatus `json:"from"`
	To         models.RoomStatus `json:"to"`
}

type ReconcileReport struct {
	Checked   int                    `json:"checked"`
	Repaired  []RoomRepair           `json:"repaired"`
	Anomalies []availability.Anomaly `json:"anomalies"`
}

func (s *AvailabilityService) reconcile(ctx context.Context) (availability.Result, error) {
	now := s.now()

	var rooms []models.Room
	if err := s.DB.WithContext(ctx).
		Preload("RoomType").
		Preload("Floor").
		Where("active = ?", true).
		Order("room_number").
		Find(&rooms).Error; err != nil {
		return availability.Result{}, err
	}
	if len(rooms) == 0 {
		return availability.Result{Rooms: []availability.RoomAvailability{}}, nil
	}

	ids := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}

	var stays []models.BookingRoom
	if err := s.DB.WithContext(ctx).
		Preload("Booking.Customer").
		Where("room_id IN ? AND active = ?", ids, true).
		Where("check_in > ? OR checked_out = ?", now, false).
		Find(&stays).Error; err != nil {
		return availability.Result{}, err
	}

	res := availability.Reconcile(s.TZ, rooms, stays, now)
	for _, a := range res.Anomalies {
		s.log().WithFields(logrus.Fields{
			"room_id":          a.RoomID,
			"booking_room_ids": a.BookingRoomIDs,
		}).Warn("room occupied by overlapping stays")
	}
	return res, nil
}

// RoomsWithAvailability returns every active room with its derived occupancy.
// It only writes when read repair is enabled, and a failed repair is logged
// without failing the read.
func (s *AvailabilityService) RoomsWithAvailability(ctx context.Context) ([]availability.RoomAvailability, error) {
	res, err := s.reconcile(ctx)
	if err != nil {
		return nil, err
	}
	if !s.ReadRepair {
		return res.Rooms, nil
	}

	repaired := 0
	for _, ra := range res.Rooms {
		if !ra.Stale() {
			continue
		}
		if err := s.repair(ctx, ra); err != nil {
			s.log().WithError(err).WithField("room_id", ra.ID).Warn("ReadRepairFailed")
			continue
		}
		repaired++
	}
	if repaired > 0 {
		s.invalidate(ctx)
	}
	return res.Rooms, nil
}

// ReconcileRoomStatuses writes the derived status onto every stale room.
func (s *AvailabilityService) ReconcileRoomStatuses(ctx context.Context) (ReconcileReport, error) {
	res, err := s.reconcile(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{Checked: len(res.Rooms), Repaired: []RoomRepair{}, Anomalies: res.Anomalies}
	if report.Anomalies == nil {
		report.Anomalies = []availability.Anomaly{}
	}
	for _, ra := range res.Rooms {
		if !ra.Stale() {
			continue
		}
		if err := s.repair(ctx, ra); err != nil {
			return report, err
		}
		report.Repaired = append(report.Repaired, RoomRepair{
			RoomID:     ra.ID,
			RoomNumber: ra.RoomNumber,
			From:       ra.Room.Status,
			To:         ra.ActualStatus,
		})
	}
	if len(report.Repaired) > 0 {
		s.invalidate(ctx)
	}
	return report, nil
}

// repair is a compare-and-set so a concurrent writer's status is not clobbered.
func (s *AvailabilityService) repair(ctx context.Context, ra availability.RoomAvailability) error {
	return s.DB.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ? AND status = ?", ra.ID, ra.Room.Status).
		Update("status", ra.ActualStatus).Error
}

// Daily builds the front-desk board for a civil date. A nil strict uses the
// configured default.
func (s *AvailabilityService) Daily(ctx context.Context, date string, strict *bool) (availability.DailyBoard, error) {
	if date == "" {
		return availability.DailyBoard{}, failure.BadRequestFromString("date is required")
	}
	target, err := s.TZ.ParseDate(date)
	if err != nil {
		return availability.DailyBoard{}, err
	}
	strictCheckout := s.StrictCheckout
	if strict != nil {
		strictCheckout = *strict
	}

	now := s.now()
	today := s.TZ.FormatDate(s.TZ.Day(now))

	var loadErr error
	loader := func(ctx context.Context) (any, error) {
		board, err := s.loadDaily(ctx, target, strictCheckout)
		loadErr = err
		return board, err
	}

	key, err := s.Cache.BuildKey(ctx, "availability", "daily", s.TZ.FormatDate(target), today, strconv.FormatBool(strictCheckout))
	if err == nil {
		var board availability.DailyBoard
		err = s.Cache.FetchJSON(ctx, key, &board, loader)
		if err == nil {
			return board, nil
		}
		if loadErr != nil {
			return availability.DailyBoard{}, loadErr
		}
	}
	s.log().WithError(err).Warn("availability cache unavailable, computing directly")
	return s.loadDaily(ctx, target, strictCheckout)
}

func (s *AvailabilityService) loadDaily(ctx context.Context, target time.Time, strict bool) (availability.DailyBoard, error) {
	db := s.DB.WithContext(ctx)

	var rooms []models.Room
	if err := db.Where("active = ?", true).Order("room_number").Find(&rooms).Error; err != nil {
		return availability.DailyBoard{}, err
	}

	var stays []models.BookingRoom
	if err := db.
		Preload("Booking.Customer").
		Preload("Room").
		Joins("JOIN bookings ON bookings.id = booking_rooms.booking_id").
		Where("bookings.status = ? AND bookings.active = ? AND booking_rooms.active = ?", models.BookingActive, true, true).
		Order("booking_rooms.check_in, booking_rooms.id").
		Find(&stays).Error; err != nil {
		return availability.DailyBoard{}, err
	}

	start, end := s.TZ.DayBounds(target)
	if strict {
		// a full checkout closes the booking, so its rows are loaded separately
		var closed []models.BookingRoom
		if err := db.
			Preload("Booking.Customer").
			Preload("Room").
			Joins("JOIN bookings ON bookings.id = booking_rooms.booking_id").
			Where("bookings.status = ? AND booking_rooms.active = ? AND booking_rooms.checked_out = ?", models.BookingCheckedOut, true, true).
			Where("booking_rooms.checked_out_at BETWEEN ? AND ?", start, end).
			Order("booking_rooms.check_in, booking_rooms.id").
			Find(&closed).Error; err != nil {
			return availability.DailyBoard{}, err
		}
		stays = append(stays, closed...)
	}

	var requests []models.Booking
	if err := db.
		Preload("Customer").
		Preload("Rooms").
		Where("type = ? AND status = ? AND active = ?", models.BookingRequest, models.BookingPending, true).
		Where("requested_date BETWEEN ? AND ?", start, end).
		Find(&requests).Error; err != nil {
		return availability.DailyBoard{}, err
	}

	return availability.Classify(s.TZ, availability.DailyInput{
		Target:         target,
		Now:            s.now(),
		Rooms:          rooms,
		Stays:          stays,
		Requests:       requests,
		StrictCheckout: strict,
	}), nil
}
