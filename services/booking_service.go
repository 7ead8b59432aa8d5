package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

// BookingService owns the booking lifecycle.
type BookingService struct {
	Deps
}

func NewBookingService(deps Deps) *BookingService {
	return &BookingService{Deps: deps}
}

type CustomerInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	IDType   string `json:"idType"`
	IDNumber string `json:"idNumber"`
}

// StayInput declares one room of a booking.
type StayInput struct {
	ID            uint    `json:"id"`
	Version       uint    `json:"version"`
	RoomID        uint    `json:"roomId" validate:"required"`
	CheckIn       string  `json:"checkIn" validate:"required"`
	CheckOut      string  `json:"checkOut" validate:"required"`
	Adults        int     `json:"adults" validate:"gte=0"`
	Children      int     `json:"children" validate:"gte=0"`
	ExtraBeds     int     `json:"extraBeds" validate:"gte=0"`
	ExtraBedPrice float64 `json:"extraBedPrice" validate:"gte=0"`
	IsAC          bool    `json:"isAc"`
	Price         float64 `json:"price" validate:"gte=0"`
}

type AdvanceInput struct {
	Amount        float64              `json:"amount" validate:"gt=0"`
	Method        models.PaymentMethod `json:"method" validate:"gte=0,lte=2"`
	TransactionID string               `json:"transactionId"`
}

type CreateBookingRequest struct {
	CustomerID    uint               `json:"customerId"`
	Customer      *CustomerInput     `json:"customer"`
	Type          models.BookingType `json:"type" validate:"omitempty,oneof=walk_in request"`
	RoomCount     int                `json:"roomCount" validate:"gte=0"`
	Origin        string             `json:"origin"`
	IsOnline      bool               `json:"isOnline"`
	RequestedDate string             `json:"requestedDate"`
	Notes         string             `json:"notes"`
	Rooms         []StayInput        `json:"rooms" validate:"dive"`
	Advance       *AdvanceInput      `json:"advance"`
}

// stay is a StayInput with its dates resolved.
type stay struct {
	StayInput
	in  time.Time
	out time.Time
}

func (s *BookingService) parseStays(inputs []StayInput) ([]stay, error) {
	return parseStays(s.Deps, inputs)
}

func parseStays(d Deps, inputs []StayInput) ([]stay, error) {
	out := make([]stay, 0, len(inputs))
	for i, in := range inputs {
		ci, err := d.TZ.ParseInstant(in.CheckIn)
		if err != nil {
			return nil, err
		}
		co, err := d.TZ.ParseInstant(in.CheckOut)
		if err != nil {
			return nil, err
		}
		if !co.After(ci) {
			return nil, failure.BadRequestf("rooms[%d]: checkOut must be after checkIn", i)
		}
		out = append(out, stay{StayInput: in, in: ci, out: co})
	}
	return out, nil
}

// Create books a walk-in (ACTIVE) or an advance request (PENDING).
func (s *BookingService) Create(ctx context.Context, identity auth.Identity, req CreateBookingRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = models.BookingWalkIn
	}
	if req.CustomerID == 0 && (req.Customer == nil || strings.TrimSpace(req.Customer.Name) == "") {
		return nil, failure.BadRequestFromString("customer is required")
	}

	stays, err := s.parseStays(req.Rooms)
	if err != nil {
		return nil, err
	}

	var requested *time.Time
	switch req.Type {
	case models.BookingRequest:
		day, err := s.TZ.ParseDate(req.RequestedDate)
		if err != nil {
			return nil, err
		}
		requested = &day
	default:
		if len(stays) == 0 {
			return nil, failure.BadRequestFromString("at least one room is required")
		}
	}

	var bookingID uint
	create := func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			id, err := s.createTx(tx, identity, req, stays, requested)
			bookingID = id
			return err
		})
	}

	// reference codes are random; the only unique key written here is the
	// reference code, so a duplicate means a collision and the unit is retried
	for attempt := 0; attempt < 3; attempt++ {
		err = create()
		if err == nil || !isDuplicateError(err) {
			break
		}
		s.log().WithField("attempt", attempt+1).Warn("booking reference collision, retrying")
	}
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}

	s.invalidate(ctx)
	return s.Get(ctx, bookingID)
}

func (s *BookingService) createTx(tx *gorm.DB, identity auth.Identity, req CreateBookingRequest, stays []stay, requested *time.Time) (uint, error) {
	now := s.now()

	customer, err := resolveCustomer(tx, req.CustomerID, req.Customer)
	if err != nil {
		return 0, err
	}

	ref, err := utils.GenerateReferenceCode(s.TZ.Day(now))
	if err != nil {
		return 0, err
	}

	status := models.BookingActive
	if req.Type == models.BookingRequest {
		status = models.BookingPending
	}
	roomCount := req.RoomCount
	if roomCount < len(stays) {
		roomCount = len(stays)
	}

	booking := models.Booking{
		ReferenceCode: ref,
		CustomerID:    customer.ID,
		UserID:        identity.ID,
		Status:        status,
		Type:          req.Type,
		RoomCount:     roomCount,
		Origin:        strings.TrimSpace(req.Origin),
		IsOnline:      req.IsOnline,
		IsAdvance:     req.Advance != nil,
		RequestedDate: requested,
		Notes:         req.Notes,
		Active:        true,
		Version:       1,
	}
	if err := tx.Create(&booking).Error; err != nil {
		return 0, fmt.Errorf("failed to create booking: %w", err)
	}

	for _, st := range stays {
		var room models.Room
		if err := tx.Clauses(forUpdate).Where("id = ? AND active = ?", st.RoomID, true).First(&room).Error; err != nil {
			return 0, notFound(err, fmt.Sprintf("room %d not found", st.RoomID))
		}
		n, err := countOverlaps(tx, room.ID, st.in, st.out, now, 0)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, failure.Conflict(fmt.Sprintf("room %s is already booked for those dates", room.RoomNumber))
		}

		br := models.BookingRoom{
			BookingID:     booking.ID,
			RoomID:        room.ID,
			CheckIn:       st.in,
			CheckOut:      st.out,
			Price:         stayPrice(room, st.IsAC, booking.IsOnline, st.Price),
			Adults:        st.Adults,
			Children:      st.Children,
			ExtraBeds:     st.ExtraBeds,
			ExtraBedPrice: st.ExtraBedPrice,
			IsAC:          st.IsAC,
			Active:        true,
			Version:       1,
		}
		if err := tx.Create(&br).Error; err != nil {
			return 0, fmt.Errorf("failed to create booking_room for room %d: %w", room.ID, err)
		}

		if status == models.BookingActive && !st.in.After(now) {
			if err := setRoomStatus(tx, room.ID, models.RoomOccupied); err != nil {
				return 0, err
			}
		}
	}

	if req.Advance != nil {
		p := models.Payment{
			BookingID:     booking.ID,
			UserID:        identity.ID,
			Amount:        utils.RoundMoney(req.Advance.Amount),
			Method:        req.Advance.Method,
			Date:          now,
			IsAdvance:     true,
			Active:        true,
			TransactionID: req.Advance.TransactionID,
		}
		if err := tx.Create(&p).Error; err != nil {
			return 0, fmt.Errorf("failed to create advance payment: %w", err)
		}
	}
	return booking.ID, nil
}

// resolveCustomer loads customerID, or finds the customer by phone, or creates one.
func resolveCustomer(tx *gorm.DB, customerID uint, in *CustomerInput) (models.Customer, error) {
	var c models.Customer
	if customerID != 0 {
		if err := tx.First(&c, customerID).Error; err != nil {
			return c, notFound(err, "customer not found")
		}
		return c, nil
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		err := tx.Where("phone = ?", phone).Order("id DESC").First(&c).Error
		if err == nil {
			if err := tx.Model(&c).Updates(customerUpdates(in)).Error; err != nil {
				return c, err
			}
			return c, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c, err
		}
	}

	c = models.Customer{
		Name:     strings.TrimSpace(in.Name),
		Phone:    phone,
		Email:    strings.TrimSpace(in.Email),
		Company:  strings.TrimSpace(in.Company),
		Address:  strings.TrimSpace(in.Address),
		IDType:   strings.TrimSpace(in.IDType),
		IDNumber: strings.TrimSpace(in.IDNumber),
	}
	if err := tx.Create(&c).Error; err != nil {
		return c, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

// customerUpdates keeps only the fields the caller actually sent.
func customerUpdates(in *CustomerInput) map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(col, v string) {
		if v = strings.TrimSpace(v); v != "" {
			updates[col] = v
		}
	}
	set("name", in.Name)
	set("phone", in.Phone)
	set("email", in.Email)
	set("company", in.Company)
	set("address", in.Address)
	set("id_type", in.IDType)
	set("id_number", in.IDNumber)
	return updates
}

type BookingFilter struct {
	Status *models.BookingStatus
	Type   models.BookingType
	Search string
	Limit  int
}

func (s *BookingService) List(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Rooms", "active = ?", true).
		Preload("Rooms.Room").
		Where("bookings.active = ?", true)
	if f.Status != nil {
		q = q.Where("bookings.status = ?", *f.Status)
	}
	if f.Type != "" {
		q = q.Where("bookings.type = ?", f.Type)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Joins("LEFT JOIN customers ON customers.id = bookings.customer_id").
			Where("LOWER(bookings.reference_code) LIKE ? OR LOWER(customers.name) LIKE ? OR customers.phone LIKE ?", like, like, like)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	var list []models.Booking
	if err := q.Order("bookings.created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	for i := range list {
		if list[i].Rooms == nil {
			list[i].Rooms = []models.BookingRoom{}
		}
	}
	return list, nil
}

func (s *BookingService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var bk models.Booking
	err := s.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Rooms", "active = ?", true).
		Preload("Rooms.Room.RoomType").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("date DESC, id DESC") }).
		Preload("Services", "active = ?", true).
		Preload("Bill").
		First(&bk, id).Error
	if err != nil {
		return nil, notFound(err, "booking not found")
	}
	if bk.Rooms == nil {
		bk.Rooms = []models.BookingRoom{}
	}
	return &bk, nil
}

// CheckIn turns a PENDING request into an ACTIVE stay.
func (s *BookingService) CheckIn(ctx context.Context, id uint) (*models.Booking, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(forUpdate).Preload("Rooms", "active = ?", true).First(&booking, id).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if booking.Status != models.BookingPending {
			return failure.Conflict(fmt.Sprintf("booking is %s, only PENDING bookings can be checked in", booking.Status))
		}
		if len(booking.Rooms) == 0 {
			return failure.BadRequestFromString("assign at least one room before check-in")
		}

		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
			"status":  models.BookingActive,
			"version": gorm.Expr("version + 1"),
		}).Error; err != nil {
			return err
		}
		for _, br := range booking.Rooms {
			if err := setRoomStatus(tx, br.RoomID, models.RoomOccupied); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Checkout closes every open room of an ACTIVE booking.
func (s *BookingService) Checkout(ctx context.Context, id uint) (*models.Booking, error) {
	now := s.now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(forUpdate).Preload("Rooms", "active = ? AND checked_out = ?", true, false).First(&booking, id).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if booking.Status != models.BookingActive {
			return failure.Conflict(fmt.Sprintf("booking is %s, only ACTIVE bookings can be checked out", booking.Status))
		}

		for _, br := range booking.Rooms {
			if err := checkoutRow(tx, br, now); err != nil {
				return err
			}
		}
		return tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
			"status":  models.BookingCheckedOut,
			"version": gorm.Expr("version + 1"),
		}).Error
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// CheckoutRoom closes a single room. The booking is closed with its last room.
func (s *BookingService) CheckoutRoom(ctx context.Context, bookingID, bookingRoomID uint) (*models.Booking, error) {
	now := s.now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(forUpdate).First(&booking, bookingID).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if booking.Status != models.BookingActive {
			return failure.Conflict(fmt.Sprintf("booking is %s, only ACTIVE bookings can be checked out", booking.Status))
		}

		var br models.BookingRoom
		if err := tx.Clauses(forUpdate).
			Where("id = ? AND booking_id = ? AND active = ?", bookingRoomID, bookingID, true).
			First(&br).Error; err != nil {
			return notFound(err, "booking room not found")
		}
		if br.CheckedOut {
			return failure.Conflict("room is already checked out")
		}
		if err := checkoutRow(tx, br, now); err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&models.BookingRoom{}).
			Where("booking_id = ? AND active = ? AND checked_out = ?", bookingID, true, false).
			Count(&open).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"version": gorm.Expr("version + 1")}
		if open == 0 {
			updates["status"] = models.BookingCheckedOut
		}
		return tx.Model(&models.Booking{}).Where("id = ?", bookingID).Updates(updates).Error
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}
	s.invalidate(ctx)
	return s.Get(ctx, bookingID)
}

func checkoutRow(tx *gorm.DB, br models.BookingRoom, now time.Time) error {
	if err := tx.Model(&models.BookingRoom{}).Where("id = ?", br.ID).Updates(map[string]interface{}{
		"checked_out":    true,
		"checked_out_at": now,
		"version":        gorm.Expr("version + 1"),
	}).Error; err != nil {
		return err
	}
	return setRoomStatus(tx, br.RoomID, models.RoomAvailable)
}

// Cancel releases the rooms of a booking that has not been checked out.
func (s *BookingService) Cancel(ctx context.Context, identity auth.Identity, id uint) (*models.Booking, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(forUpdate).Preload("Rooms", "active = ? AND checked_out = ?", true, false).First(&booking, id).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if booking.UserID != identity.ID && identity.Role != models.RoleAdmin {
			return failure.Unauthorized("booking belongs to another user")
		}
		switch booking.Status {
		case models.BookingCancelled:
			return failure.Conflict("booking is already cancelled")
		case models.BookingCheckedOut:
			return failure.Conflict("booking is already checked out")
		}

		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
			"status":  models.BookingCancelled,
			"version": gorm.Expr("version + 1"),
		}).Error; err != nil {
			return err
		}
		for _, br := range booking.Rooms {
			if err := setRoomStatus(tx, br.RoomID, models.RoomAvailable); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, failure.TransactionFailed(err)
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}
