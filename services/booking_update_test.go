package services

import (
	"context"
	"database/sql/driver"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
)

var receptionist = auth.Identity{ID: 1, Role: models.RoleReceptionist}

func bookingRow(id, userID, version uint) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "customer_id", "version", "status", "active", "is_online"}).
		AddRow(id, userID, 3, version, int(models.BookingActive), true, false)
}

func TestUpdateBookingRequiresVersion(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{BookingID: 7})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingRejectsInvertedStayBeforeTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
		Rooms: []StayInput{{
			RoomID:   5,
			CheckIn:  "2024-01-05T10:00:00Z",
			CheckOut: "2024-01-04T10:00:00Z",
		}},
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingNotOwner(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 2, 3))
	mock.ExpectRollback()

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
		Notes:     strPtr("late arrival"),
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	assert.True(t, failure.Is(err, failure.KindUnauthorized))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingAdminMayEditAnyBooking(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 2, 4))
	mock.ExpectRollback()

	_, err := svc.UpdateBooking(context.Background(), auth.Identity{ID: 9, Role: models.RoleAdmin}, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
	})

	// past the ownership check, stopped by the version check
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStaleVersion(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 4))
	mock.ExpectRollback()

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
		Notes:     strPtr("late arrival"),
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingMissing(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{BookingID: 7, Version: uintPtr(3)})

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingRollsBackScalarFieldsWhenRoomUpsertFails(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `booking_rooms`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "room_id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rooms`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
		Notes:     strPtr("late arrival"),
		Rooms: []StayInput{{
			RoomID:   5,
			CheckIn:  "2024-01-05",
			CheckOut: "2024-01-06",
		}},
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	// the booking update ran inside the transaction that was rolled back
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingConcurrentWriteIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
		IsOnline:  boolPtr(true),
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingUnclassifiedErrorIsTransactionFailed(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
		Notes:     strPtr("x"),
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	assert.True(t, failure.Is(err, failure.KindTransactionFailed))
	assert.Contains(t, err.Error(), assert.AnError.Error())
	assert.NotEmpty(t, failure.StackTrace(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingValidation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))
	ctx := context.Background()

	cases := map[string]CreateBookingRequest{
		"no customer": {Rooms: []StayInput{{RoomID: 1, CheckIn: "2024-01-02", CheckOut: "2024-01-03"}}},
		"walk-in without rooms": {
			Customer: &CustomerInput{Name: "Asha", Phone: "9000000001"},
		},
		"request without date": {
			Type:     models.BookingRequest,
			Customer: &CustomerInput{Name: "Asha", Phone: "9000000001"},
		},
		"unknown type": {
			Type:     "phone",
			Customer: &CustomerInput{Name: "Asha"},
		},
		"room without id": {
			Customer: &CustomerInput{Name: "Asha"},
			Rooms:    []StayInput{{CheckIn: "2024-01-02", CheckOut: "2024-01-03"}},
		},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, receptionist, req)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerUpdatesKeepsOnlySentFields(t *testing.T) {
	got := customerUpdates(&CustomerInput{Name: " Ravi ", Phone: "", Email: "ravi@example.com"})
	assert.Equal(t, map[string]interface{}{"name": "Ravi", "email": "ravi@example.com"}, got)
}

var stayColumns = []string{"id", "booking_id", "room_id", "check_in", "check_out", "price", "is_ac", "checked_out", "active", "version"}

func stayRow(rows *sqlmock.Rows, id, roomID uint, in, out time.Time, price float64, ac bool) *sqlmock.Rows {
	return rows.AddRow(id, 7, roomID, in, out, price, ac, false, true, 2)
}

func roomRow(id uint, number string, priceAC, priceNonAC float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "room_number", "price_ac", "price_non_ac", "status", "active"}).
		AddRow(id, number, priceAC, priceNonAC, string(models.RoomAvailable), true)
}

func noOverlap() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count(*)"}).AddRow(0)
}

// expectBookingReload covers the Get that follows a committed update, for a
// booking without customer or rooms.
func expectBookingReload(mock sqlmock.Sqlmock, version uint) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "customer_id", "version", "status", "active"}).
			AddRow(7, 1, 0, version, int(models.BookingActive), true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bills`")).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `payments`")).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `booking_rooms`")).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `services`")).WillReturnRows(sqlmock.NewRows([]string{"id"}))
}

func expectRoomStatus(mock sqlmock.Sqlmock, roomID uint, status models.RoomStatus) {
	args := []driver.Value{string(status), sqlmock.AnyArg(), roomID}
	if status != models.RoomOccupied {
		args = append(args, string(models.RoomMaintenance))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `rooms` SET `status`=?")).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestUpdateBookingMovesOccupiedStayAndCreatesAdvance(t *testing.T) {
	db, mock := newMockDB(t)
	now := utc(2024, 1, 2, 6, 30)
	svc := NewBookingService(testDeps(t, db, now))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET `is_advance`=?,`version`=version + 1")).
		WithArgs(true, sqlmock.AnyArg(), 7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// room change: row 11 moves from room 5 to room 6
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `booking_rooms`")).WillReturnRows(
		stayRow(sqlmock.NewRows(stayColumns), 11, 5, utc(2024, 1, 1, 9, 0), utc(2024, 1, 4, 6, 0), 1000, true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rooms`")).WillReturnRows(roomRow(6, "102", 2500, 1900))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `booking_rooms`")).WillReturnRows(noOverlap())
	expectRoomStatus(mock, 5, models.RoomAvailable)
	expectRoomStatus(mock, 6, models.RoomOccupied)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `booking_rooms` SET `price`=?,`room_id`=?,`version`=version + 1")).
		WithArgs(2500.0, 6, sqlmock.AnyArg(), 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// no advance yet, so one is created
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `payments`")).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `payments`")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 7, 1, 500.0, 1, now, true, true, "UPI-9", "", 0.0).
		WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectCommit()
	expectBookingReload(mock, 4)

	booking, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID:   7,
		Version:     uintPtr(3),
		RoomChanges: []RoomChange{{BookingRoomID: 11, OldRoomID: 5, NewRoomID: 6}},
		Advance:     &AdvanceInput{Amount: 500, Method: models.PaymentCard, TransactionID: "UPI-9"},
	})

	require.NoError(t, err)
	assert.Equal(t, uint(4), booking.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingMovingFutureStayLeavesOldRoomStatus(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `booking_rooms`")).WillReturnRows(
		stayRow(sqlmock.NewRows(stayColumns), 11, 5, utc(2024, 1, 10, 9, 0), utc(2024, 1, 12, 6, 0), 1000, false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rooms`")).WillReturnRows(roomRow(6, "102", 2500, 1900))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `booking_rooms`")).WillReturnRows(noOverlap())
	// room 5 may hold another guest today; only the new room is touched
	expectRoomStatus(mock, 6, models.RoomOccupied)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `booking_rooms` SET `price`=?,`room_id`=?")).
		WithArgs(1900.0, 6, sqlmock.AnyArg(), 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectBookingReload(mock, 4)

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID:   7,
		Version:     uintPtr(3),
		RoomChanges: []RoomChange{{BookingRoomID: 11, OldRoomID: 5, NewRoomID: 6}},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingSyncsRoomsAndClearsAdvance(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET `is_advance`=?")).
		WithArgs(false, sqlmock.AnyArg(), 7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// row 11 occupies room 5 now, row 12 is a future stay on room 8 and is dropped
	live := sqlmock.NewRows(stayColumns)
	stayRow(live, 11, 5, utc(2024, 1, 1, 9, 0), utc(2024, 1, 4, 6, 0), 1000, true)
	stayRow(live, 12, 8, utc(2024, 1, 10, 9, 0), utc(2024, 1, 12, 6, 0), 1500, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `booking_rooms`")).WillReturnRows(live)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `booking_rooms`")).
		WithArgs(12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// row 11 is re-dated; its price comes from the room, not the request
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `booking_rooms`")).WillReturnRows(
		stayRow(sqlmock.NewRows(stayColumns), 11, 5, utc(2024, 1, 1, 9, 0), utc(2024, 1, 4, 6, 0), 1000, true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rooms`")).WillReturnRows(roomRow(5, "101", 2200, 1800))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `booking_rooms`")).WillReturnRows(noOverlap())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `booking_rooms` SET `adults`=?,`check_in`=?,`check_out`=?")).
		WithArgs(2, utc(2024, 1, 1, 9, 0), utc(2024, 1, 5, 6, 0), 1, 0.0, 0, false, 1800.0, sqlmock.AnyArg(), 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `payments`")).
		WithArgs(7, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectBookingReload(mock, 4)

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
		IsAdvance: boolPtr(false),
		Rooms: []StayInput{{
			ID:       11,
			RoomID:   5,
			CheckIn:  "2024-01-01T09:00:00Z",
			CheckOut: "2024-01-05T06:00:00Z",
			Adults:   2,
			Children: 1,
			Price:    1,
		}},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingUpdatesExistingAdvance(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBookingService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `payments`")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "booking_id", "amount", "is_advance", "active"}).AddRow(4, 7, 300.0, true, true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `payments` SET `amount`=?,`method`=?,`transaction_id`=?")).
		WithArgs(800.0, 2, "", sqlmock.AnyArg(), 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectBookingReload(mock, 4)

	_, err := svc.UpdateBooking(context.Background(), receptionist, UpdateBookingRequest{
		BookingID: 7,
		Version:   uintPtr(3),
		IsAdvance: boolPtr(true),
		Advance:   &AdvanceInput{Amount: 800, Method: models.PaymentOnline},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
