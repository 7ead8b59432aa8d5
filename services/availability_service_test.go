package services

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-frontdesk/availability"
	"hotel-frontdesk/cache"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
)

func TestDailyRequiresDate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAvailabilityService(testDeps(t, db, utc(2024, 1, 2, 6, 30)), false, false)

	for _, date := range []string{"", "2024-13-01", "02-01-2024"} {
		_, err := svc.Daily(context.Background(), date, nil)
		require.Error(t, err, date)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyServesCachedBoard(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.New(client, time.Minute)

	db, mock := newMockDB(t)
	deps := testDeps(t, db, utc(2024, 1, 2, 6, 30))
	deps.Cache = c
	svc := NewAvailabilityService(deps, false, false)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "availability", "daily", "2024-01-02", "2024-01-02", "false")
	require.NoError(t, err)
	var seeded availability.DailyBoard
	require.NoError(t, c.FetchJSON(ctx, key, &seeded, func(context.Context) (any, error) {
		return availability.DailyBoard{Date: "2024-01-02", TotalRooms: 7}, nil
	}))

	board, err := svc.Daily(ctx, "2024-01-02", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, board.TotalRooms)

	// without redis the board is computed directly, which hits the database
	mr.Close()
	_, err = svc.Daily(ctx, "2024-01-02", boolPtr(true))
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWritesBumpCacheVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.New(client, time.Minute)
	ctx := context.Background()

	before, err := c.Version(ctx)
	require.NoError(t, err)

	deps := testDeps(t, nil, utc(2024, 1, 2, 6, 30))
	deps.Cache = c
	deps.invalidate(ctx)

	after, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestDailyStrictLoadsRowsOfClosedBookings(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAvailabilityService(testDeps(t, db, utc(2024, 1, 2, 6, 30)), false, false)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rooms`")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "room_number", "status", "active"}).
			AddRow(5, "101", string(models.RoomAvailable), true).
			AddRow(6, "102", string(models.RoomAvailable), true))
	mock.ExpectQuery("FROM `booking_rooms` JOIN bookings").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// booking 9 was fully checked out this morning
	mock.ExpectQuery("FROM `booking_rooms` JOIN bookings").
		WithArgs(int(models.BookingCheckedOut), true, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "room_id", "check_in", "check_out", "checked_out", "checked_out_at", "active", "version"}).
			AddRow(30, 9, 5, utc(2024, 1, 1, 9, 0), utc(2024, 1, 3, 6, 0), true, utc(2024, 1, 2, 4, 0), true, 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `bookings` WHERE `bookings`.`id`")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "customer_id", "status", "active", "reference_code"}).
			AddRow(9, 0, int(models.BookingCheckedOut), true, "BK9"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `rooms` WHERE `rooms`.`id`")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "room_number", "status", "active"}).
			AddRow(5, "101", string(models.RoomAvailable), true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `bookings` WHERE type = ?")).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	board, err := svc.Daily(context.Background(), "2024-01-02", boolPtr(true))

	require.NoError(t, err)
	require.Len(t, board.Checkout, 1)
	assert.Equal(t, uint(9), board.Checkout[0].BookingID)
	assert.Empty(t, board.Staying)
	assert.Equal(t, 2, board.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}
