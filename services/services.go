package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-frontdesk/cache"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/timezone"
)

// Deps is shared by every service.
type Deps struct {
	DB     *gorm.DB
	TZ     *timezone.Normalizer
	Cache  *cache.Cache
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewDeps(db *gorm.DB, tz *timezone.Normalizer, c *cache.Cache, logger *logrus.Logger) Deps {
	return Deps{DB: db, TZ: tz, Cache: c, Logger: logger, Now: func() time.Time { return time.Now().UTC() }}
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func (d Deps) log() *logrus.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logrus.StandardLogger()
}

// invalidate drops cached availability views after a committed write.
func (d Deps) invalidate(ctx context.Context) {
	if err := d.Cache.Bump(ctx); err != nil {
		d.log().WithError(err).Warn("availability cache bump failed")
	}
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

// notFound converts gorm's missing-row error into a NotFound failure.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return failure.NotFound(msg)
	}
	return err
}

func isForeignKeyError(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1451 || merr.Number == 1452
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

func isDuplicateError(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}

// countOverlaps counts live stays on roomID that intersect [in, out). A stay
// that is not checked out keeps the room until it is resolved, so once now is
// past in every such stay starting before out overlaps.
func countOverlaps(tx *gorm.DB, roomID uint, in, out, now time.Time, excludeID uint) (int64, error) {
	q := tx.Model(&models.BookingRoom{}).
		Joins("JOIN bookings ON bookings.id = booking_rooms.booking_id").
		Where("booking_rooms.room_id = ? AND booking_rooms.active = ? AND booking_rooms.checked_out = ?", roomID, true, false).
		Where("bookings.status <> ? AND bookings.active = ?", models.BookingCancelled, true).
		Where("booking_rooms.check_in < ?", out)
	if !now.After(in) {
		q = q.Where("booking_rooms.check_out > ?", in)
	}
	if excludeID != 0 {
		q = q.Where("booking_rooms.id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// setRoomStatus flips the cached status. Rooms under maintenance are only
// changed when explicitly moved to OCCUPIED.
func setRoomStatus(tx *gorm.DB, roomID uint, status models.RoomStatus) error {
	q := tx.Model(&models.Room{}).Where("id = ?", roomID)
	if status != models.RoomOccupied {
		q = q.Where("status <> ?", models.RoomMaintenance)
	}
	return q.Update("status", status).Error
}

// stayPrice reads the nightly rate from the room; the caller's price is only
// used when the room has no rate for that combination.
func stayPrice(room models.Room, ac, online bool, fallback float64) float64 {
	if p := room.PriceFor(ac, online); p > 0 {
		return p
	}
	return fallback
}
