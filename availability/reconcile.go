// Package availability derives room occupancy and the daily front-desk board
// from BookingRoom rows. Everything here is pure: callers load the rows and
// decide whether to persist anything.
package availability

import (
	"sort"
	"time"

	"hotel-frontdesk/models"
	"hotel-frontdesk/timezone"
)

// StayTag labels a stay relative to the reconciliation instant.
type StayTag string

const (
	StayCurrent  StayTag = "current"
	StayExtended StayTag = "extended"
	StayFuture   StayTag = "future"
)

type UpcomingBooking struct {
	BookingID     uint      `json:"bookingId"`
	BookingRoomID uint      `json:"bookingRoomId"`
	ReferenceCode string    `json:"referenceCode"`
	CustomerName  string    `json:"customerName"`
	CheckIn       time.Time `json:"checkIn"`
	CheckOut      time.Time `json:"checkOut"`
	Status        StayTag   `json:"status"`
}

// RoomAvailability is a room enriched with its derived occupancy.
type RoomAvailability struct {
	models.Room

	ActualStatus        models.RoomStatus `json:"actualStatus"`
	NextAvailableDate   *time.Time        `json:"nextAvailableDate"`
	CurrentCustomerName string            `json:"currentCustomerName,omitempty"`
	IsExtendedStay      bool              `json:"isExtendedStay"`
	UpcomingBookings    []UpcomingBooking `json:"upcomingBookings"`

	// Conflict is set when more than one live stay occupies the room at once.
	Conflict bool `json:"conflict,omitempty"`
}

// Stale reports whether the cached room status disagrees with the derived one.
func (a RoomAvailability) Stale() bool {
	return a.ActualStatus != a.Room.Status
}

// Anomaly describes a room occupied by several live stays at the same instant.
type Anomaly struct {
	RoomID         uint
	BookingRoomIDs []uint
}

// Result bundles the per-room output with any detected anomalies.
type Result struct {
	Rooms     []RoomAvailability
	Anomalies []Anomaly
}

// IsLive reports whether a stay still matters for occupancy at now: it is
// active, its booking is not cancelled, and it either starts in the future or
// has not been checked out.
func IsLive(s models.BookingRoom, now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.Booking != nil && (s.Booking.Status == models.BookingCancelled || !s.Booking.Active) {
		return false
	}
	return s.CheckIn.After(now) || !s.CheckedOut
}

// Occupies reports whether s holds the room at now. An unresolved stay keeps
// occupying the room after its scheduled check-out.
func Occupies(s models.BookingRoom, now time.Time) bool {
	return IsLive(s, now) && !s.CheckedOut && !s.CheckIn.After(now)
}

// Reconcile computes the occupancy of every room at now.
func Reconcile(tz *timezone.Normalizer, rooms []models.Room, stays []models.BookingRoom, now time.Time) Result {
	byRoom := make(map[uint][]models.BookingRoom, len(rooms))
	for _, s := range stays {
		if IsLive(s, now) {
			byRoom[s.RoomID] = append(byRoom[s.RoomID], s)
		}
	}

	res := Result{Rooms: make([]RoomAvailability, 0, len(rooms))}
	for _, room := range rooms {
		roomStays := byRoom[room.ID]
		sortStays(roomStays)

		ra, anomaly := reconcileRoom(tz, room, roomStays, now)
		if anomaly != nil {
			res.Anomalies = append(res.Anomalies, *anomaly)
		}
		res.Rooms = append(res.Rooms, ra)
	}
	return res
}

func reconcileRoom(tz *timezone.Normalizer, room models.Room, stays []models.BookingRoom, now time.Time) (RoomAvailability, *Anomaly) {
	ra := RoomAvailability{Room: room, UpcomingBookings: []UpcomingBooking{}}

	var occupying []models.BookingRoom
	var future []models.BookingRoom
	for _, s := range stays {
		if Occupies(s, now) {
			occupying = append(occupying, s)
		} else if s.CheckIn.After(now) {
			future = append(future, s)
		}
	}

	var anomaly *Anomaly
	if len(occupying) > 0 {
		// stays are sorted, so the earliest check-in wins deterministically
		occ := occupying[0]
		if len(occupying) > 1 {
			ra.Conflict = true
			anomaly = &Anomaly{RoomID: room.ID}
			for _, s := range occupying {
				anomaly.BookingRoomIDs = append(anomaly.BookingRoomIDs, s.ID)
			}
		}

		ra.ActualStatus = models.RoomOccupied
		ra.IsExtendedStay = !occ.CheckOut.After(now)
		if !ra.IsExtendedStay {
			next := occ.CheckOut
			ra.NextAvailableDate = &next
		}
		if occ.Booking != nil {
			ra.CurrentCustomerName = occ.Booking.CustomerName()
		}
	} else {
		next := now
		for _, s := range future {
			if s.CheckOut.After(next) {
				next = s.CheckOut
			}
		}
		ra.NextAvailableDate = &next

		switch {
		case room.Status == models.RoomMaintenance:
			ra.ActualStatus = models.RoomMaintenance
		case arrivesToday(tz, future, now):
			ra.ActualStatus = models.RoomReserved
		default:
			ra.ActualStatus = models.RoomAvailable
		}
	}

	ra.UpcomingBookings = upcoming(stays, now)
	return ra, anomaly
}

func arrivesToday(tz *timezone.Normalizer, future []models.BookingRoom, now time.Time) bool {
	for _, s := range future {
		if tz.SameDay(s.CheckIn, now) {
			return true
		}
	}
	return false
}

// upcoming lists one entry per booking, in check-in order.
func upcoming(stays []models.BookingRoom, now time.Time) []UpcomingBooking {
	out := make([]UpcomingBooking, 0, len(stays))
	seen := make(map[uint]struct{}, len(stays))
	for _, s := range stays {
		if _, dup := seen[s.BookingID]; dup {
			continue
		}
		seen[s.BookingID] = struct{}{}

		tag := StayFuture
		if Occupies(s, now) {
			tag = StayCurrent
			if !s.CheckOut.After(now) {
				tag = StayExtended
			}
		}

		ub := UpcomingBooking{
			BookingID:     s.BookingID,
			BookingRoomID: s.ID,
			CheckIn:       s.CheckIn,
			CheckOut:      s.CheckOut,
			Status:        tag,
		}
		if s.Booking != nil {
			ub.ReferenceCode = s.Booking.ReferenceCode
			ub.CustomerName = s.Booking.CustomerName()
		}
		out = append(out, ub)
	}
	return out
}

func sortStays(stays []models.BookingRoom) {
	sort.SliceStable(stays, func(i, j int) bool {
		if !stays[i].CheckIn.Equal(stays[j].CheckIn) {
			return stays[i].CheckIn.Before(stays[j].CheckIn)
		}
		return stays[i].ID < stays[j].ID
	})
}

// Overlaps reports whether two half-open stay intervals intersect.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}
