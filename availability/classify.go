package availability

import (
	"slices"
	"sort"
	"strconv"
	"time"

	"hotel-frontdesk/models"
	"hotel-frontdesk/timezone"
)

// Bucket names a section of the daily board.
type Bucket string

const (
	BucketCheckin  Bucket = "todayCheckin"
	BucketOverstay Bucket = "overstay"
	BucketStaying  Bucket = "staying"
	BucketCheckout Bucket = "checkout"
	BucketPending  Bucket = "pendingRequests"
)

// DailyInput is everything the classifier needs for one civil day.
type DailyInput struct {
	Target time.Time
	Now    time.Time

	// Rooms holds the active rooms.
	Rooms []models.Room
	// Stays holds the rows of ACTIVE bookings, with Booking and Room preloaded.
	// In strict checkout mode it may also carry rows of CHECKED_OUT bookings;
	// those only feed the checkout bucket.
	Stays []models.BookingRoom
	// Requests holds PENDING request bookings, with Rooms preloaded.
	Requests []models.Booking

	// StrictCheckout limits the checkout bucket to rows checked out on Target.
	StrictCheckout bool
}

type BoardEntry struct {
	BookingID     uint      `json:"bookingId"`
	ReferenceCode string    `json:"referenceCode"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	RoomIDs       []uint    `json:"roomIds"`
	RoomNumbers   []string  `json:"roomNumbers"`
	CheckIn       time.Time `json:"checkIn"`
	CheckOut      time.Time `json:"checkOut"`
}

type RequestEntry struct {
	BookingID     uint      `json:"bookingId"`
	ReferenceCode string    `json:"referenceCode"`
	CustomerName  string    `json:"customerName"`
	RequestedDate time.Time `json:"requestedDate"`
	RoomCount     int       `json:"roomCount"`
	RoomIDs       []uint    `json:"roomIds"`
}

type RoomSummary struct {
	ID         uint              `json:"id"`
	RoomNumber string            `json:"roomNumber"`
	RoomTypeID *uint             `json:"roomTypeId,omitempty"`
	FloorID    *uint             `json:"floorId,omitempty"`
	Status     models.RoomStatus `json:"status"`
}

type DailyStats struct {
	TotalRooms      int `json:"totalRooms"`
	OccupiedRooms   int `json:"occupiedRooms"`
	AvailableRooms  int `json:"availableRooms"`
	TodayCheckin    int `json:"todayCheckin"`
	Checkout        int `json:"checkout"`
	Overstay        int `json:"overstay"`
	Staying         int `json:"staying"`
	PendingRequests int `json:"pendingRequests"`
}

// DailyBoard is the availability view for one civil day.
type DailyBoard struct {
	Date            string         `json:"date"`
	TotalRooms      int            `json:"totalRooms"`
	Booked          int            `json:"booked"`
	Available       int            `json:"available"`
	AvailableRooms  []RoomSummary  `json:"availableRooms"`
	OccupiedRoomIDs []uint         `json:"occupiedRoomIds"`
	TodayCheckin    []BoardEntry   `json:"todayCheckin"`
	Checkout        []BoardEntry   `json:"checkout"`
	Overstay        []BoardEntry   `json:"overstay"`
	Staying         []BoardEntry   `json:"staying"`
	PendingRequests []RequestEntry `json:"pendingRequests"`
	Stats           DailyStats     `json:"stats"`
}

// board accumulates entries per bucket, one entry per booking reference.
type board struct {
	entries map[Bucket][]BoardEntry
	index   map[string]int
}

func newBoard() *board {
	return &board{entries: map[Bucket][]BoardEntry{}, index: map[string]int{}}
}

func (b *board) add(bucket Bucket, s models.BookingRoom) {
	ref := bookingRef(s)
	key := string(bucket) + "_" + ref
	if i, ok := b.index[key]; ok {
		e := &b.entries[bucket][i]
		if !slices.Contains(e.RoomIDs, s.RoomID) {
			e.RoomIDs = append(e.RoomIDs, s.RoomID)
			e.RoomNumbers = append(e.RoomNumbers, roomNumber(s))
		}
		if s.CheckIn.Before(e.CheckIn) {
			e.CheckIn = s.CheckIn
		}
		if s.CheckOut.After(e.CheckOut) {
			e.CheckOut = s.CheckOut
		}
		return
	}

	e := BoardEntry{
		BookingID:     s.BookingID,
		ReferenceCode: ref,
		RoomIDs:       []uint{s.RoomID},
		RoomNumbers:   []string{roomNumber(s)},
		CheckIn:       s.CheckIn,
		CheckOut:      s.CheckOut,
	}
	if s.Booking != nil && s.Booking.Customer != nil {
		e.CustomerName = s.Booking.Customer.Name
		e.CustomerPhone = s.Booking.Customer.Phone
	}
	b.index[key] = len(b.entries[bucket])
	b.entries[bucket] = append(b.entries[bucket], e)
}

func (b *board) list(bucket Bucket) []BoardEntry {
	if out := b.entries[bucket]; out != nil {
		return out
	}
	return []BoardEntry{}
}

// Classify partitions the stays of ACTIVE bookings into the board buckets for
// in.Target. A booking lands in at most one of todayCheckin, overstay and
// staying, in that order of priority.
func Classify(tz *timezone.Normalizer, in DailyInput) DailyBoard {
	target := tz.Day(in.Target)
	today := tz.Day(in.Now)

	stays := make([]models.BookingRoom, 0, len(in.Stays))
	var closed []models.BookingRoom
	for _, s := range in.Stays {
		if !s.Active {
			continue
		}
		switch {
		case s.Booking == nil || s.Booking.Status == models.BookingActive:
			stays = append(stays, s)
		case in.StrictCheckout && s.CheckedOut && s.Booking.Status == models.BookingCheckedOut:
			closed = append(closed, s)
		}
	}
	sortStays(stays)
	sortStays(closed)

	lastCheckout := map[uint]time.Time{}
	for _, s := range stays {
		day := tz.Day(s.CheckOut)
		if cur, ok := lastCheckout[s.BookingID]; !ok || day.After(cur) {
			lastCheckout[s.BookingID] = day
		}
	}

	isCheckin := func(s models.BookingRoom) bool {
		return tz.Day(s.CheckIn).Equal(target)
	}
	isOverstay := func(s models.BookingRoom) bool {
		return !s.CheckedOut && lastCheckout[s.BookingID].Before(today) && !target.After(today)
	}
	isStaying := func(s models.BookingRoom) bool {
		return occupiedOn(tz, s, target)
	}

	// resolve the winning bucket per booking before emitting rows
	winner := map[uint]Bucket{}
	for _, s := range stays {
		var b Bucket
		switch {
		case isCheckin(s):
			b = BucketCheckin
		case isOverstay(s):
			b = BucketOverstay
		case isStaying(s):
			b = BucketStaying
		default:
			continue
		}
		if cur, ok := winner[s.BookingID]; !ok || rank(b) < rank(cur) {
			winner[s.BookingID] = b
		}
	}

	brd := newBoard()
	occupied := map[uint]struct{}{}
	for _, s := range stays {
		if occupiedOn(tz, s, target) {
			occupied[s.RoomID] = struct{}{}
		}

		bucket, ok := winner[s.BookingID]
		if ok {
			switch bucket {
			case BucketCheckin:
				if isCheckin(s) {
					brd.add(bucket, s)
				}
			case BucketOverstay:
				if isOverstay(s) {
					brd.add(bucket, s)
				}
			case BucketStaying:
				if isStaying(s) {
					brd.add(bucket, s)
				}
			}
		}

		if target.Equal(today) && s.CheckedOut && checkedOutMatches(tz, s, target, in.StrictCheckout) {
			brd.add(BucketCheckout, s)
		}
	}
	if target.Equal(today) {
		for _, s := range closed {
			if checkedOutMatches(tz, s, target, true) {
				brd.add(BucketCheckout, s)
			}
		}
	}

	requests, requestRooms := pendingRequests(tz, in.Requests, target)

	available := make([]RoomSummary, 0, len(in.Rooms))
	for _, r := range in.Rooms {
		if !r.Active {
			continue
		}
		if _, busy := occupied[r.ID]; busy {
			continue
		}
		if _, held := requestRooms[r.ID]; held {
			continue
		}
		available = append(available, RoomSummary{
			ID:         r.ID,
			RoomNumber: r.RoomNumber,
			RoomTypeID: r.RoomTypeID,
			FloorID:    r.FloorID,
			Status:     r.Status,
		})
	}

	occupiedIDs := make([]uint, 0, len(occupied))
	for id := range occupied {
		occupiedIDs = append(occupiedIDs, id)
	}
	sort.Slice(occupiedIDs, func(i, j int) bool { return occupiedIDs[i] < occupiedIDs[j] })

	totalRooms := 0
	for _, r := range in.Rooms {
		if r.Active {
			totalRooms++
		}
	}

	out := DailyBoard{
		Date:            tz.FormatDate(target),
		TotalRooms:      totalRooms,
		Booked:          len(occupiedIDs),
		Available:       len(available),
		AvailableRooms:  available,
		OccupiedRoomIDs: occupiedIDs,
		TodayCheckin:    brd.list(BucketCheckin),
		Checkout:        brd.list(BucketCheckout),
		Overstay:        brd.list(BucketOverstay),
		Staying:         brd.list(BucketStaying),
		PendingRequests: requests,
	}
	out.Stats = DailyStats{
		TotalRooms:      out.TotalRooms,
		OccupiedRooms:   out.Booked,
		AvailableRooms:  out.Available,
		TodayCheckin:    len(out.TodayCheckin),
		Checkout:        len(out.Checkout),
		Overstay:        len(out.Overstay),
		Staying:         len(out.Staying),
		PendingRequests: len(out.PendingRequests),
	}
	return out
}

// occupiedOn applies the extension rule: a stay that is not checked out keeps
// its room past the booked check-out, up to and including target. This matches
// the open-ended overlap check on the write path.
func occupiedOn(tz *timezone.Normalizer, s models.BookingRoom, target time.Time) bool {
	if s.CheckedOut {
		return false
	}
	ciDay := tz.Day(s.CheckIn)
	end := tz.Day(s.CheckOut)
	if end.Before(target) {
		end = target
	}
	return !ciDay.After(target) && !target.After(end)
}

func checkedOutMatches(tz *timezone.Normalizer, s models.BookingRoom, target time.Time, strict bool) bool {
	if !strict {
		return true
	}
	at := s.CheckOut
	if s.CheckedOutAt != nil {
		at = *s.CheckedOutAt
	}
	return tz.Day(at).Equal(target)
}

func pendingRequests(tz *timezone.Normalizer, bookings []models.Booking, target time.Time) ([]RequestEntry, map[uint]struct{}) {
	out := []RequestEntry{}
	rooms := map[uint]struct{}{}
	seen := map[string]struct{}{}
	for _, b := range bookings {
		if b.Type != models.BookingRequest || b.Status != models.BookingPending || !b.Active || b.RequestedDate == nil {
			continue
		}
		if !tz.Day(*b.RequestedDate).Equal(target) {
			continue
		}
		key := string(BucketPending) + "_" + b.ReferenceCode
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		e := RequestEntry{
			BookingID:     b.ID,
			ReferenceCode: b.ReferenceCode,
			CustomerName:  b.CustomerName(),
			RequestedDate: *b.RequestedDate,
			RoomCount:     b.RoomCount,
			RoomIDs:       []uint{},
		}
		for _, br := range b.Rooms {
			if !br.Active {
				continue
			}
			rooms[br.RoomID] = struct{}{}
			if !slices.Contains(e.RoomIDs, br.RoomID) {
				e.RoomIDs = append(e.RoomIDs, br.RoomID)
			}
		}
		out = append(out, e)
	}
	return out, rooms
}

func rank(b Bucket) int {
	switch b {
	case BucketCheckin:
		return 0
	case BucketOverstay:
		return 1
	default:
		return 2
	}
}

func bookingRef(s models.BookingRoom) string {
	if s.Booking != nil && s.Booking.ReferenceCode != "" {
		return s.Booking.ReferenceCode
	}
	return "booking-" + strconv.FormatUint(uint64(s.BookingID), 10)
}

func roomNumber(s models.BookingRoom) string {
	if s.Room != nil {
		return s.Room.RoomNumber
	}
	return ""
}
