package services

import (
	"context"
	"sort"

	"hotel-frontdesk/models"
	"hotel-frontdesk/timezone"
	"hotel-frontdesk/utils"
)

type ReportService struct {
	Deps
}

func NewReportService(deps Deps) *ReportService {
	return &ReportService{Deps: deps}
}

type DaySummary struct {
	Date        string             `json:"date"`
	Collections map[string]float64 `json:"collections"`
	Refunds     float64            `json:"refunds"`
	Expenses    float64            `json:"expenses"`
	Net         float64            `json:"net"`
	Bookings    int                `json:"bookings"`
}

type Summary struct {
	From        string             `json:"from"`
	To          string             `json:"to"`
	Collections map[string]float64 `json:"collections"`
	Refunds     float64            `json:"refunds"`
	Expenses    float64            `json:"expenses"`
	Net         float64            `json:"net"`
	Bookings    int                `json:"bookings"`
	Days        []DaySummary       `json:"days"`
}

// summarize groups money movements on operational-timezone days. Refunds are
// negative payments and are reported as a positive total.
func summarize(tz *timezone.Normalizer, payments []models.Payment, expenses []models.Expense, bookings []models.Booking) Summary {
	days := map[string]*DaySummary{}
	day := func(key string) *DaySummary {
		d, ok := days[key]
		if !ok {
			d = &DaySummary{Date: key, Collections: map[string]float64{}}
			days[key] = d
		}
		return d
	}

	sum := Summary{Collections: map[string]float64{}, Days: []DaySummary{}}
	for _, p := range payments {
		d := day(tz.FormatDate(p.Date))
		if p.Amount < 0 {
			d.Refunds -= p.Amount
			sum.Refunds -= p.Amount
			continue
		}
		d.Collections[p.Method.String()] += p.Amount
		sum.Collections[p.Method.String()] += p.Amount
	}
	for _, e := range expenses {
		d := day(tz.FormatDate(e.Date))
		d.Expenses += e.Amount
		sum.Expenses += e.Amount
	}
	for _, b := range bookings {
		day(tz.FormatDate(b.CreatedAt)).Bookings++
		sum.Bookings++
	}

	for _, d := range days {
		var in float64
		for m, v := range d.Collections {
			d.Collections[m] = utils.RoundMoney(v)
			in += v
		}
		d.Refunds = utils.RoundMoney(d.Refunds)
		d.Expenses = utils.RoundMoney(d.Expenses)
		d.Net = utils.RoundMoney(in - d.Refunds - d.Expenses)
		sum.Days = append(sum.Days, *d)
	}
	sort.Slice(sum.Days, func(i, j int) bool { return sum.Days[i].Date < sum.Days[j].Date })

	var in float64
	for m, v := range sum.Collections {
		sum.Collections[m] = utils.RoundMoney(v)
		in += v
	}
	sum.Refunds = utils.RoundMoney(sum.Refunds)
	sum.Expenses = utils.RoundMoney(sum.Expenses)
	sum.Net = utils.RoundMoney(in - sum.Refunds - sum.Expenses)
	return sum
}

func (s *ReportService) Summary(ctx context.Context, from, to string) (*Summary, error) {
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	var payments []models.Payment
	if err := db.Where("date BETWEEN ? AND ?", start, end).Find(&payments).Error; err != nil {
		return nil, err
	}
	var expenses []models.Expense
	if err := db.Where("date BETWEEN ? AND ?", start, end).Find(&expenses).Error; err != nil {
		return nil, err
	}
	var bookings []models.Booking
	if err := db.Where("created_at BETWEEN ? AND ? AND active = ? AND status <> ?", start, end, true, models.BookingCancelled).
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	sum := summarize(s.TZ, payments, expenses, bookings)
	sum.From = s.TZ.FormatDate(start)
	sum.To = s.TZ.FormatDate(end)
	return &sum, nil
}
