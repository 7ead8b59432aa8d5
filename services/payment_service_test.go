package services

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
)

func payment(id uint, amount float64, date time.Time) models.Payment {
	return models.Payment{ID: id, Amount: amount, Date: date, Active: true, Method: models.PaymentCash}
}

func TestPlanRefundConsumesNewestFirst(t *testing.T) {
	payments := []models.Payment{
		payment(1, 400, utc(2024, 1, 1, 10, 0)),
		payment(2, 300, utc(2024, 1, 2, 10, 0)),
	}

	plan, err := planRefund(payments, 500)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, uint(2), plan[0].PaymentID)
	assert.Equal(t, 300.0, plan[0].Taken)
	assert.False(t, plan[0].Active)
	assert.Equal(t, "refunded 300", plan[0].Note)

	assert.Equal(t, uint(1), plan[1].PaymentID)
	assert.Equal(t, 200.0, plan[1].Taken)
	assert.Equal(t, 200.0, plan[1].Refunded)
	assert.True(t, plan[1].Active)
	assert.Equal(t, "refunded 200", plan[1].Note)
}

func TestPlanRefundSameDateUsesHigherIDFirst(t *testing.T) {
	day := utc(2024, 1, 1, 10, 0)
	plan, err := planRefund([]models.Payment{payment(4, 100, day), payment(9, 100, day)}, 50)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, uint(9), plan[0].PaymentID)
	assert.True(t, plan[0].Active)
}

func TestPlanRefundHonoursEarlierRefunds(t *testing.T) {
	p := payment(1, 400, utc(2024, 1, 1, 10, 0))
	p.RefundedAmount = 300
	p.Note = "advance"

	_, err := planRefund([]models.Payment{p}, 150)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

	plan, err := planRefund([]models.Payment{p}, 100)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 400.0, plan[0].Refunded)
	assert.False(t, plan[0].Active)
	assert.Equal(t, "advance; refunded 100", plan[0].Note)
}

func TestPlanRefundIgnoresInactiveAndNegativeRows(t *testing.T) {
	inactive := payment(1, 1000, utc(2024, 1, 3, 10, 0))
	inactive.Active = false
	refund := payment(2, -200, utc(2024, 1, 3, 11, 0))

	_, err := planRefund([]models.Payment{inactive, refund, payment(3, 100, utc(2024, 1, 1, 0, 0))}, 101)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestPlanRefundRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -10} {
		_, err := planRefund([]models.Payment{payment(1, 100, utc(2024, 1, 1, 0, 0))}, amount)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	}
}

func TestPlanRefundFractionalNote(t *testing.T) {
	plan, err := planRefund([]models.Payment{payment(1, 100, utc(2024, 1, 1, 0, 0))}, 12.5)
	require.NoError(t, err)
	assert.Equal(t, "refunded 12.5", plan[0].Note)
}

func TestRefundRejectsNonPositiveAmountBeforeTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	_, err := svc.Refund(context.Background(), receptionist, RefundRequest{BookingID: 7, Amount: 0})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundOverLimitCreatesNoPayment(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `payments`")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "booking_id", "amount", "method", "date", "active", "refunded_amount", "note"}).
			AddRow(1, 7, 300.0, 0, utc(2024, 1, 1, 10, 0), true, 0.0, "").
			AddRow(2, 7, 400.0, 1, utc(2024, 1, 2, 10, 0), true, 0.0, ""),
	)
	mock.ExpectRollback()

	_, err := svc.Refund(context.Background(), receptionist, RefundRequest{BookingID: 7, Amount: 700.01})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.Contains(t, err.Error(), "exceeds refundable total 700")
	// no INSERT was expected, so a created refund row would fail here
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundMissingBooking(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.Refund(context.Background(), receptionist, RefundRequest{BookingID: 7, Amount: 10})

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundNotOwner(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(testDeps(t, db, utc(2024, 1, 2, 6, 30)))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 5, 3))
	mock.ExpectRollback()

	_, err := svc.Refund(context.Background(), receptionist, RefundRequest{BookingID: 7, Amount: 10})

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundRecordsNegativePaymentAndMarksConsumedRows(t *testing.T) {
	db, mock := newMockDB(t)
	now := utc(2024, 1, 3, 6, 30)
	svc := NewPaymentService(testDeps(t, db, now))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings`")).WillReturnRows(bookingRow(7, 1, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `payments`")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "booking_id", "amount", "method", "date", "active", "refunded_amount", "note"}).
			AddRow(1, 7, 400.0, 0, utc(2024, 1, 1, 10, 0), true, 0.0, "").
			AddRow(2, 7, 300.0, 1, utc(2024, 1, 2, 10, 0), true, 0.0, ""),
	)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `payments`")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 7, 1, -500.0, 0, now, false, true, "", "refund", 0.0).
		WillReturnResult(sqlmock.NewResult(9, 1))
	// newest payment is consumed in full, the older one in part
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `payments` SET `active`=?,`note`=?,`refunded_amount`=?")).
		WithArgs(false, "refunded 300", 300.0, sqlmock.AnyArg(), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `payments` SET `active`=?,`note`=?,`refunded_amount`=?")).
		WithArgs(true, "refunded 200", 200.0, sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `payments`")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "booking_id", "amount", "date", "active", "refunded_amount"}).
			AddRow(9, 7, -500.0, now, true, 0.0).
			AddRow(2, 7, 300.0, utc(2024, 1, 2, 10, 0), false, 300.0).
			AddRow(1, 7, 400.0, utc(2024, 1, 1, 10, 0), true, 200.0),
	)
	mock.ExpectCommit()

	res, err := svc.Refund(context.Background(), receptionist, RefundRequest{BookingID: 7, Amount: 500})

	require.NoError(t, err)
	assert.Equal(t, uint(9), res.Refund.ID)
	assert.Equal(t, -500.0, res.Refund.Amount)
	assert.Equal(t, "refund", res.Refund.Note)
	require.Len(t, res.Payments, 3)
	assert.False(t, res.Payments[1].Active)
	assert.Equal(t, 200.0, res.Payments[2].RefundedAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
