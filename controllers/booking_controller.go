package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	BookingSvc *services.BookingService
	PaymentSvc *services.PaymentService
	ChargeSvc  *services.ChargeService
	BillSvc    *services.BillService
}

func NewBookingController(
	bookings *services.BookingService,
	payments *services.PaymentService,
	charges *services.ChargeService,
	bills *services.BillService,
) *BookingController {
	return &BookingController{BookingSvc: bookings, PaymentSvc: payments, ChargeSvc: charges, BillSvc: bills}
}

// ---------------------------
// Bookings
// ---------------------------

// CreateBooking (POST /api/bookings)
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req services.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := ctrl.BookingSvc.Create(c.Request.Context(), identity, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// GetBookings (GET /api/bookings?status=&type=&q=&limit=)
func (ctrl *BookingController) GetBookings(c *gin.Context) {
	filter := services.BookingFilter{
		Type:   models.BookingType(c.Query("type")),
		Search: c.Query("q"),
	}
	if raw := c.Query("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > int(models.BookingCancelled) {
			utils.RespondError(c, failure.BadRequestf("invalid status %q", raw))
			return
		}
		status := models.BookingStatus(n)
		filter.Status = &status
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(c, failure.BadRequestf("invalid limit %q", raw))
			return
		}
		filter.Limit = n
	}

	list, err := ctrl.BookingSvc.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GetBookingDetails (GET /api/bookings/:id)
func (ctrl *BookingController) GetBookingDetails(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	booking, err := ctrl.BookingSvc.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// UpdateBooking (PUT /api/bookings)
func (ctrl *BookingController) UpdateBooking(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req services.UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := ctrl.BookingSvc.UpdateBooking(c.Request.Context(), identity, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// CheckInBooking (POST /api/bookings/:id/checkin)
func (ctrl *BookingController) CheckInBooking(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	booking, err := ctrl.BookingSvc.CheckIn(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// CheckoutBooking (POST /api/bookings/:id/checkout)
func (ctrl *BookingController) CheckoutBooking(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	booking, err := ctrl.BookingSvc.Checkout(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// CheckoutRoom (POST /api/bookings/:id/rooms/:roomId/checkout)
func (ctrl *BookingController) CheckoutRoom(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	roomID, err := paramID(c, "roomId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	booking, err := ctrl.BookingSvc.CheckoutRoom(c.Request.Context(), id, roomID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// CancelBooking (POST /api/bookings/:id/cancel)
func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	booking, err := ctrl.BookingSvc.Cancel(c.Request.Context(), identity, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// ---------------------------
// Payments
// ---------------------------

// GetPayments (GET /api/bookings/:id/payments)
func (ctrl *BookingController) GetPayments(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	list, err := ctrl.PaymentSvc.List(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// AddPayment (POST /api/bookings/:id/payments)
func (ctrl *BookingController) AddPayment(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req services.AddPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := ctrl.PaymentSvc.Add(c.Request.Context(), identity, id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, p)
}

// RefundBooking (POST /api/bookings/refund)
func (ctrl *BookingController) RefundBooking(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var req services.RefundRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := ctrl.PaymentSvc.Refund(c.Request.Context(), identity, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// ---------------------------
// Services (extra charges)
// ---------------------------

// GetCharges (GET /api/bookings/:id/services)
func (ctrl *BookingController) GetCharges(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	list, err := ctrl.ChargeSvc.List(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// AddCharge (POST /api/bookings/:id/services)
func (ctrl *BookingController) AddCharge(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req services.ChargeInput
	if !bindJSON(c, &req) {
		return
	}
	svc, err := ctrl.ChargeSvc.Add(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, svc)
}

// DeleteCharge (DELETE /api/services/:id)
func (ctrl *BookingController) DeleteCharge(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := ctrl.ChargeSvc.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// ---------------------------
// Bills
// ---------------------------

// GenerateBill (POST /api/bookings/:id/bill)
func (ctrl *BookingController) GenerateBill(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req services.GenerateBillRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	bill, err := ctrl.BillSvc.Generate(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bill)
}

// GetBill (GET /api/bills/:id)
func (ctrl *BookingController) GetBill(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	bill, err := ctrl.BillSvc.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bill)
}
