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

type RoomController struct {
	RoomSvc         *services.RoomService
	AvailabilitySvc *services.AvailabilityService
}

func NewRoomController(rooms *services.RoomService, availability *services.AvailabilityService) *RoomController {
	return &RoomController{RoomSvc: rooms, AvailabilitySvc: availability}
}

// ----------------------------------------------------
// Availability
// ----------------------------------------------------

// GetRooms (GET /api/rooms) returns every active room with its derived occupancy.
func (ctrl *RoomController) GetRooms(c *gin.Context) {
	rooms, err := ctrl.AvailabilitySvc.RoomsWithAvailability(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GetBookingAvailability (GET /api/booking-availability?date=YYYY-MM-DD&strictCheckout=)
func (ctrl *RoomController) GetBookingAvailability(c *gin.Context) {
	var strict *bool
	if raw := c.Query("strictCheckout"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, failure.BadRequestf("invalid strictCheckout %q", raw))
			return
		}
		strict = &v
	}
	board, err := ctrl.AvailabilitySvc.Daily(c.Request.Context(), c.Query("date"), strict)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, board)
}

// ReconcileRooms (POST /api/rooms/reconcile) persists derived statuses on stale rooms.
func (ctrl *RoomController) ReconcileRooms(c *gin.Context) {
	report, err := ctrl.AvailabilitySvc.ReconcileRoomStatuses(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, report)
}

// ----------------------------------------------------
// CRUD
// ----------------------------------------------------

// GetRoom (GET /api/rooms/:id)
func (ctrl *RoomController) GetRoom(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	room, err := ctrl.RoomSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// CreateRoom (POST /api/rooms)
func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var in services.RoomInput
	if !bindJSON(c, &in) {
		return
	}
	room, err := ctrl.RoomSvc.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// UpdateRoom (PUT /api/rooms/:id)
func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var in services.RoomInput
	if !bindJSON(c, &in) {
		return
	}
	room, err := ctrl.RoomSvc.Update(c.Request.Context(), id, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

type roomStatusPayload struct {
	Status models.RoomStatus `json:"status"`
}

// UpdateRoomStatus (PATCH /api/rooms/:id/status)
func (ctrl *RoomController) UpdateRoomStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var payload roomStatusPayload
	if !bindJSON(c, &payload) {
		return
	}
	room, err := ctrl.RoomSvc.SetStatus(c.Request.Context(), id, payload.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// DeleteRoom (DELETE /api/rooms/:id) retires the room.
func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := ctrl.RoomSvc.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}
