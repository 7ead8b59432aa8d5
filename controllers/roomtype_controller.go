package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type RoomTypeController struct {
	RoomTypeSvc *services.RoomTypeService
	FloorSvc    *services.FloorService
}

func NewRoomTypeController(types *services.RoomTypeService, floors *services.FloorService) *RoomTypeController {
	return &RoomTypeController{RoomTypeSvc: types, FloorSvc: floors}
}

func (ctrl *RoomTypeController) GetRoomTypes(c *gin.Context) {
	types, err := ctrl.RoomTypeSvc.GetAll(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

func (ctrl *RoomTypeController) CreateRoomType(c *gin.Context) {
	var in services.RoomTypeInput
	if !bindJSON(c, &in) {
		return
	}
	rt, err := ctrl.RoomTypeSvc.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, rt)
}

func (ctrl *RoomTypeController) UpdateRoomType(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var in services.RoomTypeInput
	if !bindJSON(c, &in) {
		return
	}
	rt, err := ctrl.RoomTypeSvc.Update(c.Request.Context(), id, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rt)
}

func (ctrl *RoomTypeController) DeleteRoomType(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := ctrl.RoomTypeSvc.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// Floors share the controller; they are just as thin.

func (ctrl *RoomTypeController) GetFloors(c *gin.Context) {
	floors, err := ctrl.FloorSvc.GetAll(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, floors)
}

func (ctrl *RoomTypeController) CreateFloor(c *gin.Context) {
	var in services.FloorInput
	if !bindJSON(c, &in) {
		return
	}
	f, err := ctrl.FloorSvc.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, f)
}

func (ctrl *RoomTypeController) DeleteFloor(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := ctrl.FloorSvc.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}
