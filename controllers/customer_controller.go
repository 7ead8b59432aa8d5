package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type CustomerController struct {
	CustomerSvc *services.CustomerService
}

func NewCustomerController(svc *services.CustomerService) *CustomerController {
	return &CustomerController{CustomerSvc: svc}
}

// CreateCustomer (POST /api/customers). An existing phone number updates that customer.
func (ctrl *CustomerController) CreateCustomer(c *gin.Context) {
	var in services.CustomerInput
	if !bindJSON(c, &in) {
		return
	}
	customer, err := ctrl.CustomerSvc.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, customer)
}

// GetCustomers (GET /api/customers?phone=|q=)
func (ctrl *CustomerController) GetCustomers(c *gin.Context) {
	if phone := c.Query("phone"); phone != "" {
		customer, err := ctrl.CustomerSvc.FindByPhone(c.Request.Context(), phone)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, customer)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := ctrl.CustomerSvc.List(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GetCustomer (GET /api/customers/:id)
func (ctrl *CustomerController) GetCustomer(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	customer, err := ctrl.CustomerSvc.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, customer)
}

// UploadImage (POST /api/customers/:id/images)
func (ctrl *CustomerController) UploadImage(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var in services.ImageUpload
	if !bindJSON(c, &in) {
		return
	}
	customer, err := ctrl.CustomerSvc.UploadImage(c.Request.Context(), id, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, customer)
}
