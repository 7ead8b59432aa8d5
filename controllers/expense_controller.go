package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type ExpenseController struct {
	ExpenseSvc *services.ExpenseService
	ReportSvc  *services.ReportService
}

func NewExpenseController(expenses *services.ExpenseService, reports *services.ReportService) *ExpenseController {
	return &ExpenseController{ExpenseSvc: expenses, ReportSvc: reports}
}

// GetExpenses (GET /api/expenses?from=&to=)
func (ctrl *ExpenseController) GetExpenses(c *gin.Context) {
	list, err := ctrl.ExpenseSvc.List(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// CreateExpense (POST /api/expenses)
func (ctrl *ExpenseController) CreateExpense(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	var in services.ExpenseInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := ctrl.ExpenseSvc.Create(c.Request.Context(), identity, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, e)
}

// DeleteExpense (DELETE /api/expenses/:id)
func (ctrl *ExpenseController) DeleteExpense(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := ctrl.ExpenseSvc.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// GetSummary (GET /api/reports/summary?from=&to=)
func (ctrl *ExpenseController) GetSummary(c *gin.Context) {
	sum, err := ctrl.ReportSvc.Summary(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sum)
}
