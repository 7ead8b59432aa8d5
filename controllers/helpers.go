package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/failure"
	"hotel-frontdesk/middleware"
	"hotel-frontdesk/utils"
)

// paramID reads a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, failure.BadRequestf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

// bindJSON decodes the body; binding errors are validation failures.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, failure.BadRequestf("invalid payload: %s", err.Error()))
		return false
	}
	return true
}

// caller returns the identity set by the auth middleware.
func caller(c *gin.Context) (auth.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		utils.RespondError(c, failure.Unauthorized("authentication required"))
	}
	return identity, ok
}
