package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/failure"
)

// EnvironmentKey is where the environment middleware stores APP_ENV.
const EnvironmentKey = "environment"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, errCode, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": gin.H{"code": errCode, "message": message}})
}

// RespondError maps err onto the error envelope. Stack traces are only
// attached in development.
func RespondError(c *gin.Context, err error) {
	code := failure.GetCode(err)
	kind := failure.GetKind(err)

	message := err.Error()
	if code == http.StatusInternalServerError && kind != failure.KindTransactionFailed {
		message = "internal server error"
	}

	body := gin.H{
		"code":    "error." + string(kind),
		"message": message,
	}
	if c.GetString(EnvironmentKey) == "development" {
		if stack := failure.StackTrace(err); stack != "" {
			body["details"] = stack
		} else if message != err.Error() {
			body["details"] = err.Error()
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": body})
}
