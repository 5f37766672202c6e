package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error writes {"error": msg}. Domain errors keep HTTP 200 unless strict is
// set, in which case the kind's REST status is used. Authorization and body
// size failures always carry their real status.
func Error(c *gin.Context, strict bool, kind Kind, msg string) {
	code := http.StatusOK
	if strict || kind == KindUnauthorized || kind == KindPayloadTooLarge {
		code = StatusFor(kind)
	}
	c.JSON(code, gin.H{
		"error": msg,
	})
}

// Fail renders err using its APIError message.
func Fail(c *gin.Context, strict bool, err error) {
	apiErr := AsAPIError(err)
	Error(c, strict, apiErr.Kind, apiErr.Message)
}
