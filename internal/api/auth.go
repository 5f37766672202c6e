package api

import (
	"crypto/subtle"

	"github.com/chat-apropo/speech-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// BearerAuth rejects requests whose Authorization header is not exactly
// token. Rejected requests never reach a handler.
func BearerAuth(token string, strict bool) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader("Authorization"))
		if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			utils.Error(c, strict, utils.KindUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
