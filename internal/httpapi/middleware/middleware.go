package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/studyflow/studyflow/internal/auth"
	"github.com/studyflow/studyflow/internal/common"
)

const (
	UserIDKey    = "user_id"
	RequestIDKey = "request_id"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(RequestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered path=%s err=%v", c.FullPath(), r)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// AuthRequired validates a Bearer token minted by the auth service and
// stashes the user id on the context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			common.Fail(c, http.StatusUnauthorized, 40100, "missing bearer token")
			c.Abort()
			return
		}
		uid, err := auth.ParseUserID(strings.TrimPrefix(h, "Bearer "), secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
			c.Abort()
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}
