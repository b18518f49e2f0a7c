package common

import "github.com/gin-gonic/gin"

// Envelope shared by every endpoint: code=0 means ok, non-zero is a
// business error code paired with the HTTP status.
func OK(c *gin.Context, data any) {
	c.JSON(200, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}
