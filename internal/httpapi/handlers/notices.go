package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/studyflow/internal/common"
)

func (h *Handler) ListNotices(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	notices, err := h.Redis.Notices(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "redis error")
		return
	}
	common.OK(c, gin.H{"notices": notices})
}

func (h *Handler) ClearNotices(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if err := h.Redis.ClearNotices(c.Request.Context(), uid); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "redis error")
		return
	}
	common.OK(c, nil)
}
