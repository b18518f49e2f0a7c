package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/studyflow/studyflow/internal/common"
	"github.com/studyflow/studyflow/internal/history"
	"github.com/studyflow/studyflow/internal/httpapi/middleware"
	"github.com/studyflow/studyflow/internal/job"
	"github.com/studyflow/studyflow/internal/session"
	"github.com/studyflow/studyflow/internal/store/redisstore"
	"github.com/studyflow/studyflow/internal/studyapi"
)

type Handler struct {
	Poller   *job.Poller
	Retries  *job.Coordinator
	API      *studyapi.Client
	Sessions *session.Registry
	Redis    *redisstore.Store
	History  *history.Repo
}

func NewHandler(poller *job.Poller, retries *job.Coordinator, api *studyapi.Client,
	sessions *session.Registry, rds *redisstore.Store, hist *history.Repo) *Handler {
	return &Handler{
		Poller:   poller,
		Retries:  retries,
		API:      api,
		Sessions: sessions,
		Redis:    rds,
		History:  hist,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
