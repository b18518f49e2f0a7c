package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/studyflow/internal/common"
	"github.com/studyflow/studyflow/internal/job"
)

type jobView struct {
	job.Job
	Stage       job.Stage `json:"stage"`
	Explanation string    `json:"explanation,omitempty"`
	Retryable   bool      `json:"retryable"`
	Retrying    bool      `json:"retrying"`
}

func (h *Handler) jobView(j job.Job) jobView {
	st := h.Poller.Stage(j)
	retrying := h.Retries.Retrying(j.ID)
	return jobView{
		Job:         j,
		Stage:       st,
		Explanation: st.Classification.Explanation(),
		Retryable:   st.Classification.Retryable() && !retrying,
		Retrying:    retrying,
	}
}

// ListJobs serves the poller's cached collection. A stale snapshot with
// fetch_error set beats an empty one; the client shows a dismissible
// notice and the next cycle retries on its own.
func (h *Handler) ListJobs(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	snap := h.Poller.Snapshot()
	views := make([]jobView, 0, len(snap.Jobs))
	for _, j := range snap.Jobs {
		if j.UserID != uid {
			continue
		}
		views = append(views, h.jobView(j))
	}

	common.OK(c, gin.H{
		"jobs":        views,
		"loading":     snap.Loading,
		"fetch_error": snap.Err,
	})
}

func (h *Handler) GetJob(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id := c.Param("id")

	j, ok := h.Poller.Job(id)
	if !ok {
		// Not in the cached collection yet; ask the server directly.
		fetched, err := h.API.GetJob(c.Request.Context(), id)
		if err != nil {
			common.Fail(c, http.StatusNotFound, 40410, "job not found")
			return
		}
		j = fetched
	}
	if j.UserID != uid {
		common.Fail(c, http.StatusNotFound, 40410, "job not found")
		return
	}
	common.OK(c, h.jobView(j))
}

func (h *Handler) RetryJob(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id := c.Param("id")

	if j, ok := h.Poller.Job(id); !ok || j.UserID != uid {
		common.Fail(c, http.StatusNotFound, 40410, "job not found")
		return
	}

	err := h.Retries.Retry(c.Request.Context(), id)
	switch {
	case err == nil:
		common.OK(c, gin.H{"job_id": id})
	case errors.Is(err, job.ErrUnknownJob):
		common.Fail(c, http.StatusNotFound, 40410, "job not found")
	case errors.Is(err, job.ErrRetryNotAllowed):
		common.Fail(c, http.StatusConflict, 40910, "job is not retryable")
	case errors.Is(err, job.ErrRetryInFlight):
		common.Fail(c, http.StatusConflict, 40911, "retry already in flight")
	default:
		log.Printf("[RetryJob] job=%s err=%v", id, err)
		common.Fail(c, http.StatusBadGateway, 50210, "retry request failed")
	}
}
