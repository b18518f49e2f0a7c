package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/studyflow/studyflow/internal/common"
	"github.com/studyflow/studyflow/internal/flashcard"
	"github.com/studyflow/studyflow/internal/history"
	"github.com/studyflow/studyflow/internal/session"
)

func (h *Handler) reviewSessionView(s *flashcard.Session) gin.H {
	known, review := s.Counts()
	return gin.H{
		"session_id": s.ID,
		"job_id":     s.JobID,
		"total":      s.Len(),
		"cursor":     s.Cursor(),
		"flipped":    s.Flipped(),
		"complete":   s.Complete(),
		"stack":      s.Stack(),
		"known":      known,
		"review":     review,
	}
}

func (h *Handler) loadFlashcards(c *gin.Context, jobID string) ([]flashcard.Card, bool) {
	ctx := c.Request.Context()
	if cards, hit, err := h.Redis.GetFlashcards(ctx, jobID); err == nil && hit {
		return cards, true
	}
	cards, err := h.API.GetFlashcards(ctx, jobID)
	if err != nil {
		log.Printf("[loadFlashcards] job=%s err=%v", jobID, err)
		common.Fail(c, http.StatusBadGateway, 50212, "failed to load flashcards, try again")
		return nil, false
	}
	if err := h.Redis.CacheFlashcards(ctx, jobID, cards); err != nil {
		log.Printf("[loadFlashcards] cache job=%s err=%v", jobID, err)
	}
	return cards, true
}

func (h *Handler) CreateReviewSession(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req struct {
		JobID string `json:"job_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if _, ok := h.requireCompletedJob(c, uid, req.JobID); !ok {
		return
	}
	cards, ok := h.loadFlashcards(c, req.JobID)
	if !ok {
		return
	}
	if len(cards) == 0 {
		// Empty deck goes straight to an empty state; it never becomes
		// an active session.
		common.OK(c, gin.H{"job_id": req.JobID, "empty": true})
		return
	}

	s := flashcard.NewSession(uid, req.JobID, cards)
	h.Sessions.PutReview(s)
	common.OK(c, h.reviewSessionView(s))
}

func (h *Handler) reviewSession(c *gin.Context) (*flashcard.Session, bool) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return nil, false
	}
	s, err := h.Sessions.Review(c.Param("id"), uid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40421, "session not found")
			return nil, false
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return nil, false
	}
	return s, true
}

func (h *Handler) GetReviewSession(c *gin.Context) {
	s, ok := h.reviewSession(c)
	if !ok {
		return
	}
	common.OK(c, h.reviewSessionView(s))
}

func (h *Handler) FlipCard(c *gin.Context) {
	s, ok := h.reviewSession(c)
	if !ok {
		return
	}
	// Flip past the end is a defensive no-op; the view tells the client
	// the session is complete either way.
	s.Flip()
	common.OK(c, h.reviewSessionView(s))
}

func (h *Handler) MarkCard(c *gin.Context) {
	s, ok := h.reviewSession(c)
	if !ok {
		return
	}
	var req struct {
		Outcome flashcard.Outcome `json:"outcome" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if !req.Outcome.Valid() {
		common.Fail(c, http.StatusBadRequest, 10002, "outcome must be known or review")
		return
	}

	advanced := s.Mark(req.Outcome)
	if advanced && s.Complete() {
		known, review := s.Counts()
		pass := &history.ReviewPass{
			ID:     ulid.Make().String(),
			UserID: s.UserID,
			JobID:  s.JobID,
			Known:  known,
			Review: review,
			Total:  s.Len(),
		}
		if err := h.History.CreateReviewPass(c.Request.Context(), pass); err != nil {
			log.Printf("[MarkCard] persist pass session=%s err=%v", s.ID, err)
		}
	}
	common.OK(c, h.reviewSessionView(s))
}

func (h *Handler) RestartReview(c *gin.Context) {
	s, ok := h.reviewSession(c)
	if !ok {
		return
	}
	s.Restart()
	common.OK(c, h.reviewSessionView(s))
}

func (h *Handler) ListReviewPasses(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	passes, err := h.History.ListReviewPasses(c.Request.Context(), uid, 50)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"passes": passes})
}
