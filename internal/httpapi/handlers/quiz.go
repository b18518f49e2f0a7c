package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/studyflow/studyflow/internal/common"
	"github.com/studyflow/studyflow/internal/history"
	"github.com/studyflow/studyflow/internal/job"
	"github.com/studyflow/studyflow/internal/quiz"
	"github.com/studyflow/studyflow/internal/session"
)

var optionLetters = [...]string{"A", "B", "C", "D"}

// optionView pairs the display letter with the semantic value. Letters
// are assigned after the shuffle and are presentation-only; every check
// downstream uses the text.
type optionView struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

type questionView struct {
	Index   int          `json:"index"`
	Prompt  string       `json:"question"`
	Options []optionView `json:"options"`
	Pending string       `json:"pending,omitempty"`
	Locked  bool         `json:"locked"`
}

func toQuestionView(v quiz.QuestionView) questionView {
	opts := make([]optionView, 0, len(v.Options))
	for i, o := range v.Options {
		letter := ""
		if i < len(optionLetters) {
			letter = optionLetters[i]
		}
		opts = append(opts, optionView{Letter: letter, Text: o})
	}
	return questionView{
		Index:   v.Index,
		Prompt:  v.Prompt,
		Options: opts,
		Pending: v.Pending,
		Locked:  v.Locked,
	}
}

func (h *Handler) quizSessionView(s *quiz.Session) gin.H {
	view := gin.H{
		"session_id": s.ID,
		"job_id":     s.JobID,
		"phase":      s.Phase(),
		"total":      s.Len(),
		"cursor":     s.Cursor(),
		"answered":   s.Answered(),
	}
	switch s.Phase() {
	case quiz.PhaseActive:
		view["current"] = toQuestionView(s.CurrentQuestion())
	case quiz.PhaseResults:
		if score, err := s.Results(); err == nil {
			view["score"] = score
		}
		if items, err := s.Breakdown(); err == nil {
			view["breakdown"] = items
		}
	}
	return view
}

// requireCompletedJob checks that the job exists, belongs to the user,
// and has finished generating before a session may consume its artifacts.
func (h *Handler) requireCompletedJob(c *gin.Context, uid uint64, jobID string) (job.Job, bool) {
	j, ok := h.Poller.Job(jobID)
	if !ok {
		fetched, err := h.API.GetJob(c.Request.Context(), jobID)
		if err != nil {
			common.Fail(c, http.StatusNotFound, 40410, "job not found")
			return job.Job{}, false
		}
		j = fetched
	}
	if j.UserID != uid {
		common.Fail(c, http.StatusNotFound, 40410, "job not found")
		return job.Job{}, false
	}
	if j.Status != job.StatusCompleted {
		common.Fail(c, http.StatusConflict, 40920, "job has not completed")
		return job.Job{}, false
	}
	return j, true
}

func (h *Handler) loadQuestions(c *gin.Context, jobID string) ([]quiz.Question, bool) {
	ctx := c.Request.Context()
	if qs, hit, err := h.Redis.GetQuiz(ctx, jobID); err == nil && hit {
		return qs, true
	}
	qs, err := h.API.GetQuizQuestions(ctx, jobID)
	if err != nil {
		// Terminal for this attempt; the client shows an explicit retry
		// control instead of an empty session.
		log.Printf("[loadQuestions] job=%s err=%v", jobID, err)
		common.Fail(c, http.StatusBadGateway, 50211, "failed to load quiz, try again")
		return nil, false
	}
	if err := h.Redis.CacheQuiz(ctx, jobID, qs); err != nil {
		log.Printf("[loadQuestions] cache job=%s err=%v", jobID, err)
	}
	return qs, true
}

func (h *Handler) CreateQuizSession(c *gin.Context) {
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
	qs, ok := h.loadQuestions(c, req.JobID)
	if !ok {
		return
	}

	s, err := quiz.NewSession(uid, req.JobID, qs)
	if err != nil {
		// A job without questions is a distinct state, not an empty
		// active session.
		common.Fail(c, http.StatusConflict, 40921, "quiz has no questions")
		return
	}
	h.Sessions.PutQuiz(s)
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) quizSession(c *gin.Context) (*quiz.Session, bool) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return nil, false
	}
	s, err := h.Sessions.Quiz(c.Param("id"), uid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40420, "session not found")
			return nil, false
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return nil, false
	}
	return s, true
}

func (h *Handler) GetQuizSession(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) BeginQuiz(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	if err := s.Begin(); err != nil {
		common.Fail(c, http.StatusConflict, 40922, "quiz already started")
		return
	}
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) SelectQuizOption(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	var req struct {
		Option string `json:"option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if err := s.SelectOption(req.Option); err != nil {
		common.Fail(c, http.StatusConflict, 40923, err.Error())
		return
	}
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) ConfirmQuizAnswer(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	if err := s.ConfirmAnswer(); err != nil {
		common.Fail(c, http.StatusConflict, 40924, err.Error())
		return
	}
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) NextQuizQuestion(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	s.Next()
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) PrevQuizQuestion(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	s.Prev()
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) JumpQuizQuestion(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	s.JumpTo(*req.Index)
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) FinishQuiz(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	if err := s.Finish(); err != nil {
		common.Fail(c, http.StatusConflict, 40925, err.Error())
		return
	}

	score, err := s.Results()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	attempt := &history.QuizAttempt{
		ID:      ulid.Make().String(),
		UserID:  s.UserID,
		JobID:   s.JobID,
		Correct: score.Correct,
		Total:   score.Total,
		Percent: score.Percent,
		Passed:  score.Passed,
	}
	if err := h.History.CreateQuizAttempt(c.Request.Context(), attempt); err != nil {
		// The session result still stands; history is best effort.
		log.Printf("[FinishQuiz] persist attempt session=%s err=%v", s.ID, err)
	}
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) RestartQuiz(c *gin.Context) {
	s, ok := h.quizSession(c)
	if !ok {
		return
	}
	s.Restart()
	common.OK(c, h.quizSessionView(s))
}

func (h *Handler) ListQuizAttempts(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	limit := 50
	attempts, err := h.History.ListQuizAttempts(c.Request.Context(), uid, limit)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"attempts": attempts})
}
