package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/studyflow/internal/common"
	"github.com/studyflow/studyflow/internal/config"
	"github.com/studyflow/studyflow/internal/httpapi/handlers"
	"github.com/studyflow/studyflow/internal/httpapi/middleware"
)

func NewRouter(cfg config.Config, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	r.GET("/ping", h.Ping)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))

	// Jobs (poller cache + stage inference + retry)
	authGroup.GET("/jobs", h.ListJobs)
	authGroup.GET("/jobs/:id", h.GetJob)
	authGroup.POST("/jobs/:id/retry", h.RetryJob)

	// Notices
	authGroup.GET("/notices", h.ListNotices)
	authGroup.DELETE("/notices", h.ClearNotices)

	// Quiz sessions
	authGroup.POST("/quiz/sessions", h.CreateQuizSession)
	authGroup.GET("/quiz/sessions/:id", h.GetQuizSession)
	authGroup.POST("/quiz/sessions/:id/begin", h.BeginQuiz)
	authGroup.POST("/quiz/sessions/:id/select", h.SelectQuizOption)
	authGroup.POST("/quiz/sessions/:id/confirm", h.ConfirmQuizAnswer)
	authGroup.POST("/quiz/sessions/:id/next", h.NextQuizQuestion)
	authGroup.POST("/quiz/sessions/:id/prev", h.PrevQuizQuestion)
	authGroup.POST("/quiz/sessions/:id/jump", h.JumpQuizQuestion)
	authGroup.POST("/quiz/sessions/:id/finish", h.FinishQuiz)
	authGroup.POST("/quiz/sessions/:id/restart", h.RestartQuiz)
	authGroup.GET("/history/quiz", h.ListQuizAttempts)

	// Flashcard review sessions
	authGroup.POST("/review/sessions", h.CreateReviewSession)
	authGroup.GET("/review/sessions/:id", h.GetReviewSession)
	authGroup.POST("/review/sessions/:id/flip", h.FlipCard)
	authGroup.POST("/review/sessions/:id/mark", h.MarkCard)
	authGroup.POST("/review/sessions/:id/restart", h.RestartReview)
	authGroup.GET("/history/review", h.ListReviewPasses)

	return r
}
