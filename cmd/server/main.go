package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyflow/studyflow/internal/config"
	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/history"
	"github.com/studyflow/studyflow/internal/httpapi"
	"github.com/studyflow/studyflow/internal/httpapi/handlers"
	"github.com/studyflow/studyflow/internal/job"
	"github.com/studyflow/studyflow/internal/session"
	"github.com/studyflow/studyflow/internal/store/rabbitmq"
	"github.com/studyflow/studyflow/internal/store/redisstore"
	"github.com/studyflow/studyflow/internal/studyapi"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := history.AutoMigrate(gdb); err != nil {
		log.Fatalf("automigrate: %v", err)
	}
	hist := history.NewRepo(gdb)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	api := studyapi.NewClient(cfg.StudyAPIBaseURL, cfg.StudyAPIToken)

	// Transition events are auxiliary; the server stays usable when the
	// broker is down.
	var onTransition job.TransitionFunc
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbit dial failed, transition events disabled: %v", err)
	} else {
		defer pub.Close()
		onTransition = func(ctx context.Context, t job.Transition) {
			if err := pub.PublishTransition(ctx, t); err != nil {
				log.Printf("publish transition job=%s err=%v", t.JobID, err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := job.NewPoller(api.ListJobs, cfg.PollInterval, cfg.StuckAfterPolls, onTransition)
	poller.Start(ctx)
	defer poller.Stop()

	retries := job.NewCoordinator(api.RetryJob, poller)
	sessions := session.NewRegistry()

	h := handlers.NewHandler(poller, retries, api, sessions, rds, hist)
	r := httpapi.NewRouter(cfg, h)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		<-ctx.Done()
		log.Printf("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("server started addr=%s poll_interval=%s", cfg.HTTPAddr, cfg.PollInterval)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %v", err)
	}
}
