package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/studyflow/studyflow/internal/config"
	"github.com/studyflow/studyflow/internal/job"
	"github.com/studyflow/studyflow/internal/store/redisstore"
)

func notifierConcurrency() int {
	v := os.Getenv("NOTIFIER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

// noticeFor maps a transition to a user-facing notice. Only terminal
// transitions produce one; intermediate status churn stays silent.
func noticeFor(t job.Transition) (redisstore.Notice, bool) {
	switch t.To {
	case job.StatusCompleted:
		return redisstore.Notice{
			JobID:     t.JobID,
			Title:     t.Title,
			Kind:      "completed",
			Message:   fmt.Sprintf("%q is ready", t.Title),
			CreatedAt: time.Now(),
		}, true
	case job.StatusFailed:
		return redisstore.Notice{
			JobID:     t.JobID,
			Title:     t.Title,
			Kind:      "failed",
			Message:   fmt.Sprintf("processing of %q failed", t.Title),
			CreatedAt: time.Now(),
		}, true
	default:
		return redisstore.Notice{}, false
	}
}

func handleTransition(ctx context.Context, rds *redisstore.Store, body []byte) error {
	var t job.Transition
	if err := json.Unmarshal(body, &t); err != nil {
		return err
	}
	n, ok := noticeFor(t)
	if !ok {
		return nil
	}
	return rds.PushNotice(ctx, t.UserID, n)
}

func main() {
	cfg := config.Load()

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(cfg.RabbitQueue, true, false, false, false, nil)
	if err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := notifierConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("notifier started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	events := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range events {
				if err := handleTransition(ctx, rds, d.Body); err != nil {
					log.Printf("worker=%d transition failed err=%v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}
				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed err=%v", workerID, err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("notifier shutting down")
			close(events)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			events <- d
		}
	}
}
