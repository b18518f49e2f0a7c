package job

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrUnknownJob      = errors.New("unknown job")
	ErrRetryNotAllowed = errors.New("job is not retryable")
	ErrRetryInFlight   = errors.New("retry already in flight")
)

// RetryFunc asks the server to restart a job. The server owns the status
// and progress reset; the caller never mutates the job locally.
type RetryFunc func(ctx context.Context, jobID string) error

// Coordinator serializes retries: at most one in-flight retry per job id,
// other jobs unaffected. On success it pokes the poller and lets the next
// fetch observe the server's new status rather than guessing at it.
type Coordinator struct {
	retry  RetryFunc
	poller *Poller

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCoordinator(retry RetryFunc, poller *Poller) *Coordinator {
	return &Coordinator{
		retry:    retry,
		poller:   poller,
		inFlight: make(map[string]struct{}),
	}
}

func (c *Coordinator) Retry(ctx context.Context, jobID string) error {
	j, ok := c.poller.Job(jobID)
	if !ok {
		return ErrUnknownJob
	}
	if !c.poller.Stage(j).Classification.Retryable() {
		return ErrRetryNotAllowed
	}

	c.mu.Lock()
	if _, busy := c.inFlight[jobID]; busy {
		c.mu.Unlock()
		return ErrRetryInFlight
	}
	c.inFlight[jobID] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, jobID)
		c.mu.Unlock()
	}()

	if err := c.retry(ctx, jobID); err != nil {
		// Job keeps its prior classification; the user may retry again
		// immediately.
		return err
	}

	c.poller.Poke()
	return nil
}

// Retrying reports whether a retry for the given job is outstanding.
func (c *Coordinator) Retrying(jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inFlight[jobID]
	return busy
}
