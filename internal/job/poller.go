package job

import (
	"context"
	"sync"
	"time"
)

// FetchFunc returns the current collection of jobs visible to the user.
// Must be idempotent and side-effect-free.
type FetchFunc func(ctx context.Context) ([]Job, error)

// TransitionFunc receives status changes observed between consecutive
// fetches. Called outside the poller lock, one call per changed job.
type TransitionFunc func(ctx context.Context, t Transition)

// Snapshot is the read-only view handed to consumers. A fetch failure
// keeps the previous Jobs (stale but available) and sets Err.
type Snapshot struct {
	Jobs    []Job
	Loading bool   // true until the first fetch resolves
	Err     string // last fetch error, empty when the last fetch succeeded
}

// Poller keeps an in-memory copy of the server's job collection current.
// It fetches once on Start, then re-fetches every interval for as long as
// at least one job is processing. Fetches are strictly sequential: the
// loop goroutine is the only fetcher, so responses can never be applied
// out of order.
type Poller struct {
	fetch        FetchFunc
	interval     time.Duration
	stuckAfter   int
	onTransition TransitionFunc

	mu         sync.Mutex
	jobs       []Job
	zeroStreak map[string]int
	lastErr    string
	loaded     bool
	running    bool

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(fetch FetchFunc, interval time.Duration, stuckAfter int, onTransition TransitionFunc) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if stuckAfter <= 0 {
		stuckAfter = 1
	}
	return &Poller{
		fetch:        fetch,
		interval:     interval,
		stuckAfter:   stuckAfter,
		onTransition: onTransition,
		zeroStreak:   make(map[string]int),
		wake:         make(chan struct{}, 1),
	}
}

// Start launches the poll loop. A second Start on a running poller is a
// no-op; there is never more than one active loop per poller.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.run(ctx)
}

// Stop cancels the loop and waits for it to exit. The timer is released
// on every exit path; results of a fetch that resolves after Stop are
// discarded, never applied.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Poke forces an immediate re-fetch and predicate re-evaluation. Called
// after a submission or a successful retry so the poller notices new
// mid-flight jobs without waiting out a paused loop.
func (p *Poller) Poke() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	p.fetchOnce(ctx)

	for {
		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		if p.shouldPoll() {
			timer = time.NewTimer(p.interval)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-p.wake:
			if timer != nil {
				timer.Stop()
			}
		case <-timerC:
		}

		p.fetchOnce(ctx)
	}
}

// shouldPoll is true iff at least one job is mid-flight.
func (p *Poller) shouldPoll() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, j := range p.jobs {
		if j.Processing() {
			return true
		}
	}
	return false
}

func (p *Poller) fetchOnce(ctx context.Context) {
	jobs, err := p.fetch(ctx)
	if ctx.Err() != nil {
		// Torn down while the fetch was outstanding; do not apply.
		return
	}

	p.mu.Lock()
	if err != nil {
		// Stale-but-available: keep the previous collection.
		p.lastErr = err.Error()
		p.loaded = true
		p.mu.Unlock()
		return
	}

	prev := make(map[string]Job, len(p.jobs))
	for _, j := range p.jobs {
		prev[j.ID] = j
	}

	var transitions []Transition
	seen := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		seen[j.ID] = struct{}{}
		if old, ok := prev[j.ID]; ok && old.Status != j.Status {
			transitions = append(transitions, Transition{
				JobID:  j.ID,
				UserID: j.UserID,
				Title:  j.Title,
				From:   old.Status,
				To:     j.Status,
			})
		}
		if j.Processing() && j.Progress == 0 {
			p.zeroStreak[j.ID]++
		} else {
			delete(p.zeroStreak, j.ID)
		}
	}
	for id := range p.zeroStreak {
		if _, ok := seen[id]; !ok {
			delete(p.zeroStreak, id)
		}
	}

	p.jobs = jobs
	p.lastErr = ""
	p.loaded = true
	sink := p.onTransition
	p.mu.Unlock()

	if sink != nil {
		for _, t := range transitions {
			sink(ctx, t)
		}
	}
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	jobs := make([]Job, len(p.jobs))
	copy(jobs, p.jobs)
	return Snapshot{Jobs: jobs, Loading: !p.loaded, Err: p.lastErr}
}

func (p *Poller) Job(id string) (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, j := range p.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}

// Stage classifies a job using the poller's zero-progress observation
// count, so a job is only reported stuck after it has been seen at zero
// for the configured number of polls.
func (p *Poller) Stage(j Job) Stage {
	p.mu.Lock()
	streak := p.zeroStreak[j.ID]
	p.mu.Unlock()
	return InferObserved(j, streak, p.stuckAfter)
}
