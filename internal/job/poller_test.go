package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeFetch struct {
	mu    sync.Mutex
	calls int
	resp  func(call int) ([]Job, error)
}

func (f *fakeFetch) fetch(ctx context.Context) ([]Job, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	return f.resp(n)
}

func (f *fakeFetch) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// A collection with no job mid-flight is fetched exactly once: the
// predicate is false after the initial load, so no interval is armed.
func TestPoller_NoProcessingNoPolling(t *testing.T) {
	ff := &fakeFetch{resp: func(int) ([]Job, error) {
		return []Job{{ID: "j1", Status: StatusCompleted, Progress: 100}}, nil
	}}
	p := NewPoller(ff.fetch, 20*time.Millisecond, 1, nil)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return !p.Snapshot().Loading }, "initial fetch")
	time.Sleep(150 * time.Millisecond)

	if got := ff.count(); got != 1 {
		t.Fatalf("expected exactly 1 fetch, got %d", got)
	}
	snap := p.Snapshot()
	if len(snap.Jobs) != 1 || snap.Jobs[0].ID != "j1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

// Polling continues while a job is processing and self-terminates the
// instant the collection has no mid-flight job.
func TestPoller_StopsWhenProcessingEnds(t *testing.T) {
	ff := &fakeFetch{resp: func(call int) ([]Job, error) {
		if call < 3 {
			return []Job{{ID: "j1", Status: StatusProcessing, Progress: 40}}, nil
		}
		return []Job{{ID: "j1", Status: StatusCompleted, Progress: 100}}, nil
	}}
	p := NewPoller(ff.fetch, 10*time.Millisecond, 1, nil)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return ff.count() >= 3 }, "polling to reach the completed response")
	waitFor(t, func() bool {
		snap := p.Snapshot()
		return len(snap.Jobs) == 1 && snap.Jobs[0].Status == StatusCompleted
	}, "completed snapshot")

	settled := ff.count()
	time.Sleep(100 * time.Millisecond)
	if got := ff.count(); got != settled {
		t.Fatalf("poller kept fetching after completion: %d -> %d", settled, got)
	}
}

// A failed fetch keeps the previous collection (stale but available) and
// surfaces the error; the next successful cycle clears it.
func TestPoller_FetchErrorKeepsSnapshot(t *testing.T) {
	ff := &fakeFetch{resp: func(call int) ([]Job, error) {
		switch call {
		case 1:
			return []Job{{ID: "j1", Status: StatusProcessing, Progress: 30}}, nil
		case 2:
			return nil, errors.New("network down")
		default:
			return []Job{{ID: "j1", Status: StatusProcessing, Progress: 60}}, nil
		}
	}}
	p := NewPoller(ff.fetch, 10*time.Millisecond, 1, nil)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return p.Snapshot().Err != "" }, "fetch error to surface")
	snap := p.Snapshot()
	if len(snap.Jobs) != 1 || snap.Jobs[0].Progress != 30 {
		t.Fatalf("stale snapshot lost on fetch error: %+v", snap)
	}

	waitFor(t, func() bool {
		s := p.Snapshot()
		return s.Err == "" && len(s.Jobs) == 1 && s.Jobs[0].Progress == 60
	}, "recovery fetch")
}

// Poke wakes a paused poller so it notices a job that entered processing
// after polling self-terminated.
func TestPoller_PokeResumesPolling(t *testing.T) {
	ff := &fakeFetch{resp: func(call int) ([]Job, error) {
		if call == 1 {
			return []Job{{ID: "j1", Status: StatusCompleted, Progress: 100}}, nil
		}
		return []Job{
			{ID: "j1", Status: StatusCompleted, Progress: 100},
			{ID: "j2", Status: StatusProcessing, Progress: 10},
		}, nil
	}}
	p := NewPoller(ff.fetch, 10*time.Millisecond, 1, nil)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return ff.count() == 1 }, "initial fetch")
	time.Sleep(50 * time.Millisecond)
	if got := ff.count(); got != 1 {
		t.Fatalf("poller polled while paused: %d fetches", got)
	}

	p.Poke()
	waitFor(t, func() bool { return ff.count() >= 3 }, "polling to resume after poke")
}

func TestPoller_EmitsTransitions(t *testing.T) {
	ff := &fakeFetch{resp: func(call int) ([]Job, error) {
		if call == 1 {
			return []Job{{ID: "j1", UserID: 7, Title: "notes.pdf", Status: StatusProcessing, Progress: 90}}, nil
		}
		return []Job{{ID: "j1", UserID: 7, Title: "notes.pdf", Status: StatusCompleted, Progress: 100}}, nil
	}}

	var mu sync.Mutex
	var got []Transition
	sink := func(ctx context.Context, tr Transition) {
		mu.Lock()
		got = append(got, tr)
		mu.Unlock()
	}

	p := NewPoller(ff.fetch, 10*time.Millisecond, 1, sink)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, "transition to be emitted")

	mu.Lock()
	defer mu.Unlock()
	tr := got[0]
	if tr.JobID != "j1" || tr.UserID != 7 || tr.From != StatusProcessing || tr.To != StatusCompleted {
		t.Fatalf("unexpected transition: %+v", tr)
	}
}

// A job observed at zero progress across consecutive polls crosses the
// stuck threshold; a progressing job resets its streak.
func TestPoller_StuckStreak(t *testing.T) {
	ff := &fakeFetch{resp: func(call int) ([]Job, error) {
		return []Job{{ID: "j1", Status: StatusProcessing, Progress: 0}}, nil
	}}
	p := NewPoller(ff.fetch, 10*time.Millisecond, 2, nil)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return ff.count() >= 1 }, "first fetch")
	j, ok := p.Job("j1")
	if !ok {
		t.Fatalf("job missing from snapshot")
	}

	waitFor(t, func() bool { return p.Stage(j).Classification == SuspectStuck },
		"stuck classification after repeated zero observations")

	st := p.Stage(j)
	if !st.Classification.Retryable() {
		t.Fatalf("stuck job must be retryable, got %+v", st)
	}
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	ff := &fakeFetch{resp: func(int) ([]Job, error) {
		return []Job{{ID: "j1", Status: StatusProcessing, Progress: 10}}, nil
	}}
	p := NewPoller(ff.fetch, 10*time.Millisecond, 1, nil)
	p.Start(context.Background())

	waitFor(t, func() bool { return ff.count() >= 1 }, "first fetch")
	p.Stop()
	after := ff.count()
	time.Sleep(50 * time.Millisecond)
	if got := ff.count(); got != after {
		t.Fatalf("fetches continued after Stop: %d -> %d", after, got)
	}
	p.Stop() // second stop must not panic or hang
}
