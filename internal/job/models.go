package job

import "time"

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Artifacts reports which derived outputs the pipeline has produced so
// far. The server exposes no phase enum; presence of these is the only
// signal of how far a job has progressed.
type Artifacts struct {
	Text       bool `json:"text"`
	Summary    bool `json:"summary"`
	Notes      bool `json:"notes"`
	Flashcards bool `json:"flashcards"`
	Quiz       bool `json:"quiz"`
	Podcast    bool `json:"podcast"`
	Slides     bool `json:"slides"`
}

// Job is the client-side view of one server-owned generation job. The
// server is the only writer; this process only reads and, at most, asks
// for a retry.
type Job struct {
	ID       string  `json:"id"`
	UserID   uint64  `json:"user_id"`
	Title    string  `json:"title"`
	Status   Status  `json:"status"`
	Progress int     `json:"progress"` // 0-100
	Error    *string `json:"error,omitempty"`

	Artifacts Artifacts `json:"artifacts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j Job) Processing() bool { return j.Status == StatusProcessing }

// Transition is a status change observed between two consecutive polls.
type Transition struct {
	JobID  string `json:"job_id"`
	UserID uint64 `json:"user_id"`
	Title  string `json:"title"`
	From   Status `json:"from"`
	To     Status `json:"to"`
}
