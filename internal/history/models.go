package history

import "time"

// QuizAttempt is the durable record of one finished assessment. Session
// state itself is never persisted; only the outcome is.
type QuizAttempt struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID length

	UserID uint64 `gorm:"index;not null" json:"-"`
	JobID  string `gorm:"size:64;index;not null" json:"job_id"`

	Correct int  `gorm:"not null" json:"correct"`
	Total   int  `gorm:"not null" json:"total"`
	Percent int  `gorm:"not null" json:"percent"`
	Passed  bool `gorm:"not null" json:"passed"`

	CreatedAt time.Time `json:"created_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempts" }

// ReviewPass records one completed walk through a flashcard deck.
type ReviewPass struct {
	ID string `gorm:"primaryKey;size:26" json:"id"`

	UserID uint64 `gorm:"index;not null" json:"-"`
	JobID  string `gorm:"size:64;index;not null" json:"job_id"`

	Known  int `gorm:"not null" json:"known"`
	Review int `gorm:"not null" json:"review"`
	Total  int `gorm:"not null" json:"total"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReviewPass) TableName() string { return "review_passes" }
