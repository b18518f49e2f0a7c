package session

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/studyflow/studyflow/internal/flashcard"
	"github.com/studyflow/studyflow/internal/quiz"
)

func TestRegistry_OwnershipAndLifecycle(t *testing.T) {
	r := NewRegistry()

	qs, err := quiz.NewSessionWithRand(1, "job-1", []quiz.Question{
		{ID: "q1", Prompt: "?", Options: []string{"a", "b", "c", "d"}, Correct: "a"},
	}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new quiz session: %v", err)
	}
	r.PutQuiz(qs)

	if got, err := r.Quiz(qs.ID, 1); err != nil || got != qs {
		t.Fatalf("owner lookup failed: %v", err)
	}
	// Another user's session reads as not found, not forbidden.
	if _, err := r.Quiz(qs.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign lookup: err=%v, want ErrNotFound", err)
	}

	r.DropQuiz(qs.ID)
	if _, err := r.Quiz(qs.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("dropped session still resolvable")
	}

	fs := flashcard.NewSession(1, "job-1", []flashcard.Card{{ID: "c1"}})
	r.PutReview(fs)
	if got, err := r.Review(fs.ID, 1); err != nil || got != fs {
		t.Fatalf("review lookup failed: %v", err)
	}
	if _, err := r.Review(fs.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign review lookup: err=%v, want ErrNotFound", err)
	}
}
