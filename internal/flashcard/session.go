package flashcard

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// StackSize is how many upcoming cards render as a stack; only the
// nearest one is interactive.
const StackSize = 3

// Session consumes a fixed, ordered deck one card at a time. Flip toggles
// the cursor card's face; Mark is the only operation that advances the
// cursor. The session is complete once the cursor passes the last card.
// An empty deck starts complete, so callers route it to an empty state
// instead of an active session.
type Session struct {
	ID     string
	UserID uint64
	JobID  string

	mu       sync.Mutex
	cards    []Card
	cursor   int
	flipped  bool
	outcomes map[string]Outcome
}

func NewSession(userID uint64, jobID string, cards []Card) *Session {
	return &Session{
		ID:       ulid.Make().String(),
		UserID:   userID,
		JobID:    jobID,
		cards:    cards,
		outcomes: make(map[string]Outcome),
	}
}

// Flip toggles the visible face of the card at the cursor. Always a pure
// toggle: rapid repeated calls never queue, two flips land back on the
// front. A flip past the end of the deck is a no-op.
func (s *Session) Flip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.cards) {
		return false
	}
	s.flipped = !s.flipped
	return true
}

// Mark records the outcome for the cursor card, advances to the next one
// front-facing. Marking a completed session is a no-op, never an
// out-of-bounds access.
func (s *Session) Mark(outcome Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.cards) || !outcome.Valid() {
		return false
	}
	s.outcomes[s.cards[s.cursor].ID] = outcome
	s.cursor++
	s.flipped = false
	return true
}

func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor >= len(s.cards)
}

// Stack returns the visible window: min(StackSize, remaining) cards,
// nearest first. Only the first entry responds to Flip.
func (s *Session) Stack() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := len(s.cards) - s.cursor
	if remaining <= 0 {
		return nil
	}
	n := remaining
	if n > StackSize {
		n = StackSize
	}
	out := make([]Card, n)
	copy(out, s.cards[s.cursor:s.cursor+n])
	return out
}

func (s *Session) Flipped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flipped
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) Len() int { return len(s.cards) }

// Counts tallies recorded outcomes for the completion summary.
func (s *Session) Counts() (known, review int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.outcomes {
		switch o {
		case OutcomeKnown:
			known++
		case OutcomeReview:
			review++
		}
	}
	return known, review
}

// Restart resets the cursor and clears all flip and outcome state.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = 0
	s.flipped = false
	s.outcomes = make(map[string]Outcome)
}
