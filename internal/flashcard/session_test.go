package flashcard

import "testing"

func threeCards() []Card {
	return []Card{
		{ID: "c1", Question: "Q1", Answer: "A1"},
		{ID: "c2", Question: "Q2", Answer: "A2"},
		{ID: "c3", Question: "Q3", Answer: "A3"},
	}
}

func TestSession_EmptyDeckStartsComplete(t *testing.T) {
	s := NewSession(1, "job-1", nil)
	if !s.Complete() {
		t.Fatalf("empty deck must start complete")
	}
	if s.Flip() {
		t.Fatalf("flip on empty deck must be a no-op")
	}
	if s.Mark(OutcomeKnown) {
		t.Fatalf("mark on empty deck must be a no-op")
	}
	if got := s.Stack(); got != nil {
		t.Fatalf("empty deck stack = %v, want nil", got)
	}
}

// Two flips in immediate succession land back on the front face.
func TestSession_FlipIsAPureToggle(t *testing.T) {
	s := NewSession(1, "job-1", threeCards())
	if s.Flipped() {
		t.Fatalf("new card must start front-facing")
	}
	s.Flip()
	if !s.Flipped() {
		t.Fatalf("one flip must show the back")
	}
	s.Flip()
	if s.Flipped() {
		t.Fatalf("two flips must return to the front")
	}
}

func TestSession_MarkAdvancesAndResetsFlip(t *testing.T) {
	s := NewSession(1, "job-1", threeCards())
	s.Flip()
	if !s.Mark(OutcomeKnown) {
		t.Fatalf("mark failed on active session")
	}
	if s.Cursor() != 1 {
		t.Fatalf("cursor=%d, want 1", s.Cursor())
	}
	if s.Flipped() {
		t.Fatalf("next card must arrive front-facing")
	}
}

// Three marks exhaust a three-card deck; a fourth is a no-op and the
// session stays complete.
func TestSession_MarkThroughToComplete(t *testing.T) {
	s := NewSession(1, "job-1", threeCards())
	for i := 0; i < 3; i++ {
		if s.Complete() {
			t.Fatalf("completed early at card %d", i)
		}
		if !s.Mark(OutcomeKnown) {
			t.Fatalf("mark %d failed", i)
		}
	}
	if !s.Complete() {
		t.Fatalf("session must be complete after the last mark")
	}
	if s.Mark(OutcomeKnown) {
		t.Fatalf("mark past the end must be a no-op")
	}
	if !s.Complete() {
		t.Fatalf("no-op mark changed completion state")
	}
	known, review := s.Counts()
	if known != 3 || review != 0 {
		t.Fatalf("counts known=%d review=%d, want 3/0", known, review)
	}
}

func TestSession_MarkRejectsInvalidOutcome(t *testing.T) {
	s := NewSession(1, "job-1", threeCards())
	if s.Mark(Outcome("maybe")) {
		t.Fatalf("invalid outcome must be rejected")
	}
	if s.Cursor() != 0 {
		t.Fatalf("rejected mark advanced the cursor")
	}
}

func TestSession_StackWindow(t *testing.T) {
	cards := []Card{
		{ID: "c1"}, {ID: "c2"}, {ID: "c3"}, {ID: "c4"}, {ID: "c5"},
	}
	s := NewSession(1, "job-1", cards)

	stack := s.Stack()
	if len(stack) != 3 {
		t.Fatalf("stack size=%d, want 3", len(stack))
	}
	if stack[0].ID != "c1" || stack[1].ID != "c2" || stack[2].ID != "c3" {
		t.Fatalf("stack not nearest-first: %v", stack)
	}

	s.Mark(OutcomeReview)
	s.Mark(OutcomeReview)
	s.Mark(OutcomeKnown)

	stack = s.Stack()
	if len(stack) != 2 {
		t.Fatalf("stack size=%d with 2 remaining, want 2", len(stack))
	}
	if stack[0].ID != "c4" {
		t.Fatalf("stack head=%s, want c4", stack[0].ID)
	}

	known, review := s.Counts()
	if known != 1 || review != 2 {
		t.Fatalf("counts known=%d review=%d, want 1/2", known, review)
	}
}

func TestSession_RestartClearsEverything(t *testing.T) {
	s := NewSession(1, "job-1", threeCards())
	s.Flip()
	s.Mark(OutcomeKnown)
	s.Mark(OutcomeReview)

	s.Restart()
	if s.Cursor() != 0 || s.Flipped() || s.Complete() {
		t.Fatalf("restart left state: cursor=%d flipped=%v complete=%v", s.Cursor(), s.Flipped(), s.Complete())
	}
	known, review := s.Counts()
	if known != 0 || review != 0 {
		t.Fatalf("restart kept outcomes: known=%d review=%d", known, review)
	}
	if len(s.Stack()) != 3 {
		t.Fatalf("restart stack size=%d, want 3", len(s.Stack()))
	}
}
