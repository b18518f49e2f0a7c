package quiz

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Phase string

const (
	PhasePreview Phase = "preview"
	PhaseActive  Phase = "active"
	PhaseResults Phase = "results"
)

// PassThreshold feeds feedback tone only; it never gates anything.
const PassThreshold = 70

var (
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrWrongPhase      = errors.New("operation not allowed in this phase")
	ErrLocked          = errors.New("question already confirmed")
	ErrUnknownOption   = errors.New("option is not part of this question")
	ErrNoSelection     = errors.New("no option selected")
	ErrNotLastQuestion = errors.New("finish requires the last question confirmed")
)

// Session drives one quiz attempt: preview -> active -> results. The
// question list is fixed for the session; option order is shuffled once
// per question at construction (and again on Restart) and cached, so
// revisiting a question never re-shuffles it. Answers are stored as the
// selected option's text, never its position.
type Session struct {
	ID     string
	UserID uint64
	JobID  string

	mu        sync.Mutex
	questions []Question
	shuffled  [][]string
	pending   map[int]string
	answers   map[int]string
	cursor    int
	phase     Phase
	rng       *rand.Rand
}

type Score struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Percent int  `json:"percent"`
	Passed  bool `json:"passed"`
}

func NewSession(userID uint64, jobID string, questions []Question) (*Session, error) {
	return NewSessionWithRand(userID, jobID, questions, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSessionWithRand takes the random source explicitly so tests can pin
// the shuffle.
func NewSessionWithRand(userID uint64, jobID string, questions []Question, rng *rand.Rand) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	s := &Session{
		ID:        ulid.Make().String(),
		UserID:    userID,
		JobID:     jobID,
		questions: questions,
		phase:     PhasePreview,
		rng:       rng,
	}
	s.reset()
	return s, nil
}

// reset rebuilds all per-attempt state, including a fresh shuffle per
// question. Reusing a prior shuffle across attempts would leak memorized
// positions.
func (s *Session) reset() {
	s.shuffled = make([][]string, len(s.questions))
	for i, q := range s.questions {
		opts := append([]string(nil), q.Options...)
		s.rng.Shuffle(len(opts), func(a, b int) { opts[a], opts[b] = opts[b], opts[a] })
		s.shuffled[i] = opts
	}
	s.pending = make(map[int]string)
	s.answers = make(map[int]string)
	s.cursor = 0
}

// Begin moves preview -> active.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePreview {
		return ErrWrongPhase
	}
	s.phase = PhaseActive
	return nil
}

// SelectOption records text as the pending selection for the current
// question. It does not persist the answer; ConfirmAnswer does.
func (s *Session) SelectOption(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return ErrWrongPhase
	}
	if _, locked := s.answers[s.cursor]; locked {
		return ErrLocked
	}
	found := false
	for _, o := range s.shuffled[s.cursor] {
		if o == text {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownOption
	}
	s.pending[s.cursor] = text
	return nil
}

// ConfirmAnswer persists the pending selection and locks the question.
// Locking is irreversible for the rest of the attempt.
func (s *Session) ConfirmAnswer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return ErrWrongPhase
	}
	if _, locked := s.answers[s.cursor]; locked {
		return ErrLocked
	}
	sel, ok := s.pending[s.cursor]
	if !ok {
		return ErrNoSelection
	}
	s.answers[s.cursor] = sel
	return nil
}

// Next and Prev move the cursor. Pending selections and lock state per
// question survive navigation, so going back never loses an answer.
// Moving past either end is a no-op; cursor moves are reachable through
// UI races and must not fail the session.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseActive && s.cursor < len(s.questions)-1 {
		s.cursor++
	}
}

func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseActive && s.cursor > 0 {
		s.cursor--
	}
}

// JumpTo moves directly to question i. Out-of-range jumps are no-ops.
func (s *Session) JumpTo(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseActive && i >= 0 && i < len(s.questions) {
		s.cursor = i
	}
}

// Finish moves active -> results. It requires the cursor to sit on the
// last question with that question confirmed; earlier unanswered
// questions simply score as incorrect.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return ErrWrongPhase
	}
	last := len(s.questions) - 1
	if s.cursor != last {
		return ErrNotLastQuestion
	}
	if _, locked := s.answers[last]; !locked {
		return ErrNotLastQuestion
	}
	s.phase = PhaseResults
	return nil
}

// Results scores the attempt. Pure over session state: an unanswered
// question counts as incorrect, and correctness is text equality against
// the question's designated correct option, independent of shuffle order.
func (s *Session) Results() (Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseResults {
		return Score{}, ErrWrongPhase
	}
	return s.score(), nil
}

func (s *Session) score() Score {
	correct := 0
	for i, q := range s.questions {
		if ans, ok := s.answers[i]; ok && ans == q.Correct {
			correct++
		}
	}
	total := len(s.questions)
	pct := int(math.Round(float64(correct) / float64(total) * 100))
	return Score{Correct: correct, Total: total, Percent: pct, Passed: pct >= PassThreshold}
}

// Restart reinitializes the whole attempt, fresh shuffle included, and
// drops straight back into active.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.phase = PhaseActive
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) Len() int { return len(s.questions) }

// QuestionView is the per-question presentation state: shuffled options,
// restored pending selection, and lock flag.
type QuestionView struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Pending string   `json:"pending,omitempty"`
	Locked  bool     `json:"locked"`
}

func (s *Session) CurrentQuestion() QuestionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionView(s.cursor)
}

func (s *Session) QuestionViewAt(i int) (QuestionView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.questions) {
		return QuestionView{}, false
	}
	return s.questionView(i), true
}

func (s *Session) questionView(i int) QuestionView {
	v := QuestionView{
		Index:   i,
		Prompt:  s.questions[i].Prompt,
		Options: append([]string(nil), s.shuffled[i]...),
	}
	if ans, ok := s.answers[i]; ok {
		v.Pending = ans
		v.Locked = true
	} else if sel, ok := s.pending[i]; ok {
		v.Pending = sel
	}
	return v
}

// Answered returns how many questions are confirmed.
func (s *Session) Answered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Breakdown is only meaningful in results; it pairs each question with
// the persisted answer, the correct text, and the explanation.
type BreakdownItem struct {
	Index       int    `json:"index"`
	Prompt      string `json:"question"`
	Answer      string `json:"answer,omitempty"`
	Correct     string `json:"correct_option"`
	Right       bool   `json:"right"`
	Explanation string `json:"explanation,omitempty"`
}

func (s *Session) Breakdown() ([]BreakdownItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseResults {
		return nil, ErrWrongPhase
	}
	out := make([]BreakdownItem, 0, len(s.questions))
	for i, q := range s.questions {
		ans := s.answers[i]
		out = append(out, BreakdownItem{
			Index:       i,
			Prompt:      q.Prompt,
			Answer:      ans,
			Correct:     q.Correct,
			Right:       ans != "" && ans == q.Correct,
			Explanation: q.Explanation,
		})
	}
	return out, nil
}
