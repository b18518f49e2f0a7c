package flashcard

// Card is one flashcard from a completed job's set.
type Card struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Outcome is the user's verdict on a card: keep it out of rotation or
// bring it back for another pass.
type Outcome string

const (
	OutcomeKnown  Outcome = "known"
	OutcomeReview Outcome = "review"
)

func (o Outcome) Valid() bool { return o == OutcomeKnown || o == OutcomeReview }
