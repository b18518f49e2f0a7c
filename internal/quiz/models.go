package quiz

// Question is one multiple-choice item from a completed job's quiz set.
// Correct holds the full text of the right option. Correctness is always
// decided by text equality: option order is shuffled per session and
// display letters are reassigned after the shuffle, so an index- or
// letter-keyed check would grade against the wrong option.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"question"`
	Options     []string `json:"options"` // exactly four
	Correct     string   `json:"correct_option"`
	Explanation string   `json:"explanation,omitempty"`
}
