package job

type Classification string

const (
	Healthy      Classification = "healthy"
	SuspectStuck Classification = "suspect_stuck"
	Failed       Classification = "failed"
	Complete     Classification = "complete"
)

// Retryable reports whether a retry affordance should be offered. Only
// server-declared failures and presumed-wedged jobs qualify.
func (c Classification) Retryable() bool {
	return c == Failed || c == SuspectStuck
}

// Explanation distinguishes "it broke" from "it looks stalled" for the
// retry affordance; the remediation is the same, the implied cause is not.
func (c Classification) Explanation() string {
	switch c {
	case Failed:
		return "processing failed"
	case SuspectStuck:
		return "processing appears stalled"
	default:
		return ""
	}
}

type Stage struct {
	Label          string         `json:"label"`
	Classification Classification `json:"classification"`
}

// Infer maps a job's observable fields to a stage. First match wins:
// completed, failed, processing-at-zero (presumed wedged), processing
// (label = next artifact the pipeline has not produced yet), queued.
// Pure and total over every reachable job shape.
func Infer(j Job) Stage {
	switch j.Status {
	case StatusCompleted:
		return Stage{Label: "Ready", Classification: Complete}
	case StatusFailed:
		return Stage{Label: "Processing failed", Classification: Failed}
	case StatusProcessing:
		if j.Progress == 0 {
			return Stage{Label: "Processing appears stalled", Classification: SuspectStuck}
		}
		return Stage{Label: pipelineLabel(j.Artifacts), Classification: Healthy}
	default:
		// queued, or anything the server adds later
		return Stage{Label: "Queued", Classification: Healthy}
	}
}

// InferObserved is Infer softened by observation count: a zero-progress
// job is reported healthy ("Starting up") until it has been seen at zero
// for at least threshold consecutive polls. The stuck rule is a heuristic
// about server timing, not an authoritative signal.
func InferObserved(j Job, zeroPolls, threshold int) Stage {
	s := Infer(j)
	if s.Classification == SuspectStuck && zeroPolls < threshold {
		return Stage{Label: "Starting up", Classification: Healthy}
	}
	return s
}

// pipelineLabel picks the label for the next absent artifact in pipeline
// order: raw text, summary, notes, flashcards, quiz, finalize. Podcast and
// slides are generated on demand and never gate the pipeline.
func pipelineLabel(a Artifacts) string {
	switch {
	case !a.Text:
		return "Extracting text"
	case !a.Summary:
		return "Generating summary"
	case !a.Notes:
		return "Generating notes"
	case !a.Flashcards:
		return "Generating flashcards"
	case !a.Quiz:
		return "Generating quiz"
	default:
		return "Finalizing"
	}
}
