package domain

// Stage identifies one step of the per-turn pipeline.
type Stage string

// Pipeline stages, in execution order.
const (
	// StageRewrite is the LLM query rewrite.
	StageRewrite Stage = "rewrite"

	// StageRetrieve is the vector similarity retrieval.
	StageRetrieve Stage = "retrieve"

	// StageWebSearch is the live web search fallback.
	StageWebSearch Stage = "web_search"

	// StageGenerate is the final answer generation.
	StageGenerate Stage = "generate"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// Description returns a human-readable description of the stage.
func (s Stage) Description() string {
	switch s {
	case StageRewrite:
		return "Rewriting query"
	case StageRetrieve:
		return "Searching documents"
	case StageWebSearch:
		return "Searching the web"
	case StageGenerate:
		return "Generating answer"
	default:
		return unknownDescription
	}
}

// StageResult records the outcome of a single pipeline stage. Failures in
// non-terminal stages are carried here instead of aborting the turn.
type StageResult struct {
	// Stage is which step produced this result.
	Stage Stage

	// Ok is true when the stage ran to completion.
	Ok bool

	// Skipped is true when the stage did not run (disabled, not needed).
	Skipped bool

	// Degraded is true when the stage failed but the turn continued.
	Degraded bool

	// Detail is a short human-readable note (skip reason, error summary,
	// result count).
	Detail string
}

// StageOk builds a successful stage result.
func StageOk(stage Stage, detail string) StageResult {
	return StageResult{Stage: stage, Ok: true, Detail: detail}
}

// StageSkipped builds a skipped stage result.
func StageSkipped(stage Stage, reason string) StageResult {
	return StageResult{Stage: stage, Skipped: true, Detail: reason}
}

// StageDegraded builds a failed-but-continuing stage result.
func StageDegraded(stage Stage, err error) StageResult {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return StageResult{Stage: stage, Degraded: true, Detail: detail}
}

// TurnResult is the complete outcome of one pipeline turn, composed from
// the per-stage results by the pipeline driver.
type TurnResult struct {
	// Question is the user's original question.
	Question string

	// Answer holds the generated answer and its provenance.
	// Only valid when Err is nil.
	Answer Answer

	// Err is the terminal failure of the turn, nil on success. Only a
	// generation failure is terminal; earlier stages degrade instead.
	Err error
}

// Failed returns true when the turn ended without an answer.
func (r TurnResult) Failed() bool {
	return r.Err != nil
}
