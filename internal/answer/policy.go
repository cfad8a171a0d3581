package answer

import (
	"time"

	"doc-qa/internal/llm"
	"doc-qa/internal/retry"
)

// Action is what the generator does after a failed call.
type Action int

const (
	// ActionRetry calls the same model again after a delay.
	ActionRetry Action = iota
	// ActionAdvance moves to the next candidate model.
	ActionAdvance
	// ActionAbort stops and reports the failure.
	ActionAbort
)

func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionAdvance:
		return "advance"
	default:
		return "abort"
	}
}

// FallbackPolicy is the ordered model list plus the retry schedule.
//
//	rate_limited        retry while attempt < MaxAttempts, then advance
//	model_not_found     advance
//	invalid_credential  abort
//	other               abort
type FallbackPolicy struct {
	Candidates []string
	// MaxAttempts is the number of calls per candidate on rate limiting.
	// Values below 1 mean a single call.
	MaxAttempts int
	// BaseDelay is the linear backoff base: the wait after the n-th failed
	// attempt is n * BaseDelay.
	BaseDelay time.Duration
}

// Decide returns the action for a failure of kind on the given 1-based
// attempt against the current candidate.
func (p FallbackPolicy) Decide(kind llm.Kind, attempt int) Action {
	switch kind {
	case llm.KindRateLimited:
		if attempt < max(p.MaxAttempts, 1) {
			return ActionRetry
		}
		return ActionAdvance
	case llm.KindModelNotFound:
		return ActionAdvance
	default:
		return ActionAbort
	}
}

// Delay is the wait before retrying after the given failed attempt.
func (p FallbackPolicy) Delay(attempt int) time.Duration {
	return retry.LinearBackoff(attempt, p.BaseDelay)
}
