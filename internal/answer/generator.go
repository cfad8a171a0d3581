package answer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"doc-qa/internal/llm"
	"doc-qa/internal/retry"
	"doc-qa/internal/selector"
)

// User-facing apologies returned when no answer could be produced.
const (
	RateLimitedApology  = "The answer service is busy right now (rate limit reached). Please try again shortly."
	UnknownErrorApology = "Sorry, an unknown error occurred while generating the answer."
	CredentialApology   = "The answer service rejected its credential. Please contact the administrator."
)

// Outcome is the terminal state of a request.
type Outcome string

const (
	OutcomeAnswered    Outcome = "answered"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeCredential  Outcome = "invalid_credential"
	OutcomeFailed      Outcome = "failed"
)

// Result is what callers see: always a displayable text, never an error.
type Result struct {
	Text    string
	Outcome Outcome
	// Model is the candidate that answered, empty otherwise.
	Model string
	// Calls counts upstream calls made for this request.
	Calls int
}

// Generator obtains answers, walking the fallback policy on failures.
type Generator struct {
	log       *slog.Logger
	client    llm.Client
	policy    FallbackPolicy
	maxTokens int
	sleep     func(context.Context, time.Duration) error
}

// NewGenerator wires a generator. maxTokens <= 0 leaves the limit unset.
func NewGenerator(log *slog.Logger, client llm.Client, policy FallbackPolicy, maxTokens int) *Generator {
	return &Generator{
		log:       log,
		client:    client,
		policy:    policy,
		maxTokens: maxTokens,
		sleep:     retry.Sleep,
	}
}

// Answer grounds query in c. An empty context short-circuits to the
// not-found sentence without calling upstream.
func (g *Generator) Answer(ctx context.Context, query string, c selector.Context) Result {
	if c.Empty {
		return Result{Text: notFoundAnswer(), Outcome: OutcomeNotFound}
	}
	return g.Generate(ctx, llm.Request{
		System: PolicyPrompt,
		Prompt: BuildPrompt(query, c),
		FileID: c.FileID,
	})
}

// Generate sends req through the candidate list. Temperature is always
// forced to zero; MaxTokens defaults to the generator's limit.
func (g *Generator) Generate(ctx context.Context, req llm.Request) Result {
	req.Temperature = Temperature
	if req.MaxTokens == 0 {
		req.MaxTokens = g.maxTokens
	}

	var (
		calls       int
		lastErr     error
		rateLimited bool
	)
	for _, model := range g.policy.Candidates {
		for attempt := 1; ; attempt++ {
			calls++
			text, err := g.client.Generate(ctx, model, req)
			if err == nil {
				g.log.Info("answer generated", "model", model, "attempt", attempt, "calls", calls)
				return Result{Text: text, Outcome: OutcomeAnswered, Model: model, Calls: calls}
			}
			lastErr = err
			kind := llm.KindOf(err)
			action := g.policy.Decide(kind, attempt)
			g.log.Warn("model call failed", "model", model, "attempt", attempt, "kind", kind, "action", action.String(), "err", err)

			if kind == llm.KindRateLimited {
				rateLimited = true
			}
			if action == ActionAbort {
				return abort(kind, err, calls)
			}
			if action == ActionAdvance {
				break
			}
			if err := g.sleep(ctx, g.policy.Delay(attempt)); err != nil {
				return Result{Text: withDetail(UnknownErrorApology, err), Outcome: OutcomeFailed, Calls: calls}
			}
		}
	}

	if rateLimited {
		return Result{Text: RateLimitedApology, Outcome: OutcomeRateLimited, Calls: calls}
	}
	if lastErr == nil {
		lastErr = errors.New("no model candidates configured")
	}
	return Result{Text: withDetail(UnknownErrorApology, lastErr), Outcome: OutcomeFailed, Calls: calls}
}

func abort(kind llm.Kind, err error, calls int) Result {
	if kind == llm.KindInvalidCredential {
		return Result{Text: CredentialApology, Outcome: OutcomeCredential, Calls: calls}
	}
	return Result{Text: withDetail(UnknownErrorApology, err), Outcome: OutcomeFailed, Calls: calls}
}

func withDetail(apology string, err error) string {
	return apology + "\n\nDetail: " + err.Error()
}

// Failure wraps an error that happened before any model call into a
// displayable result.
func Failure(err error) Result {
	return Result{Text: withDetail(UnknownErrorApology, err), Outcome: OutcomeFailed}
}
