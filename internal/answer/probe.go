package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"doc-qa/internal/llm"
)

// ErrInvalidCredential is returned by Probe when upstream rejects the key.
var ErrInvalidCredential = errors.New("invalid llm credential")

// Probe sends a one-token request to every candidate and keeps, in order,
// those that answer or are merely rate limited. When no candidate survives
// the original list is returned so the first request still has something
// to try.
func Probe(ctx context.Context, log *slog.Logger, client llm.Client, candidates []string) ([]string, error) {
	var usable []string
	for _, model := range candidates {
		_, err := client.Generate(ctx, model, llm.Request{Prompt: "Hi", MaxTokens: 1, Temperature: Temperature})
		switch kind := llm.KindOf(err); {
		case err == nil, kind == llm.KindRateLimited:
			usable = append(usable, model)
		case kind == llm.KindInvalidCredential:
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		default:
			log.Warn("dropping model candidate", "model", model, "kind", kind, "err", err)
		}
	}
	if len(usable) == 0 {
		log.Warn("no model candidate passed the probe; keeping configured order", "candidates", candidates)
		return candidates, nil
	}
	log.Info("model candidates probed", "usable", usable)
	return usable, nil
}
