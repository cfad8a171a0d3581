// Package tutor answers vocabulary questions, optionally about a photo, and
// extracts a dictionary card from the model's reply.
package tutor

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"doc-qa/internal/answer"
	"doc-qa/internal/llm"
)

// ErrEmptyInput is returned when neither a question nor an image is given.
var ErrEmptyInput = errors.New("question or image required")

const (
	cardStart = "///DIC_START///"
	cardEnd   = "///DIC_END///"
)

// Instruction asks for a plain explanation followed by exactly one card.
var Instruction = strings.Join([]string{
	"You are a patient English teacher for a second-grade elementary school student.",
	"First explain the answer to the question in simple, friendly Korean. Do not put any markers around English words in the explanation.",
	"When the explanation is finished, add exactly one dictionary card for the most important English sentence or word, in this exact format:",
	cardStart,
	"English sentence",
	"Korean pronunciation",
	"Korean meaning",
	cardEnd,
	"Example:",
	cardStart,
	"Have a nice day!",
	"해브 어 나이스 데이",
	"좋은 하루 보내!",
	cardEnd,
}, "\n")

var cardRe = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(cardStart) + `(.*?)` + regexp.QuoteMeta(cardEnd))

// Card is the dictionary entry shown under the explanation.
type Card struct {
	Phrase        string `json:"phrase"`
	Pronunciation string `json:"pronunciation"`
	Meaning       string `json:"meaning"`
}

// Reply is a parsed tutor answer.
type Reply struct {
	Explanation string         `json:"explanation"`
	Card        *Card          `json:"card,omitempty"`
	RawCard     string         `json:"raw_card,omitempty"` // card block with fewer than three lines
	Outcome     answer.Outcome `json:"outcome"`
	Model       string         `json:"model,omitempty"`
}

// Generator is the subset of answer.Generator the tutor needs.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) answer.Result
}

// Tutor wraps a generator with the card instruction.
type Tutor struct {
	gen Generator
}

func New(gen Generator) *Tutor {
	return &Tutor{gen: gen}
}

// Ask sends the question and optional image and parses the reply.
func (t *Tutor) Ask(ctx context.Context, question string, image *llm.Image) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" && image == nil {
		return Reply{}, ErrEmptyInput
	}
	req := llm.Request{System: Instruction, Prompt: question}
	if image != nil {
		req.Images = []llm.Image{*image}
	}
	res := t.gen.Generate(ctx, req)
	if res.Outcome != answer.OutcomeAnswered {
		return Reply{Explanation: res.Text, Outcome: res.Outcome}, nil
	}
	reply := Parse(res.Text)
	reply.Outcome = res.Outcome
	reply.Model = res.Model
	return reply, nil
}

// Parse splits a reply into explanation and card. Without a card block the
// whole text is the explanation.
func Parse(text string) Reply {
	m := cardRe.FindStringSubmatchIndex(text)
	if m == nil {
		return Reply{Explanation: strings.TrimSpace(text)}
	}
	block := text[m[2]:m[3]]
	reply := Reply{Explanation: strings.TrimSpace(text[:m[0]] + text[m[1]:])}

	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 3 {
		reply.RawCard = strings.TrimSpace(block)
		return reply
	}
	reply.Card = &Card{Phrase: lines[0], Pronunciation: lines[1], Meaning: lines[2]}
	return reply
}
