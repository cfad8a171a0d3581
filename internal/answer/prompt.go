package answer

import (
	"strings"

	"doc-qa/internal/selector"
)

// Fixed sentences the model is told to reproduce verbatim. They are also
// returned directly when no model call happens.
const (
	NotFoundSentence = "The requested information could not be found in the provided document."
	ClosingSentence  = "For an official interpretation, please contact the department responsible for these regulations."
)

// Temperature is pinned to zero for factual grounding.
const Temperature = 0.0

// PolicyPrompt is the instruction block sent with every question.
var PolicyPrompt = strings.Join([]string{
	"You answer questions about a reference document.",
	"Rules:",
	"1. Answer only from the supplied context. Do not use outside knowledge.",
	"2. Cite the page number for every factual claim in the form (Page N), using the [Page N] markers in the context.",
	"3. If the context does not contain the answer, reply with exactly this sentence and nothing else: \"" + NotFoundSentence + "\"",
	"4. Format procedures or any multi-step content as a numbered list.",
	"5. End every answer with exactly this sentence: \"" + ClosingSentence + "\"",
}, "\n")

// BuildPrompt composes the user payload for a selected context.
func BuildPrompt(query string, c selector.Context) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	switch {
	case c.Empty:
		b.WriteString("(" + selector.NoContent + ")")
	case c.FileID != "":
		b.WriteString("The full document is attached as a file. Page numbers refer to the attached document.")
	default:
		b.WriteString(c.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

func notFoundAnswer() string {
	return NotFoundSentence + "\n\n" + ClosingSentence
}
