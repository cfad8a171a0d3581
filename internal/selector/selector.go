// Package selector decides which part of a document is forwarded to the
// model for a given query.
package selector

import (
	"context"
	"sort"
	"strings"

	"doc-qa/internal/document"
)

// NoContent is the context text used when a document has no pages.
const NoContent = "no content available"

// Policy names accepted by New.
const (
	PolicyFull      = "full"
	PolicyRelevance = "relevance"
	PolicyRemote    = "remote"
)

const (
	DefaultTopK        = 5
	DefaultFrontMatter = 3
)

// Context is the material selected to ground an answer.
type Context struct {
	Policy string
	// Text is the page-marked excerpt, or NoContent when Empty.
	Text string
	// Pages lists the selected page numbers in the order they appear in Text.
	Pages []int
	// FileID points at a remote copy of the whole document (remote policy).
	FileID string
	Empty  bool
}

// Selector produces a Context for a query.
type Selector interface {
	Select(ctx context.Context, query string, doc *document.Document) (Context, error)
}

// Forgetter is implemented by selectors that hold upstream references which
// can go stale.
type Forgetter interface {
	Forget(ctx context.Context, doc *document.Document) error
}

func empty(policy string) Context {
	return Context{Policy: policy, Text: NoContent, Empty: true}
}

// FullPolicy forwards every page.
type FullPolicy struct{}

func (FullPolicy) Select(_ context.Context, _ string, doc *document.Document) (Context, error) {
	if doc.IsEmpty() {
		return empty(PolicyFull), nil
	}
	pages := make([]int, len(doc.Pages))
	for i, p := range doc.Pages {
		pages[i] = p.Number
	}
	return Context{Policy: PolicyFull, Text: doc.Text(), Pages: pages}, nil
}

// RelevancePolicy forwards the TopK pages with the most keyword hits.
// Keywords are the whitespace-separated fields of the query, matched as
// case-sensitive substrings. When nothing matches, the first FrontMatter
// pages are used instead.
type RelevancePolicy struct {
	TopK        int
	FrontMatter int
}

type scored struct {
	page  document.Page
	score int
}

func (p RelevancePolicy) Select(_ context.Context, query string, doc *document.Document) (Context, error) {
	if doc.IsEmpty() {
		return empty(PolicyRelevance), nil
	}
	topK := p.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	front := p.FrontMatter
	if front <= 0 {
		front = DefaultFrontMatter
	}

	keywords := strings.Fields(query)
	ranked := make([]scored, len(doc.Pages))
	best := 0
	for i, pg := range doc.Pages {
		s := Score(keywords, pg.Text)
		ranked[i] = scored{page: pg, score: s}
		best = max(best, s)
	}

	var selected []document.Page
	if best == 0 {
		n := min(front, len(doc.Pages))
		selected = doc.Pages[:n]
	} else {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		n := min(topK, len(ranked))
		selected = make([]document.Page, n)
		for i := range n {
			selected[i] = ranked[i].page
		}
	}
	return render(PolicyRelevance, selected), nil
}

// Score counts keyword occurrences in text.
func Score(keywords []string, text string) int {
	total := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		total += strings.Count(text, kw)
	}
	return total
}

func render(policy string, pages []document.Page) Context {
	var b strings.Builder
	nums := make([]int, len(pages))
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(document.Marker(p.Number))
		b.WriteString(" ")
		b.WriteString(p.Text)
		nums[i] = p.Number
	}
	return Context{Policy: policy, Text: b.String(), Pages: nums}
}
