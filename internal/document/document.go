// Package document holds the page model of a reference document and the
// machinery to extract, cache and invalidate it.
package document

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"doc-qa/internal/chunker"
)

// Page is a single page of extracted text. Number is 1-based and matches the
// page numbers cited in generated answers. Text may be empty when the source
// page has no text layer.
type Page struct {
	Number int
	Text   string
}

// Document is an ordered, immutable sequence of pages.
type Document struct {
	// Source is the file path or a label for ad-hoc input.
	Source string
	// Path is set only when the pages were read from a file on disk.
	Path string
	// Identity changes whenever the source content changes.
	Identity string
	Pages    []Page
}

// New numbers texts from 1 and derives an identity from source and content.
func New(source string, texts []string) *Document {
	h := xxhash.New()
	pages := make([]Page, len(texts))
	for i, t := range texts {
		pages[i] = Page{Number: i + 1, Text: t}
		_, _ = h.WriteString(t)
		_, _ = h.WriteString("\f")
	}
	return &Document{
		Source:   source,
		Identity: identity(source, h.Sum64()),
		Pages:    pages,
	}
}

// FromText paginates ad-hoc text into a document.
func FromText(source, text string, wordsPerPage int) *Document {
	chunks := chunker.Paginate(text, wordsPerPage)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return New(source, texts)
}

// IsEmpty reports whether the document has no pages.
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Pages) == 0
}

// Text joins all page texts, each prefixed with its page marker.
func (d *Document) Text() string {
	if d.IsEmpty() {
		return ""
	}
	var b strings.Builder
	for i, p := range d.Pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(Marker(p.Number))
		b.WriteString(" ")
		b.WriteString(p.Text)
	}
	return b.String()
}

// Marker renders the citation marker for page n.
func Marker(n int) string {
	return fmt.Sprintf("[Page %d]", n)
}

func identity(source string, sum uint64) string {
	return fmt.Sprintf("%s#%016x", source, sum)
}
