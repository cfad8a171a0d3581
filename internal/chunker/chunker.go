package chunker

import (
	"strings"
)

// DefaultWordsPerPage is the window used when ad-hoc text has no page breaks.
const DefaultWordsPerPage = 400

// Options controls how text is chunked.
type Options struct {
	MaxTokens int
}

// Chunk represents a slice of the document text.
type Chunk struct {
	Index      int
	Text       string
	TokenCount int
}

// ChunkText cuts text into consecutive windows of at most MaxTokens tokens.
// Tokens are approximated by whitespace-delimited words.
func ChunkText(text string, opts Options) []Chunk {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultWordsPerPage
	}

	words := strings.Fields(text)
	var chunks []Chunk
	if len(words) == 0 {
		return chunks
	}

	for start := 0; start < len(words); start += opts.MaxTokens {
		end := min(start+opts.MaxTokens, len(words))
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Text:       strings.Join(words[start:end], " "),
			TokenCount: end - start,
		})
	}
	return chunks
}

// Paginate splits ad-hoc text into pages. Form feeds are honoured as
// explicit page breaks (empty pages are kept so numbering stays stable);
// text without form feeds is cut into non-overlapping word windows.
func Paginate(text string, wordsPerPage int) []Chunk {
	if strings.Contains(text, "\f") {
		parts := strings.Split(text, "\f")
		chunks := make([]Chunk, len(parts))
		for i, p := range parts {
			p = strings.TrimSpace(p)
			chunks[i] = Chunk{Index: i, Text: p, TokenCount: len(strings.Fields(p))}
		}
		return chunks
	}
	return ChunkText(text, Options{MaxTokens: wordsPerPage})
}
