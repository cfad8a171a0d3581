package chunker

import (
	"strings"
	"testing"
)

func TestChunkTextWindowsDoNotOverlap(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	chunks := ChunkText(text, Options{MaxTokens: 4})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "one two three four" || chunks[1].Text != "five six seven eight" {
		t.Fatalf("unexpected windows: %q / %q", chunks[0].Text, chunks[1].Text)
	}
	if chunks[2].TokenCount != 2 {
		t.Fatalf("expected token count 2 in last chunk, got %d", chunks[2].TokenCount)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunks := ChunkText("", Options{MaxTokens: 10})
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty input, got %d", len(chunks))
	}
}

func TestChunkTextDefaults(t *testing.T) {
	text := "word " + strings.Repeat("test ", 500)
	chunks := ChunkText(text, Options{})

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks with default window, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if chunk.TokenCount > DefaultWordsPerPage {
			t.Errorf("chunk exceeded default max tokens (%d): got %d", DefaultWordsPerPage, chunk.TokenCount)
		}
	}
}

func TestPaginateWordWindows(t *testing.T) {
	pages := Paginate("a b c d e f g", 3)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[0].Text != "a b c" || pages[2].Text != "g" {
		t.Errorf("unexpected page texts: %q / %q", pages[0].Text, pages[2].Text)
	}
}

func TestPaginateFormFeeds(t *testing.T) {
	pages := Paginate("first page\f\f third page ", 100)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[1].Text != "" {
		t.Errorf("expected empty second page, got %q", pages[1].Text)
	}
	if pages[2].Text != "third page" {
		t.Errorf("expected trimmed third page, got %q", pages[2].Text)
	}
	if pages[2].Index != 2 {
		t.Errorf("expected index 2, got %d", pages[2].Index)
	}
}
