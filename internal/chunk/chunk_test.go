package chunk_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"xlate/internal/chunk"
)

func TestPlanReturnsSingleChunkUnderLimit(t *testing.T) {
	text := "  First paragraph.\n\nSecond paragraph.  "
	chunks := chunk.Plan(text, 1000, chunk.Paragraphs)
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if chunks[0] != strings.TrimSpace(text) {
		t.Fatalf("expected trimmed input, got %q", chunks[0])
	}
}

func TestPlanEmptyInput(t *testing.T) {
	if chunks := chunk.Plan("   \n\n  ", 100, chunk.Paragraphs); chunks != nil {
		t.Fatalf("expected nil chunks for blank input, got %v", chunks)
	}
}

func TestPlanRespectsLimitAtParagraphBoundaries(t *testing.T) {
	paragraphs := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
		strings.Repeat("d", 40),
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := chunk.Plan(text, 90, chunk.Paragraphs)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if got := utf8.RuneCountInString(c); got > 90 {
			t.Fatalf("chunk %d exceeds limit: %d runes", i, got)
		}
		if strings.Contains(c, "\n\n\n") {
			t.Fatalf("chunk %d has malformed separator: %q", i, c)
		}
	}
	if rejoined := strings.Join(chunks, "\n\n"); rejoined != text {
		t.Fatalf("chunks do not cover input: %q", rejoined)
	}
}

func TestPlanOversizedParagraphStandsAlone(t *testing.T) {
	big := strings.Repeat("x", 200)
	text := "short one.\n\n" + big + "\n\nshort two."

	chunks := chunk.Plan(text, 50, chunk.Paragraphs)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[1] != big {
		t.Fatalf("oversized paragraph must occupy its own chunk, got %q", chunks[1])
	}
}

func TestPlanDropsBlankParagraphs(t *testing.T) {
	text := strings.Repeat("a", 30) + "\n\n   \n\n" + strings.Repeat("b", 30)
	chunks := chunk.Plan(text, 40, chunk.Paragraphs)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Fatalf("chunk %d is blank", i)
		}
	}
}

func TestPlanSeparatorOverheadCounted(t *testing.T) {
	// Two 10-rune units fit in 22 (10+10+2 overhead) but not in 21.
	text := strings.Repeat("a", 10) + "\n\n" + strings.Repeat("b", 10)
	if chunks := chunk.Plan(text, 21, chunk.Paragraphs); len(chunks) != 2 {
		t.Fatalf("expected split at limit 21, got %v", chunks)
	}
	// Limit 22 equals the full text length, so the fast path returns one chunk.
	if chunks := chunk.Plan(text, 22, chunk.Paragraphs); len(chunks) != 1 {
		t.Fatalf("expected single chunk at limit 22, got %v", chunks)
	}
}

func TestPlanSentencesCutAfterTerminalPunctuation(t *testing.T) {
	text := "[1] First line. [2] Second line! [3] 你好。 [4] Third?"
	chunks := chunk.Plan(text, 20, chunk.Sentences)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	for i, c := range chunks {
		for _, line := range strings.Split(c, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				t.Fatalf("chunk %d contains a blank line", i)
			}
		}
	}
	joined := strings.ReplaceAll(strings.Join(chunks, "\n"), "\n", " ")
	for _, marker := range []string{"[1]", "[2]", "[3]", "[4]"} {
		if !strings.Contains(joined, marker) {
			t.Fatalf("marker %s lost during planning: %q", marker, joined)
		}
	}
}

func TestPlanSentencesKeepLinesIntact(t *testing.T) {
	lines := []string{
		"[1] Hello there",
		"[2] General Kenobi",
		"[3] You are a bold one",
	}
	text := strings.Join(lines, "\n")
	chunks := chunk.Plan(text, 25, chunk.Sentences)
	var got []string
	for _, c := range chunks {
		got = append(got, strings.Split(c, "\n")...)
	}
	if len(got) != len(lines) {
		t.Fatalf("expected %d lines back, got %d: %v", len(lines), len(got), got)
	}
	for i := range lines {
		if got[i] != lines[i] {
			t.Fatalf("line %d changed: got %q want %q", i, got[i], lines[i])
		}
	}
}
