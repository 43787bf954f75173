package chunk

import (
	"strings"
	"unicode/utf8"
)

// Units selects the atomic unit the planner refuses to split across chunks.
type Units int

const (
	// Paragraphs splits free text on blank lines and rejoins with blank lines.
	Paragraphs Units = iota
	// Sentences splits subtitle-derived text after terminal punctuation and at
	// newline boundaries, rejoining with single newlines.
	Sentences
)

const (
	paragraphSeparator = "\n\n"
	sentenceSeparator  = "\n"
)

// Plan splits text into ordered chunks whose rendered rune length stays at or
// below limit. Units are never split: a single unit longer than the limit is
// emitted alone in its own chunk. Text already within the limit is returned
// trimmed as a single chunk without any splitting.
func Plan(text string, limit int, units Units) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(trimmed) <= limit {
		return []string{trimmed}
	}

	separator := paragraphSeparator
	atoms := splitParagraphs(trimmed)
	if units == Sentences {
		separator = sentenceSeparator
		atoms = splitSentences(trimmed)
	}
	overhead := utf8.RuneCountInString(separator)

	var chunks []string
	var current []string
	currentSize := 0
	for _, atom := range atoms {
		atom = strings.TrimSpace(atom)
		if atom == "" {
			continue
		}
		size := utf8.RuneCountInString(atom)
		if len(current) > 0 && currentSize+size+overhead > limit {
			chunks = append(chunks, strings.Join(current, separator))
			current = current[:0]
			currentSize = 0
		}
		current = append(current, atom)
		currentSize += size + overhead
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, separator))
	}
	return chunks
}

func splitParagraphs(text string) []string {
	return strings.Split(text, "\n\n")
}

// terminalPunctuation ends a sentence in both Latin and full-width CJK forms.
func terminalPunctuation(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '…':
		return true
	}
	return false
}

// splitSentences cuts after terminal punctuation and at line breaks so each
// extraction line stays a single unit.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			sentences = append(sentences, b.String())
			b.Reset()
		}
	}
	for _, r := range text {
		if r == '\n' {
			flush()
			continue
		}
		b.WriteRune(r)
		if terminalPunctuation(r) {
			flush()
		}
	}
	flush()
	return sentences
}
