package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Block is one timed caption unit. Timing is the raw timestamp line and is
// carried verbatim through the round trip, never reparsed.
type Block struct {
	Index  int
	Timing string
	Lines  []string
}

// timingPattern matches the leading HH:MM:SS shape of an SRT timestamp line.
var timingPattern = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}`)

// markerPattern locates bracketed block markers in backend output.
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// Parse scans an SRT document into ordered blocks. Blank lines terminate
// blocks; within a block the first all-digit line claims the index, the first
// timestamp-shaped line claims the timing, and every other non-blank line
// accumulates as text. A dangling block at end of input is still flushed.
func Parse(document string) []Block {
	var blocks []Block
	var current Block
	haveIndex := false
	haveTiming := false
	open := false

	flush := func() {
		if !open {
			return
		}
		blocks = append(blocks, current)
		current = Block{}
		haveIndex = false
		haveTiming = false
		open = false
	}

	for _, line := range strings.Split(document, "\n") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if trimmed == "" {
			flush()
			continue
		}
		open = true
		switch {
		case !haveIndex && isAllDigits(trimmed):
			if idx, err := strconv.Atoi(trimmed); err == nil {
				current.Index = idx
				haveIndex = true
				continue
			}
			current.Lines = append(current.Lines, trimmed)
		case !haveTiming && timingPattern.MatchString(trimmed):
			current.Timing = trimmed
			haveTiming = true
		default:
			current.Lines = append(current.Lines, trimmed)
		}
	}
	flush()
	return blocks
}

// ExtractText renders blocks as one prompt-friendly line per block, tagging
// each with a recoverable bracketed index marker.
func ExtractText(blocks []Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s", block.Index, strings.Join(block.Lines, " "))
	}
	return b.String()
}

// ParseTranslated recovers per-block translations from backend output. The
// result always has exactly expectedCount entries, indexed 1..expectedCount;
// a block whose marker cannot be found degrades to an empty string. Later
// duplicate markers overwrite earlier ones, which tolerates a backend
// renumbering or repeating blocks.
func ParseTranslated(text string, expectedCount int) []string {
	if expectedCount <= 0 {
		return nil
	}
	recovered := make(map[int]string)
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	for i, match := range matches {
		idx, err := strconv.Atoi(text[match[2]:match[3]])
		if err != nil {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		recovered[idx] = strings.TrimSpace(text[match[1]:end])
	}

	out := make([]string, expectedCount)
	for i := 1; i <= expectedCount; i++ {
		out[i-1] = recovered[i]
	}
	return out
}

// Build reassembles an SRT document from parsed blocks and a parallel slice
// of translations. Blocks are renumbered sequentially from 1 regardless of
// their parsed indices; the timing line is emitted verbatim. A block whose
// translation is missing or empty keeps its original lines.
func Build(blocks []Block, translations []string) string {
	var b strings.Builder
	for i, block := range blocks {
		fmt.Fprintf(&b, "%d\n%s\n", i+1, block.Timing)
		translated := ""
		if i < len(translations) {
			translated = strings.TrimSpace(translations[i])
		}
		if translated != "" {
			b.WriteString(translated)
			b.WriteByte('\n')
		} else {
			for _, line := range block.Lines {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// DegradedCount reports how many recovered translations came back empty and
// will fall back to original text during Build.
func DegradedCount(translations []string) int {
	count := 0
	for _, t := range translations {
		if strings.TrimSpace(t) == "" {
			count++
		}
	}
	return count
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
