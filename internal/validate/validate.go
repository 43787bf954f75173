package validate

import (
	"fmt"
	"strings"
	"unicode"

	"xlate/internal/language"
)

// Strictness controls the CJK-ratio threshold applied to Chinese targets.
type Strictness int

const (
	Off Strictness = iota
	Lenient
	Normal
	Strict
)

// ParseStrictness maps a configuration string to a Strictness level.
func ParseStrictness(value string) (Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "off":
		return Off, nil
	case "lenient":
		return Lenient, nil
	case "normal", "":
		return Normal, nil
	case "strict":
		return Strict, nil
	default:
		return Normal, fmt.Errorf("validation.strictness: unsupported value %q", value)
	}
}

func (s Strictness) String() string {
	switch s {
	case Off:
		return "off"
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return "normal"
	}
}

// threshold is the minimum CJK fraction a Chinese translation must reach.
func (s Strictness) threshold() float64 {
	switch s {
	case Lenient:
		return 0.1
	case Strict:
		return 0.3
	default:
		return 0.2
	}
}

// Validator flags translations that look like they never happened. It is a
// cheap suspicion heuristic, not a quality judgment.
type Validator struct {
	Strictness Strictness
}

// IsTranslated reports whether text plausibly carries a translation into the
// target language. Chinese targets are checked by the fraction of CJK
// ideographs among non-whitespace runes; every other target only requires
// non-empty text.
func (v Validator) IsTranslated(text, targetLanguage string) bool {
	if v.Strictness == Off {
		return true
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if !language.IsChinese(targetLanguage) {
		return true
	}
	return cjkRatio(trimmed) > v.Strictness.threshold()
}

// cjkRatio computes the fraction of CJK Unified Ideographs among the
// non-whitespace runes of text.
func cjkRatio(text string) float64 {
	total := 0
	cjk := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if r >= 0x4E00 && r <= 0x9FFF {
			cjk++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(cjk) / float64(total)
}
