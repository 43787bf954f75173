package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"xlate/internal/services"
)

// DefaultText is the built-in template for plain text and markdown jobs.
const DefaultText = `You are a professional translator. Translate the following text from {source_language} to {target_language}.
Preserve paragraph breaks and markdown formatting. Output only the translation, with no commentary.
{context}{style}
Text to translate:

{content}`

// DefaultSubtitle is the built-in template for subtitle jobs. Each input line
// carries a bracketed index marker that must survive translation so the
// blocks can be matched back to their timestamps.
const DefaultSubtitle = `You are a professional subtitle translator. Translate the following subtitle lines from {source_language} to {target_language}.
Each line starts with an index marker like [12]. Keep every marker exactly as given and translate only the text after it, one line per marker.
{context}{style}
Subtitle lines:

{content}`

// Values carries the substitutions applied to a template.
type Values struct {
	SourceLanguage string
	TargetLanguage string
	Content        string
	Context        string
	Style          string
}

// Render substitutes the placeholder keys of template with the supplied
// values. The optional context and style placeholders render as labelled
// lines when set and disappear entirely when empty.
func Render(template string, values Values) string {
	contextLine := ""
	if v := strings.TrimSpace(values.Context); v != "" {
		contextLine = "Context: " + v + "\n"
	}
	styleLine := ""
	if v := strings.TrimSpace(values.Style); v != "" {
		styleLine = "Style: " + v + "\n"
	}
	replacer := strings.NewReplacer(
		"{source_language}", strings.TrimSpace(values.SourceLanguage),
		"{target_language}", strings.TrimSpace(values.TargetLanguage),
		"{content}", values.Content,
		"{context}", contextLine,
		"{style}", styleLine,
	)
	return replacer.Replace(template)
}

// Presets holds optional template and style overrides loaded from a YAML
// file. Styles maps a short name to a fuller style instruction.
type Presets struct {
	Text     string            `yaml:"text"`
	Subtitle string            `yaml:"subtitle"`
	Styles   map[string]string `yaml:"styles"`
}

// LoadPresets reads a presets file. A missing path returns empty presets so
// the built-in templates apply.
func LoadPresets(path string) (Presets, error) {
	var presets Presets
	path = strings.TrimSpace(path)
	if path == "" {
		return presets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return presets, services.Wrap(services.ErrConfiguration, "prompt", "load presets", fmt.Sprintf("read %s", path), err)
	}
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return presets, services.Wrap(services.ErrConfiguration, "prompt", "load presets", fmt.Sprintf("parse %s", path), err)
	}
	presets.Text = strings.TrimSpace(presets.Text)
	presets.Subtitle = strings.TrimSpace(presets.Subtitle)
	return presets, nil
}

// ResolveStyle maps a style name through the presets. Unmapped values pass
// through unchanged so ad-hoc style hints remain usable.
func (p Presets) ResolveStyle(style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return ""
	}
	if resolved, ok := p.Styles[strings.ToLower(style)]; ok {
		return strings.TrimSpace(resolved)
	}
	return style
}

// TextTemplate returns the preset text template or the built-in default.
func (p Presets) TextTemplate(override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	if p.Text != "" {
		return p.Text
	}
	return DefaultText
}

// SubtitleTemplate returns the preset subtitle template or the built-in default.
func (p Presets) SubtitleTemplate(override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	if p.Subtitle != "" {
		return p.Subtitle
	}
	return DefaultSubtitle
}
