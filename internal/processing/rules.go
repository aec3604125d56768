package processing

import (
	"regexp"
	"strings"
)

var (
	reLineEnding = regexp.MustCompile(`\r\n?`)
	reBlankRun   = regexp.MustCompile(`\n{3,}`)
)

// LineEndingRule converts CRLF and bare CR line endings to LF
type LineEndingRule struct{}

func (r *LineEndingRule) Name() string {
	return "line_ending_normalization"
}

func (r *LineEndingRule) Description() string {
	return "Converts CRLF and CR line endings to a single LF convention"
}

func (r *LineEndingRule) Apply(text string) string {
	return reLineEnding.ReplaceAllString(text, "\n")
}

// ReplacementCharRule drops U+FFFD characters the engine emits for bytes
// it could not decode
type ReplacementCharRule struct{}

func (r *ReplacementCharRule) Name() string {
	return "replacement_char_removal"
}

func (r *ReplacementCharRule) Description() string {
	return "Removes U+FFFD replacement characters from recognized text"
}

func (r *ReplacementCharRule) Apply(text string) string {
	return strings.ReplaceAll(text, "�", "")
}

// HorizontalWhitespaceRule trims each line and collapses runs of spaces
// and tabs inside it to a single space
type HorizontalWhitespaceRule struct{}

func (r *HorizontalWhitespaceRule) Name() string {
	return "horizontal_whitespace_collapse"
}

func (r *HorizontalWhitespaceRule) Description() string {
	return "Trims lines and collapses inner whitespace runs to one space"
}

func (r *HorizontalWhitespaceRule) Apply(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// BlankLineRule collapses runs of blank lines to exactly one blank line,
// preserving single line breaks and single paragraph separators
type BlankLineRule struct{}

func (r *BlankLineRule) Name() string {
	return "blank_line_collapse"
}

func (r *BlankLineRule) Description() string {
	return "Collapses runs of blank lines to a single paragraph separator"
}

func (r *BlankLineRule) Apply(text string) string {
	return reBlankRun.ReplaceAllString(text, "\n\n")
}

// TrimRule strips leading and trailing whitespace from the whole text
type TrimRule struct{}

func (r *TrimRule) Name() string {
	return "outer_trim"
}

func (r *TrimRule) Description() string {
	return "Strips leading and trailing whitespace from the whole text"
}

func (r *TrimRule) Apply(text string) string {
	return strings.TrimSpace(text)
}
