package learnpath

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/russross/blackfriday/v2"
)

const (
	fenceMarker  = "```"
	bulletMarker = "* "
	bulletGlyph  = "•"
)

// Normalize converts raw completion text into the structure the shape asks for.
// Only the JSON shape can fail; list shapes drop entries they cannot read.
func Normalize(raw string, shape Shape) (*Result, error) {
	result := &Result{Shape: shape}

	switch shape {
	case ShapeJSON:
		quiz, err := ParseQuiz(raw)
		if err != nil {
			return nil, err
		}
		result.Quiz = quiz

	case ShapeBulletList:
		result.Items, result.Dropped = ParseBulletList(raw)

	case ShapeMarkdown:
		result.HTML = MarkdownToHTML(raw)

	case ShapeRecommendation:
		rec, ok := ParseRecommendation(raw)
		if ok {
			result.Recommendations = []Recommendation{rec}
		} else {
			result.Dropped = 1
		}

	default:
		return nil, fmt.Errorf("unsupported shape %d", shape)
	}

	return result, nil
}

// StripCodeFences removes a leading ``` or ```lang line opener and a trailing ``` closer
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, fenceMarker) {
		s = strings.TrimPrefix(s, fenceMarker)
		s = strings.TrimLeft(s, " \t")
		s = strings.TrimLeftFunc(s, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		})
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fenceMarker)
	return strings.TrimSpace(s)
}

// ParseQuiz decodes a quiz from JSON text that may be wrapped in code fences
func ParseQuiz(raw string) (*Quiz, error) {
	clean := StripCodeFences(raw)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}

	var quiz Quiz
	if err := json.Unmarshal([]byte(clean), &quiz); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &quiz, nil
}

// ParseBulletList returns the "* " items of raw in order, plus the number of
// non-blank lines that were not bullets.
func ParseBulletList(raw string) ([]string, int) {
	text := strings.ReplaceAll(raw, bulletGlyph, "*")

	items := make([]string, 0)
	dropped := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, bulletMarker) {
			items = append(items, strings.TrimPrefix(line, bulletMarker))
			continue
		}
		if strings.TrimSpace(line) != "" {
			dropped++
		}
	}
	return items, dropped
}

// MarkdownToHTML renders markdown with fenced code block support. Empty input gives "".
func MarkdownToHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return string(blackfriday.Run([]byte(raw), blackfriday.WithExtensions(blackfriday.CommonExtensions)))
}

// ParseRecommendation splits "Name: Description" on the first colon.
// ok is false when the text has no colon.
func ParseRecommendation(raw string) (Recommendation, bool) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return Recommendation{}, false
	}
	return Recommendation{
		Name:            strings.TrimSpace(parts[0]),
		DescriptionHTML: MarkdownToHTML(strings.TrimSpace(parts[1])),
	}, true
}

// ModuleName returns the part of a "Name: description" module item before the colon,
// without bold markers
func ModuleName(item string) string {
	name, _, _ := strings.Cut(item, ":")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "*"))
}

// ModuleDescription returns the part of a module item after the first colon
func ModuleDescription(item string) string {
	_, desc, found := strings.Cut(item, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(desc)
}
