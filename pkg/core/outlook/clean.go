package outlook

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	markupRe = regexp.MustCompile(`[#*]`)
	spaceRe  = regexp.MustCompile(`\s+`)
	phraseRe = regexp.MustCompile(`(\w+\s+\w+(?:\s+\w+)?\s+[\d.]+%?)`)
	numberRe = regexp.MustCompile(`[-+]?\d*\.?\d+`)
)

// cleanText strips markdown markup, collapses whitespace, and keeps
// the first short phrase ending in a figure when one exists.
func cleanText(text string) string {
	text = markupRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if match := phraseRe.FindString(text); match != "" {
		return match
	}
	return text
}

// extractNumeric pulls the first number out of a hypothesis sentence
// like "4.5% growth expected". Zero when no number is present.
func extractNumeric(hypothesis string) float64 {
	match := numberRe.FindString(hypothesis)
	if match == "" {
		return 0.0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0.0
	}
	return value
}
