// Package segment splits raw contract text into addressable paragraphs.
package segment

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/skriv/kontrakt/internal/models"
)

// clauseNumber matches lines opening a new enumerated clause, e.g. "4.2.1 Payment".
var clauseNumber = regexp.MustCompile(`^\d+(\.\d+)+\.?\s+`)

const maxHeadingLen = 80

// Segment splits text into ordered paragraphs with sequential IDs (p1, p2, ...).
// It is a pure function: the same text always yields the same split. Blocks
// are separated by blank lines; within a block a new paragraph starts at a
// numbered clause line or a short ALL-CAPS heading, provided text has already
// accumulated. Each paragraph's text is collapsed to single spaces.
func Segment(text string) []models.Paragraph {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paragraphs []models.Paragraph
	var buf []string
	flush := func() {
		joined := collapse(strings.Join(buf, " "))
		buf = buf[:0]
		if joined == "" {
			return
		}
		paragraphs = append(paragraphs, models.Paragraph{
			ID:   fmt.Sprintf("p%d", len(paragraphs)+1),
			Text: joined,
		})
	}

	for _, block := range splitBlocks(text) {
		for _, line := range strings.Split(block, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if len(buf) > 0 && startsNewParagraph(trimmed) {
				flush()
			}
			buf = append(buf, trimmed)
		}
		flush()
	}
	return paragraphs
}

// splitBlocks splits text on runs of blank lines.
func splitBlocks(text string) []string {
	var blocks []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = current[:0]
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// startsNewParagraph reports whether line looks like the start of a new
// clause or section heading.
func startsNewParagraph(line string) bool {
	if clauseNumber.MatchString(line) {
		return true
	}
	return isHeading(line)
}

// isHeading reports whether line is a short all-caps section heading.
// Lines without any letters (e.g. pure numbers or dashes) do not count.
func isHeading(line string) bool {
	if len(line) > maxHeadingLen {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// collapse trims and collapses all whitespace runs to single spaces.
func collapse(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}
