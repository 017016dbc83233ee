// Package format turns raw model output into a plain-text display answer.
package format

import (
	"regexp"
	"strings"
)

// Answer is the display form of a model response.
type Answer struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

var (
	reCodeFence  = regexp.MustCompile("```[\\s\\S]*?```")
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reBullet     = regexp.MustCompile(`^\s*[-*\x{2022}\x{25CF}\x{25E6}\x{2043}]\s+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)

	markerReplacer = strings.NewReplacer("**", "", "__", "", "`", "", "*", "", "_", "")
)

// Format derives the display heading from the question and cleans the raw
// answer into plain text.
func Format(question, rawAnswer string) Answer {
	return Answer{
		Heading: Heading(question),
		Body:    CleanMarkdown(strings.TrimSpace(rawAnswer)),
	}
}

// Heading is the question text before its first '?', trimmed; "Answer" when
// that substring is empty.
func Heading(question string) string {
	h := question
	if idx := strings.Index(question, "?"); idx >= 0 {
		h = question[:idx]
	}
	h = strings.TrimSpace(h)
	if h == "" {
		return "Answer"
	}
	return h
}

// CleanMarkdown strips markdown syntax deterministically. Transform order:
// fenced code blocks, images, links, emphasis markers, leading bullets,
// blank-line collapse, outer trim. Cleaning already-clean text is a no-op.
func CleanMarkdown(md string) string {
	if md == "" {
		return ""
	}
	text := reCodeFence.ReplaceAllString(md, "")
	text = reImage.ReplaceAllString(text, "$1")
	text = reLink.ReplaceAllString(text, "$1")
	text = markerReplacer.Replace(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = reBullet.ReplaceAllString(line, "")
	}
	text = strings.Join(lines, "\n")

	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
