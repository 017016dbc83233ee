package format

import "testing"

func TestHeading(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"question mark splits", "What is DNA? Explain.", "What is DNA"},
		{"no question mark keeps whole", "Tell me about gravity", "Tell me about gravity"},
		{"no question mark trims", "  Tell me about gravity  ", "Tell me about gravity"},
		{"leading question mark falls back", "?", "Answer"},
		{"empty falls back", "", "Answer"},
		{"whitespace falls back", "   ", "Answer"},
		{"only first mark counts", "Why? How? When?", "Why"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Heading(tt.question); got != tt.want {
				t.Errorf("Heading(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"emphasis and blank lines",
			"**Bold** and _em_\n\n\n\nNext",
			"Bold and em\n\nNext",
		},
		{
			"code fence removed",
			"before\n```go\nfmt.Println(\"x\")\n```\nafter",
			"before\n\nafter",
		},
		{
			"image keeps alt text",
			"see ![a cell](http://x/cell.png) here",
			"see a cell here",
		},
		{
			"link keeps text",
			"read [the paper](http://x/p.pdf) now",
			"read the paper now",
		},
		{
			"leading bullets stripped",
			"- first\n- second",
			"first\nsecond",
		},
		{
			"unicode bullet stripped",
			"• item",
			"item",
		},
		{
			"backticks stripped",
			"use `fmt` here",
			"use fmt here",
		},
		{
			"empty stays empty",
			"",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMarkdown(tt.in); got != tt.want {
				t.Errorf("CleanMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanMarkdownIdempotent(t *testing.T) {
	inputs := []string{
		"**Bold** and _em_\n\n\n\nNext",
		"- a\n- b\n\n\n\nc",
		"plain text already",
		"![img](u) and [link](u) and ```code```",
	}
	for _, in := range inputs {
		once := CleanMarkdown(in)
		twice := CleanMarkdown(once)
		if once != twice {
			t.Errorf("cleaning not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestFormat(t *testing.T) {
	got := Format("What is DNA? Explain.", "**Bold** and _em_\n\n\n\nNext")
	if got.Heading != "What is DNA" {
		t.Errorf("heading = %q", got.Heading)
	}
	if got.Body != "Bold and em\n\nNext" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestFormatDeterministic(t *testing.T) {
	a := Format("Why is the sky blue?", "* because of **scattering**")
	b := Format("Why is the sky blue?", "* because of **scattering**")
	if a != b {
		t.Errorf("format is not deterministic: %v vs %v", a, b)
	}
}
