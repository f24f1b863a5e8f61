package chat

import (
	"strings"
	"testing"

	"github.com/dgallion1/docchat/internal/claude"
)

func TestNormalize_ConcatenatesTextBlocks(t *testing.T) {
	resp := &claude.Response{Content: []claude.ContentBlock{
		{Type: "text", Text: "The thesis is X."},
		{Type: "tool_use"},
		{Type: "text", Text: " It follows from Y."},
	}}

	text, citations := Normalize(resp)
	if text != "The thesis is X. It follows from Y." {
		t.Errorf("text: got %q", text)
	}
	if len(citations) != 0 {
		t.Errorf("expected no citations, got %d", len(citations))
	}
}

func TestNormalize_MapsCitations(t *testing.T) {
	resp := &claude.Response{Content: []claude.ContentBlock{
		{
			Type: "text",
			Text: "Answer.",
			Citations: []claude.Annotation{
				{
					Type:            "page_location",
					DocumentTitle:   "doc.pdf (pages 1-100)",
					StartPageNumber: 7,
					EndPageNumber:   8,
					CitedText:       "short excerpt",
				},
			},
		},
	}}

	_, citations := Normalize(resp)
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	c := citations[0]
	if c.Document != "doc.pdf (pages 1-100)" || c.StartPage != 7 || c.EndPage != 8 {
		t.Errorf("citation: got %+v", c)
	}
	if c.Text != "short excerpt" {
		t.Errorf("excerpt: got %q", c.Text)
	}
}

func TestNormalize_LenientDefaults(t *testing.T) {
	// Missing title and page numbers default instead of failing.
	resp := &claude.Response{Content: []claude.ContentBlock{
		{
			Type:      "text",
			Text:      "Answer.",
			Citations: []claude.Annotation{{CitedText: "x"}},
		},
	}}

	_, citations := Normalize(resp)
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if citations[0].Document != UnknownDocument {
		t.Errorf("document: got %q, want %q", citations[0].Document, UnknownDocument)
	}
	if citations[0].StartPage != 0 || citations[0].EndPage != 0 {
		t.Errorf("pages: got %d-%d, want 0-0", citations[0].StartPage, citations[0].EndPage)
	}
}

func TestTruncateExcerpt(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "brief", "brief"},
		{"at limit", strings.Repeat("a", ExcerptLimit), strings.Repeat("a", ExcerptLimit)},
		{"one over", strings.Repeat("a", ExcerptLimit+1), strings.Repeat("a", ExcerptLimit) + Ellipsis},
		{"far over", strings.Repeat("b", 500), strings.Repeat("b", ExcerptLimit) + Ellipsis},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateExcerpt(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTruncateExcerpt_CountsRunesNotBytes(t *testing.T) {
	// 150 multibyte runes are within the bound even though the byte length
	// is far larger.
	in := strings.Repeat("日", ExcerptLimit)
	if got := truncateExcerpt(in); got != in {
		t.Errorf("expected %d-rune excerpt unchanged", ExcerptLimit)
	}

	over := strings.Repeat("日", ExcerptLimit+10)
	got := truncateExcerpt(over)
	if got != strings.Repeat("日", ExcerptLimit)+Ellipsis {
		t.Errorf("expected truncation at %d runes", ExcerptLimit)
	}
}
