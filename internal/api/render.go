package api

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
)

// renderMarkdown converts an assistant answer to HTML for the chat page.
// On a conversion failure the text is escaped and wrapped instead, so the
// transcript always displays something.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "<p>" + html.EscapeString(md) + "</p>"
	}
	return buf.String()
}
