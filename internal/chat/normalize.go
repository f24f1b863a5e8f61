package chat

import (
	"strings"

	"github.com/dgallion1/docchat/internal/claude"
)

// Normalize flattens a raw response into the final answer text and a
// display-ready citation list. Text blocks are concatenated in order;
// blocks of any other type are ignored.
func Normalize(resp *claude.Response) (string, []Citation) {
	var text strings.Builder
	var citations []Citation

	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		text.WriteString(block.Text)
		for _, ann := range block.Citations {
			citations = append(citations, normalizeAnnotation(ann))
		}
	}
	return text.String(), citations
}

func normalizeAnnotation(ann claude.Annotation) Citation {
	doc := ann.DocumentTitle
	if doc == "" {
		doc = UnknownDocument
	}
	return Citation{
		Document:  doc,
		StartPage: ann.StartPageNumber,
		EndPage:   ann.EndPageNumber,
		Text:      truncateExcerpt(ann.CitedText),
	}
}

// truncateExcerpt bounds an excerpt to ExcerptLimit runes. The ellipsis
// marker is appended only when something was actually cut.
func truncateExcerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= ExcerptLimit {
		return s
	}
	return string(runes[:ExcerptLimit]) + Ellipsis
}
