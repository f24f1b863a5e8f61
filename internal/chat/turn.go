// Package chat holds the conversation model: turns, citations, sessions,
// and the assembler that turns a question plus history into an outbound
// model request.
package chat

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ExcerptLimit caps cited excerpt length in runes. Longer excerpts are cut
// to the first ExcerptLimit runes and marked with Ellipsis; shorter ones
// pass through unchanged.
const (
	ExcerptLimit = 150
	Ellipsis     = "..."
)

// UnknownDocument is substituted when the API omits a citation's document
// title. The boundary does not contractually guarantee citation metadata,
// so missing fields default leniently instead of failing the exchange.
const UnknownDocument = "Unknown Document"

// Citation is a display-ready reference into the source document.
type Citation struct {
	Document  string `json:"document"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
	Text      string `json:"text"`
}

// Turn is one role-tagged message in a session transcript. Turns are
// immutable once appended.
type Turn struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations"`
}
