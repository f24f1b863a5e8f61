package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/docchat/internal/chunker"
	"github.com/dgallion1/docchat/internal/claude"
)

// Dispatcher is the remote model boundary.
type Dispatcher interface {
	Messages(ctx context.Context, messages []claude.Message) (*claude.Response, error)
}

// BuildRequest assembles the ordered outbound payload: a first user message
// carrying every document unit in page order followed by one text block
// holding the question, then each prior non-blank turn as a
// single-text-block message in chronological order. Units are attached
// exactly once regardless of history length.
func BuildRequest(units []chunker.Unit, prompt string, prior []Turn) []claude.Message {
	blocks := make([]claude.Block, 0, len(units)+1)
	for _, u := range units {
		blocks = append(blocks, claude.DocumentBlock(u.Data, u.MediaType, u.Title, u.CitationsEnabled))
	}
	blocks = append(blocks, claude.TextBlock(prompt))

	messages := []claude.Message{{Role: RoleUser, Content: blocks}}
	for _, t := range prior {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		messages = append(messages, claude.Message{
			Role:    t.Role,
			Content: []claude.Block{claude.TextBlock(t.Content)},
		})
	}
	return messages
}

// Assembler runs exchanges against the model boundary for one chunked
// document.
type Assembler struct {
	dispatcher Dispatcher
	log        *slog.Logger
}

func NewAssembler(dispatcher Dispatcher, log *slog.Logger) *Assembler {
	return &Assembler{dispatcher: dispatcher, log: log}
}

// Exchange answers one question in the context of the session's transcript.
// The user turn and the assistant turn are appended together only after the
// response normalizes cleanly, so a failed exchange leaves the transcript
// exactly as it was.
func (a *Assembler) Exchange(ctx context.Context, sess *Session, units []chunker.Unit, prompt string) (Turn, error) {
	prior := sess.Turns()
	messages := BuildRequest(units, prompt, prior)

	a.log.Debug("dispatching exchange",
		"session_id", sess.ID(),
		"units", len(units),
		"history_turns", len(prior),
		"messages", len(messages),
	)

	resp, err := a.dispatcher.Messages(ctx, messages)
	if err != nil {
		return Turn{}, err
	}

	text, citations := Normalize(resp)
	reply := Turn{Role: RoleAssistant, Content: text, Citations: citations}
	sess.Append(
		Turn{Role: RoleUser, Content: prompt},
		reply,
	)
	return reply, nil
}
