package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocket-wellness/internal/llm"
	"pocket-wellness/pkg"
)

// Recapper produces a short, user-facing summary of a session's
// conversation on demand. It reads the transcript but never mutates it, the
// phase, or any other session state.
type Recapper struct {
	llm llm.Client
}

// NewRecapper constructs a recapper with the given LLM client.
func NewRecapper(client llm.Client) *Recapper {
	return &Recapper{llm: client}
}

// Recap summarizes the conversation in the given view. The system turn is
// excluded - the recap should reflect what the user and the persona actually
// said, not the instructions behind them.
func (r *Recapper) Recap(ctx context.Context, view pkg.SessionView) (*pkg.Recap, error) {
	var b strings.Builder
	for _, t := range view.Transcript {
		switch t.Role {
		case pkg.RoleUser:
			fmt.Fprintf(&b, "User: %s\n", t.Content)
		case pkg.RoleAssistant:
			name := view.PersonaName
			if name == "" {
				name = "Guide"
			}
			fmt.Fprintf(&b, "%s: %s\n", name, t.Content)
		}
	}
	if b.Len() == 0 {
		return nil, &ValidationError{Field: "transcript", Reason: "nothing to recap yet"}
	}

	text, err := r.llm.Summarize(ctx, b.String())
	if err != nil {
		return nil, &CompletionFailure{Err: err}
	}
	return &pkg.Recap{
		SessionID:   view.SessionID,
		Exercise:    view.Exercise,
		PersonaName: view.PersonaName,
		FreeText:    text,
		GeneratedAt: time.Now(),
	}, nil
}
