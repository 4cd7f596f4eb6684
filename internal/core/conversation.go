package core

import (
	"context"

	"pocket-wellness/internal/llm"
	"pocket-wellness/pkg"
)

// Conversation owns the persona context and the append-only transcript, and
// is the only component that talks to the completion client. The transcript
// always starts with exactly one system turn; turns are appended in strict
// call order and never rewritten.
type Conversation struct {
	client     llm.Client
	persona    *PersonaContext
	transcript []pkg.Turn
}

// NewConversation constructs an uninitialized conversation. A persona must
// be set before any message can be sent.
func NewConversation(client llm.Client) *Conversation {
	return &Conversation{client: client}
}

// SetPersona installs a freshly composed persona, replacing the transcript
// with a single system turn. It fails with ErrNotInitialized when handed a
// nil context, which means composition never succeeded.
func (c *Conversation) SetPersona(persona *PersonaContext) error {
	if persona == nil {
		return ErrNotInitialized
	}
	c.persona = persona
	c.transcript = []pkg.Turn{{Role: pkg.RoleSystem, Content: persona.SystemInstruction}}
	return nil
}

// Send appends userText as a user turn, invokes the completion client with
// the full transcript, appends the reply as an assistant turn and returns it
// unmodified.
//
// A completion failure is returned as a *CompletionFailure with the user
// turn still committed: a retry reuses the same transcript rather than
// re-sending a duplicate user turn.
func (c *Conversation) Send(ctx context.Context, userText string) (string, error) {
	if c.persona == nil {
		return "", ErrNoPersona
	}
	c.transcript = append(c.transcript, pkg.Turn{Role: pkg.RoleUser, Content: userText})

	messages := make([]llm.Message, 0, len(c.transcript))
	for _, t := range c.transcript {
		messages = append(messages, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	reply, err := c.client.Chat(ctx, messages)
	if err != nil {
		return "", &CompletionFailure{Err: err}
	}
	c.transcript = append(c.transcript, pkg.Turn{Role: pkg.RoleAssistant, Content: reply})
	return reply, nil
}

// Open seeds the conversation with the persona's opening instruction and
// appends only the resulting assistant turn. The instruction itself is never
// transcripted - the opening reply is the first turn the user sees after the
// system turn. Like Send, a failure leaves the transcript untouched apart
// from what was already there.
func (c *Conversation) Open(ctx context.Context, instruction string) (string, error) {
	if c.persona == nil {
		return "", ErrNoPersona
	}
	messages := make([]llm.Message, 0, len(c.transcript)+1)
	for _, t := range c.transcript {
		messages = append(messages, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: string(pkg.RoleUser), Content: instruction})

	reply, err := c.client.Chat(ctx, messages)
	if err != nil {
		return "", &CompletionFailure{Err: err}
	}
	c.transcript = append(c.transcript, pkg.Turn{Role: pkg.RoleAssistant, Content: reply})
	return reply, nil
}

// Reset truncates the transcript back to just the system turn, keeping the
// persona. It is a no-op when no persona is set.
func (c *Conversation) Reset() {
	if c.persona == nil {
		return
	}
	c.transcript = []pkg.Turn{{Role: pkg.RoleSystem, Content: c.persona.SystemInstruction}}
}

// ClearPersona discards the persona and the whole transcript, returning the
// conversation to its uninitialized state.
func (c *Conversation) ClearPersona() {
	c.persona = nil
	c.transcript = nil
}

// PersonaName returns the current persona's display name, or "" when no
// persona is set.
func (c *Conversation) PersonaName() string {
	if c.persona == nil {
		return ""
	}
	return c.persona.Name
}

// Transcript returns a copy of the transcript; callers cannot mutate the
// conversation through it.
func (c *Conversation) Transcript() []pkg.Turn {
	out := make([]pkg.Turn, len(c.transcript))
	copy(out, c.transcript)
	return out
}
