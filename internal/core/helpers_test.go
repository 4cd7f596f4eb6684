package core

import (
	"context"
	"errors"

	"pocket-wellness/internal/llm"
)

// fakeClient is a scripted completion client. Each Chat call pops the next
// reply; when the script runs out it keeps returning the last entry. Setting
// err makes every call fail.
type fakeClient struct {
	replies []string
	err     error
	calls   [][]llm.Message
	summary string
}

func (f *fakeClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	copied := make([]llm.Message, len(messages))
	copy(copied, messages)
	f.calls = append(f.calls, copied)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "okay", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeClient) Summarize(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.summary != "" {
		return f.summary, nil
	}
	return "a calm conversation", nil
}

var errBoom = errors.New("boom")

const specReply = "Let's try this one.\n```json\n" +
	`{"exerciseName": "Box breathing", "mood": "anxious", "duration": 300, "inhaleSeconds": 4, "holdSeconds": 4, "exhaleSeconds": 4, "description": "Breathe in a square."}` +
	"\n```\nTell me when you're done."

const secondSpecReply = "How about something different.\n```json\n" +
	`{"exerciseName": "4-7-8 breathing", "mood": "restless", "duration": 240, "inhaleSeconds": 4, "holdSeconds": 7, "exhaleSeconds": 8, "description": "In for four, hold for seven, out for eight."}` +
	"\n```"
