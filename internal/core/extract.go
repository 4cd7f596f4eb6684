package core

import (
	"encoding/json"
	"strings"

	"pocket-wellness/pkg"
)

// ExtractBreathingSpec scans assistant output for a fenced ```json block and
// parses it as a breathing exercise spec. It returns (nil, false) when no
// block is present or the block is malformed or incomplete - an absent
// payload means the model is still in small-talk, not an error. When the
// reply contains more than one block, only the first is honored.
func ExtractBreathingSpec(assistantText string) (*pkg.BreathingSpec, bool) {
	body, ok := firstFencedJSON(assistantText)
	if !ok {
		return nil, false
	}

	// Pointer fields so a missing key is distinguishable from a zero value;
	// any required field absent invalidates the whole block.
	var raw struct {
		ExerciseName  *string `json:"exerciseName"`
		Mood          *string `json:"mood"`
		Duration      *int    `json:"duration"`
		InhaleSeconds *int    `json:"inhaleSeconds"`
		HoldSeconds   *int    `json:"holdSeconds"`
		ExhaleSeconds *int    `json:"exhaleSeconds"`
		Description   *string `json:"description"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, false
	}
	if raw.ExerciseName == nil || raw.Mood == nil || raw.Duration == nil ||
		raw.InhaleSeconds == nil || raw.HoldSeconds == nil ||
		raw.ExhaleSeconds == nil || raw.Description == nil {
		return nil, false
	}
	if strings.TrimSpace(*raw.ExerciseName) == "" {
		return nil, false
	}
	if *raw.Duration <= 0 {
		return nil, false
	}
	if *raw.InhaleSeconds < 0 || *raw.HoldSeconds < 0 || *raw.ExhaleSeconds < 0 {
		return nil, false
	}

	return &pkg.BreathingSpec{
		ExerciseName:  *raw.ExerciseName,
		Mood:          *raw.Mood,
		Duration:      *raw.Duration,
		InhaleSeconds: *raw.InhaleSeconds,
		HoldSeconds:   *raw.HoldSeconds,
		ExhaleSeconds: *raw.ExhaleSeconds,
		Description:   *raw.Description,
	}, true
}

// firstFencedJSON returns the contents of the first ```json fence in text.
// The tag match tolerates the casings models actually emit; an unterminated
// fence counts as absent. Offsets are computed against the original text so
// multibyte characters elsewhere in the reply cannot skew the slice.
func firstFencedJSON(text string) (string, bool) {
	start := -1
	tagLen := 0
	for _, tag := range []string{"```json", "```JSON", "```Json"} {
		if i := strings.Index(text, tag); i >= 0 && (start < 0 || i < start) {
			start = i
			tagLen = len(tag)
		}
	}
	if start < 0 {
		return "", false
	}
	rest := text[start+tagLen:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
