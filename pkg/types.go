package pkg

import "time"

// Exercise identifies one of the guided wellness exercises a user can pick
// after the initial check-in. The set is closed; anything else is rejected
// before a persona is composed.
type Exercise string

const (
	ExerciseEmptyChair Exercise = "empty_chair"
	ExerciseBreathing  Exercise = "breathing"
	ExerciseBodyScan   Exercise = "body_scan"
	ExerciseReflection Exercise = "reflection"
)

// Valid reports whether e is one of the known exercises.
func (e Exercise) Valid() bool {
	switch e {
	case ExerciseEmptyChair, ExerciseBreathing, ExerciseBodyScan, ExerciseReflection:
		return true
	}
	return false
}

// ExerciseLabels maps exercise tags to their user-facing display names.
var ExerciseLabels = map[Exercise]string{
	ExerciseEmptyChair: "Empty Chair",
	ExerciseBreathing:  "Breathing Exercise",
	ExerciseBodyScan:   "Body Scan",
	ExerciseReflection: "Reflection",
}

// Role describes who authored a transcript turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry in a conversation transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// BodySensations is the fixed list of sensation tags offered during the
// initial check-in. Assessment validation accepts only these.
var BodySensations = []string{
	"Tension in body",
	"Numbness",
	"Tight chest or breathing",
	"Heavy or tired",
	"Light and energetic",
	"Restless or fidgety",
	"Emptiness",
	"Palpitations",
}

// AttentionOptions is the fixed list of attention-focus tags offered during
// the initial check-in.
var AttentionOptions = []string{
	"A conversation I need to have",
	"Personal care or self-care",
	"Work tasks or projects",
	"Expressing emotions I've held back",
	"Reaching out to someone",
	"Physical sensations",
}

// MoodDescriptions translates the 1-5 mood rating into the wording used
// inside persona prompts.
var MoodDescriptions = map[int]string{
	1: "not good at all",
	2: "not so good",
	3: "neutral/okay",
	4: "good",
	5: "very good",
}

// AssessmentRecord is the immutable snapshot of the user's check-in answers.
// It is created once per session and only replaced on a full restart.
type AssessmentRecord struct {
	MoodRating     int      `json:"mood_rating"`
	BodySensations []string `json:"body_sensations"`
	AttentionFocus string   `json:"attention_focus"`
}

// SetupFields carries the exercise-specific setup answers. Which fields are
// required depends on the chosen exercise: EmptyChair needs Who,
// Characteristics, Topic and Situation; BodyScan needs UncomfortableArea and
// BodyFeeling; Breathing and Reflection need nothing.
type SetupFields struct {
	Who               string `json:"who,omitempty"`
	Characteristics   string `json:"characteristics,omitempty"`
	Topic             string `json:"topic,omitempty"`
	Situation         string `json:"situation,omitempty"`
	UncomfortableArea string `json:"uncomfortable_area,omitempty"`
	BodyFeeling       string `json:"body_feeling,omitempty"`
}

// BreathingSpec is the structured exercise payload the breathing guide embeds
// in its replies as a fenced JSON block. All seven fields are required on the
// wire; extra fields are ignored.
type BreathingSpec struct {
	ExerciseName  string `json:"exerciseName"`
	Mood          string `json:"mood"`
	Duration      int    `json:"duration"`
	InhaleSeconds int    `json:"inhaleSeconds"`
	HoldSeconds   int    `json:"holdSeconds"`
	ExhaleSeconds int    `json:"exhaleSeconds"`
	Description   string `json:"description"`
}

// SessionPhase is the session's current position in the guided flow.
type SessionPhase string

const (
	PhaseAssessment SessionPhase = "assessment"
	PhaseSelection  SessionPhase = "selection"
	PhaseSetup      SessionPhase = "setup"
	PhaseChat       SessionPhase = "chat"
)

// SessionView is the read-only projection handed to the UI after every
// orchestrator event.
type SessionView struct {
	SessionID            string            `json:"session_id"`
	Phase                SessionPhase      `json:"phase"`
	Exercise             Exercise          `json:"exercise,omitempty"`
	PersonaName          string            `json:"persona_name,omitempty"`
	Assessment           *AssessmentRecord `json:"assessment,omitempty"`
	Transcript           []Turn            `json:"transcript"`
	OfferedExercises     []string          `json:"offered_exercises,omitempty"`
	LatestBreathingSpec  *BreathingSpec    `json:"latest_breathing_spec,omitempty"`
	CompletionPromptSent bool              `json:"completion_prompt_sent"`
}

// Recap is a short model-written summary of a finished (or ongoing)
// conversation, generated on demand.
type Recap struct {
	SessionID   string    `json:"session_id"`
	Exercise    Exercise  `json:"exercise,omitempty"`
	PersonaName string    `json:"persona_name,omitempty"`
	FreeText    string    `json:"free_text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// AssessmentRequest is the body of POST /api/sessions/{id}/assessment.
type AssessmentRequest struct {
	MoodRating     int      `json:"mood_rating"`
	BodySensations []string `json:"body_sensations"`
	AttentionFocus string   `json:"attention_focus"`
}

// ExerciseRequest is the body of POST /api/sessions/{id}/exercise.
type ExerciseRequest struct {
	Exercise Exercise `json:"exercise"`
}

// MessageRequest is the body of POST /api/sessions/{id}/messages.
type MessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse carries the assistant reply alongside the updated view.
type MessageResponse struct {
	Reply string      `json:"reply"`
	View  SessionView `json:"view"`
}

// ErrorResponse is the JSON shape of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
