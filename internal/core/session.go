package core

import (
	"context"
	"fmt"
	"strings"

	"pocket-wellness/internal/llm"
	"pocket-wellness/pkg"
)

// Session is the aggregate for one guided wellness session. It owns the
// assessment record, the conversation (persona + transcript), the dedup
// tracker, the current phase and the breathing completion flag - there is no
// session state outside this struct.
//
// Session is not safe for concurrent use; the registry serializes events so
// exactly one runs at a time, matching the one-event-at-a-time session model.
type Session struct {
	id         string
	phase      pkg.SessionPhase
	assessment *pkg.AssessmentRecord
	exercise   pkg.Exercise
	conv       *Conversation
	tracker    *Tracker

	latestSpec           *pkg.BreathingSpec
	lastTurnHadSpec      bool
	completionPromptSent bool
}

// NewSession constructs a session in the assessment phase.
func NewSession(id string, client llm.Client) *Session {
	return &Session{
		id:      id,
		phase:   pkg.PhaseAssessment,
		conv:    NewConversation(client),
		tracker: NewTracker(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the session's current phase.
func (s *Session) Phase() pkg.SessionPhase { return s.phase }

// SubmitAssessment validates and stores the check-in answers, moving the
// session to exercise selection. A validation failure leaves the session in
// the assessment phase with nothing recorded.
func (s *Session) SubmitAssessment(moodRating int, bodySensations []string, attentionFocus string) error {
	if s.phase != pkg.PhaseAssessment {
		return &PhaseError{Phase: s.phase, Event: "submit assessment"}
	}
	record, err := SubmitAssessment(moodRating, bodySensations, attentionFocus)
	if err != nil {
		return err
	}
	s.assessment = record
	s.phase = pkg.PhaseSelection
	return nil
}

// ChooseExercise moves the session from selection into setup for the chosen
// exercise.
func (s *Session) ChooseExercise(exercise pkg.Exercise) error {
	if s.phase != pkg.PhaseSelection {
		return &PhaseError{Phase: s.phase, Event: "choose exercise"}
	}
	if !exercise.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedExercise, exercise)
	}
	s.exercise = exercise
	s.phase = pkg.PhaseSetup
	return nil
}

// Back returns from setup to selection, discarding the chosen exercise and
// any partial setup fields (which are never stored on the session anyway).
func (s *Session) Back() error {
	if s.phase != pkg.PhaseSetup {
		return &PhaseError{Phase: s.phase, Event: "go back"}
	}
	s.exercise = ""
	s.phase = pkg.PhaseSelection
	return nil
}

// SubmitSetup completes exercise setup: it composes the persona context,
// installs it on the conversation and sends the opening instruction through
// the completion client. The returned text becomes the first visible
// assistant turn. Any failure in that chain keeps the session in setup and
// leaves the conversation uninitialized so a retry starts clean.
func (s *Session) SubmitSetup(ctx context.Context, setup pkg.SetupFields) (string, error) {
	if s.phase != pkg.PhaseSetup {
		return "", &PhaseError{Phase: s.phase, Event: "submit setup"}
	}
	persona, err := Compose(s.exercise, s.assessment, setup, s.tracker.All())
	if err != nil {
		return "", err
	}
	if err := s.conv.SetPersona(persona); err != nil {
		return "", err
	}
	opening, err := s.conv.Open(ctx, persona.OpeningInstruction)
	if err != nil {
		s.conv.ClearPersona()
		return "", err
	}
	s.phase = pkg.PhaseChat
	s.afterAssistantTurn(opening)
	return opening, nil
}

// SendMessage appends a user message, obtains the assistant reply and runs
// the extractor against it. On a completion failure the user turn stays
// committed so the user can retry without duplicating it.
func (s *Session) SendMessage(ctx context.Context, text string) (string, error) {
	if s.phase != pkg.PhaseChat {
		return "", &PhaseError{Phase: s.phase, Event: "send message"}
	}
	if strings.TrimSpace(text) == "" {
		return "", &ValidationError{Field: "content", Reason: "message is empty"}
	}
	reply, err := s.conv.Send(ctx, text)
	if err != nil {
		return "", err
	}
	s.afterAssistantTurn(reply)
	return reply, nil
}

// MarkExerciseFinished fires the breathing completion check. It is only
// actionable when the latest assistant turn produced a spec and the check
// has not already been sent for it; otherwise it is a silent no-op and
// returns false. Firing sends a fixed synthetic instruction through the
// conversation - transcripted as a user turn, though the user never typed
// it - carrying the current no-repeat list.
func (s *Session) MarkExerciseFinished(ctx context.Context) (bool, error) {
	if s.phase != pkg.PhaseChat {
		return false, &PhaseError{Phase: s.phase, Event: "mark exercise finished"}
	}
	if s.exercise != pkg.ExerciseBreathing {
		return false, nil
	}
	if s.completionPromptSent || !s.lastTurnHadSpec {
		return false, nil
	}
	// Flip before sending: the synthetic turn commits even when the reply
	// fails, and the check must fire at most once per extracted spec.
	s.completionPromptSent = true
	reply, err := s.conv.Send(ctx, FinishedSignalInstruction(s.tracker.All()))
	if err != nil {
		return true, err
	}
	s.afterAssistantTurn(reply)
	return true, nil
}

// ClearChat truncates the transcript to the system turn and resets all
// breathing bookkeeping. The persona identity is retained.
func (s *Session) ClearChat() error {
	if s.phase != pkg.PhaseChat {
		return &PhaseError{Phase: s.phase, Event: "clear chat"}
	}
	s.conv.Reset()
	s.resetExerciseState()
	return nil
}

// ChangeExercise discards the persona, transcript and dedup tracker and
// returns to exercise selection. The assessment record survives.
func (s *Session) ChangeExercise() error {
	if s.phase != pkg.PhaseChat {
		return &PhaseError{Phase: s.phase, Event: "change exercise"}
	}
	s.conv.ClearPersona()
	s.resetExerciseState()
	s.exercise = ""
	s.phase = pkg.PhaseSelection
	return nil
}

// StartOver discards the entire session state and returns to the assessment
// phase. It is legal from any phase.
func (s *Session) StartOver() {
	s.conv.ClearPersona()
	s.resetExerciseState()
	s.exercise = ""
	s.assessment = nil
	s.phase = pkg.PhaseAssessment
}

func (s *Session) resetExerciseState() {
	s.tracker = NewTracker()
	s.latestSpec = nil
	s.lastTurnHadSpec = false
	s.completionPromptSent = false
}

// afterAssistantTurn runs the extractor and dedup bookkeeping against the
// most recently appended assistant turn. Extraction only applies to the
// breathing exercise; a newly extracted spec re-arms the completion check.
func (s *Session) afterAssistantTurn(reply string) {
	s.lastTurnHadSpec = false
	if s.exercise != pkg.ExerciseBreathing {
		return
	}
	spec, ok := ExtractBreathingSpec(reply)
	if !ok {
		return
	}
	s.tracker.Record(spec.ExerciseName)
	s.latestSpec = spec
	s.lastTurnHadSpec = true
	s.completionPromptSent = false
}

// LatestBreathingSpec returns the most recently extracted spec, or nil.
func (s *Session) LatestBreathingSpec() *pkg.BreathingSpec {
	if s.latestSpec == nil {
		return nil
	}
	spec := *s.latestSpec
	return &spec
}

// View returns the read-only projection handed to the UI.
func (s *Session) View() pkg.SessionView {
	view := pkg.SessionView{
		SessionID:            s.id,
		Phase:                s.phase,
		Exercise:             s.exercise,
		PersonaName:          s.conv.PersonaName(),
		Transcript:           s.conv.Transcript(),
		CompletionPromptSent: s.completionPromptSent,
	}
	if s.assessment != nil {
		record := *s.assessment
		view.Assessment = &record
	}
	if offered := s.tracker.All(); len(offered) > 0 {
		view.OfferedExercises = offered
	}
	view.LatestBreathingSpec = s.LatestBreathingSpec()
	return view
}
