package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocket-wellness/pkg"
)

func submitTestAssessment(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.SubmitAssessment(2, []string{"Tight chest or breathing"}, "Physical sensations"))
}

// startBreathingChat walks a fresh session into the breathing chat phase.
func startBreathingChat(t *testing.T, client *fakeClient) *Session {
	t.Helper()
	s := NewSession("s1", client)
	submitTestAssessment(t, s)
	require.NoError(t, s.ChooseExercise(pkg.ExerciseBreathing))
	_, err := s.SubmitSetup(context.Background(), pkg.SetupFields{})
	require.NoError(t, err)
	return s
}

func TestSession_EndToEndBreathing(t *testing.T) {
	client := &fakeClient{replies: []string{"Hey, I'm glad you're here. Let's start with something simple."}}
	s := NewSession("s1", client)
	assert.Equal(t, pkg.PhaseAssessment, s.Phase())

	submitTestAssessment(t, s)
	assert.Equal(t, pkg.PhaseSelection, s.Phase())

	require.NoError(t, s.ChooseExercise(pkg.ExerciseBreathing))
	assert.Equal(t, pkg.PhaseSetup, s.Phase())

	opening, err := s.SubmitSetup(context.Background(), pkg.SetupFields{})
	require.NoError(t, err)
	assert.Equal(t, pkg.PhaseChat, s.Phase())

	// system turn + opening assistant turn, and the opening is still
	// small talk: no structured block yet. The seed instruction is not
	// transcripted.
	view := s.View()
	require.Len(t, view.Transcript, 2)
	assert.Equal(t, pkg.RoleSystem, view.Transcript[0].Role)
	assert.Equal(t, pkg.RoleAssistant, view.Transcript[1].Role)
	_, hasSpec := ExtractBreathingSpec(opening)
	assert.False(t, hasSpec)
	assert.Nil(t, view.LatestBreathingSpec)
	assert.Equal(t, BreathingGuideName, view.PersonaName)
}

func TestSession_PhaseSequencing(t *testing.T) {
	s := NewSession("s1", &fakeClient{})

	var pErr *PhaseError
	_, err := s.SendMessage(context.Background(), "hi")
	require.ErrorAs(t, err, &pErr)

	require.ErrorAs(t, s.ChooseExercise(pkg.ExerciseBreathing), &pErr)
	require.ErrorAs(t, s.Back(), &pErr)
	require.ErrorAs(t, s.ClearChat(), &pErr)
	require.ErrorAs(t, s.ChangeExercise(), &pErr)

	// a second assessment after the first is rejected too
	submitTestAssessment(t, s)
	require.ErrorAs(t, s.SubmitAssessment(3, []string{"Numbness"}, "Physical sensations"), &pErr)
}

func TestSession_InvalidAssessmentStaysPut(t *testing.T) {
	s := NewSession("s1", &fakeClient{})
	err := s.SubmitAssessment(3, nil, "Physical sensations")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, pkg.PhaseAssessment, s.Phase())
	assert.Nil(t, s.View().Assessment)
}

func TestSession_BackDiscardsSelection(t *testing.T) {
	s := NewSession("s1", &fakeClient{})
	submitTestAssessment(t, s)
	require.NoError(t, s.ChooseExercise(pkg.ExerciseBodyScan))
	require.NoError(t, s.Back())

	assert.Equal(t, pkg.PhaseSelection, s.Phase())
	assert.Empty(t, s.View().Exercise)
}

func TestSession_SetupValidationStaysInSetup(t *testing.T) {
	s := NewSession("s1", &fakeClient{})
	submitTestAssessment(t, s)
	require.NoError(t, s.ChooseExercise(pkg.ExerciseEmptyChair))

	_, err := s.SubmitSetup(context.Background(), pkg.SetupFields{Who: "father"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, pkg.PhaseSetup, s.Phase())
}

func TestSession_SetupCompletionFailureStaysInSetup(t *testing.T) {
	client := &fakeClient{err: errBoom}
	s := NewSession("s1", client)
	submitTestAssessment(t, s)
	require.NoError(t, s.ChooseExercise(pkg.ExerciseBreathing))

	_, err := s.SubmitSetup(context.Background(), pkg.SetupFields{})
	var cf *CompletionFailure
	require.ErrorAs(t, err, &cf)
	assert.Equal(t, pkg.PhaseSetup, s.Phase())
	assert.Empty(t, s.View().Transcript)

	// retry succeeds with a clean transcript
	client.err = nil
	client.replies = []string{"welcome"}
	_, err = s.SubmitSetup(context.Background(), pkg.SetupFields{})
	require.NoError(t, err)
	assert.Equal(t, pkg.PhaseChat, s.Phase())
	assert.Len(t, s.View().Transcript, 2)
}

func TestSession_SpecExtractionAndDedup(t *testing.T) {
	client := &fakeClient{replies: []string{"hello", specReply}}
	s := startBreathingChat(t, client)

	_, err := s.SendMessage(context.Background(), "I'm ready")
	require.NoError(t, err)

	view := s.View()
	require.NotNil(t, view.LatestBreathingSpec)
	assert.Equal(t, "Box breathing", view.LatestBreathingSpec.ExerciseName)
	assert.Equal(t, 300, view.LatestBreathingSpec.Duration)
	assert.Equal(t, []string{"Box breathing"}, view.OfferedExercises)
}

func TestSession_CompletionPromptOneShot(t *testing.T) {
	client := &fakeClient{replies: []string{"hello", specReply, "How do you feel now?"}}
	s := startBreathingChat(t, client)

	// not actionable before any spec is extracted
	fired, err := s.MarkExerciseFinished(context.Background())
	require.NoError(t, err)
	assert.False(t, fired)

	_, err = s.SendMessage(context.Background(), "let's go")
	require.NoError(t, err)

	fired, err = s.MarkExerciseFinished(context.Background())
	require.NoError(t, err)
	assert.True(t, fired)
	assert.True(t, s.View().CompletionPromptSent)

	// the synthetic instruction is transcripted as a user turn and carries
	// the no-repeat list
	transcript := s.View().Transcript
	syntheticTurn := transcript[len(transcript)-2]
	assert.Equal(t, pkg.RoleUser, syntheticTurn.Role)
	assert.Contains(t, syntheticTurn.Content, "Box breathing")

	// second fire before a new spec is a no-op
	before := len(s.View().Transcript)
	fired, err = s.MarkExerciseFinished(context.Background())
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Len(t, s.View().Transcript, before)
}

func TestSession_CompletionFlagRearmsOnNewSpec(t *testing.T) {
	client := &fakeClient{replies: []string{"hello", specReply, "How do you feel?", secondSpecReply, "Feeling better?"}}
	s := startBreathingChat(t, client)

	_, err := s.SendMessage(context.Background(), "ready")
	require.NoError(t, err)
	fired, err := s.MarkExerciseFinished(context.Background())
	require.NoError(t, err)
	require.True(t, fired)

	// a new spec arrives: flag resets, second completion round is possible
	_, err = s.SendMessage(context.Background(), "not better yet")
	require.NoError(t, err)
	view := s.View()
	assert.False(t, view.CompletionPromptSent)
	assert.Equal(t, "4-7-8 breathing", view.LatestBreathingSpec.ExerciseName)
	assert.Equal(t, []string{"Box breathing", "4-7-8 breathing"}, view.OfferedExercises)

	fired, err = s.MarkExerciseFinished(context.Background())
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestSession_MarkFinishedNoopForOtherExercises(t *testing.T) {
	client := &fakeClient{replies: []string{"welcome"}}
	s := NewSession("s1", client)
	submitTestAssessment(t, s)
	require.NoError(t, s.ChooseExercise(pkg.ExerciseReflection))
	_, err := s.SubmitSetup(context.Background(), pkg.SetupFields{})
	require.NoError(t, err)

	fired, err := s.MarkExerciseFinished(context.Background())
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestSession_ClearChatKeepsPersona(t *testing.T) {
	client := &fakeClient{replies: []string{"hello", specReply}}
	s := startBreathingChat(t, client)
	_, err := s.SendMessage(context.Background(), "ready")
	require.NoError(t, err)

	require.NoError(t, s.ClearChat())

	view := s.View()
	assert.Equal(t, pkg.PhaseChat, view.Phase)
	assert.Equal(t, BreathingGuideName, view.PersonaName)
	require.Len(t, view.Transcript, 1)
	assert.Equal(t, pkg.RoleSystem, view.Transcript[0].Role)
	assert.Empty(t, view.OfferedExercises)
	assert.Nil(t, view.LatestBreathingSpec)
	assert.False(t, view.CompletionPromptSent)
}

func TestSession_ChangeExerciseIsDestructive(t *testing.T) {
	client := &fakeClient{replies: []string{"hello", specReply}}
	s := startBreathingChat(t, client)
	_, err := s.SendMessage(context.Background(), "ready")
	require.NoError(t, err)

	require.NoError(t, s.ChangeExercise())

	view := s.View()
	assert.Equal(t, pkg.PhaseSelection, view.Phase)
	assert.Empty(t, view.Exercise)
	assert.Empty(t, view.PersonaName)
	assert.Empty(t, view.Transcript)
	assert.Empty(t, view.OfferedExercises)
	// assessment survives an exercise change
	require.NotNil(t, view.Assessment)
	assert.Equal(t, 2, view.Assessment.MoodRating)
}

func TestSession_StartOverResetsEverything(t *testing.T) {
	client := &fakeClient{replies: []string{"hello"}}
	s := startBreathingChat(t, client)

	s.StartOver()

	view := s.View()
	assert.Equal(t, pkg.PhaseAssessment, view.Phase)
	assert.Nil(t, view.Assessment)
	assert.Empty(t, view.Exercise)
	assert.Empty(t, view.PersonaName)
	assert.Empty(t, view.Transcript)
}

func TestSession_SendFailurePreservesUserTurn(t *testing.T) {
	client := &fakeClient{replies: []string{"hello"}}
	s := startBreathingChat(t, client)

	client.err = errBoom
	_, err := s.SendMessage(context.Background(), "still there?")
	var cf *CompletionFailure
	require.ErrorAs(t, err, &cf)

	transcript := s.View().Transcript
	last := transcript[len(transcript)-1]
	assert.Equal(t, pkg.RoleUser, last.Role)
	assert.Equal(t, "still there?", last.Content)
	assert.Equal(t, pkg.PhaseChat, s.Phase())
}

func TestSession_EmptyMessageRejected(t *testing.T) {
	client := &fakeClient{replies: []string{"hello"}}
	s := startBreathingChat(t, client)

	_, err := s.SendMessage(context.Background(), "   ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestSession_ChooseUnknownExercise(t *testing.T) {
	s := NewSession("s1", &fakeClient{})
	submitTestAssessment(t, s)
	assert.ErrorIs(t, s.ChooseExercise(pkg.Exercise("juggling")), ErrUnsupportedExercise)
	assert.Equal(t, pkg.PhaseSelection, s.Phase())
}
