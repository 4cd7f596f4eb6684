package core

import (
	"fmt"
	"strings"

	"pocket-wellness/pkg"
)

// PersonaContext is the composed result of exercise setup: the persona's
// display name, the system instruction that frames the whole conversation,
// and the opening instruction that seeds the first assistant turn. It is
// created whole and replaced whole; it is never patched.
type PersonaContext struct {
	Name               string
	SystemInstruction  string
	OpeningInstruction string
}

// Compose builds the persona context for an exercise from the assessment
// record and the exercise-specific setup fields. priorExercises is the
// dedup tracker's current list; for breathing it is interpolated into the
// system instruction so the model is told up front what not to repeat.
//
// Compose is pure: it fails with a ValidationError on missing setup fields
// and ErrUnsupportedExercise on an unknown tag, and never mutates anything.
func Compose(exercise pkg.Exercise, assessment *pkg.AssessmentRecord, setup pkg.SetupFields, priorExercises []string) (*PersonaContext, error) {
	if assessment == nil {
		return nil, &ValidationError{Field: "assessment", Reason: "check-in must be completed first"}
	}

	mood := moodDescription(assessment.MoodRating)
	sensations := sensationList(assessment)
	attention := assessment.AttentionFocus

	switch exercise {
	case pkg.ExerciseEmptyChair:
		if err := requireSetup(map[string]string{
			"who":             setup.Who,
			"characteristics": setup.Characteristics,
			"topic":           setup.Topic,
			"situation":       setup.Situation,
		}); err != nil {
			return nil, err
		}
		return &PersonaContext{
			Name: setup.Who,
			SystemInstruction: fmt.Sprintf(emptyChairSystemTemplate,
				setup.Who, mood, assessment.MoodRating, sensations, attention,
				setup.Characteristics, setup.Topic, setup.Situation, setup.Who),
			OpeningInstruction: fmt.Sprintf(emptyChairOpeningTemplate,
				setup.Who, setup.Topic, setup.Situation),
		}, nil

	case pkg.ExerciseBreathing:
		return &PersonaContext{
			Name: BreathingGuideName,
			SystemInstruction: fmt.Sprintf(breathingSystemTemplate,
				mood, assessment.MoodRating, sensations, attention,
				strings.Join(breathingTechniques, ", "),
				priorExerciseClause(priorExercises)),
			OpeningInstruction: fmt.Sprintf(breathingOpeningTemplate,
				mood, sensations, attention),
		}, nil

	case pkg.ExerciseBodyScan:
		if err := requireSetup(map[string]string{
			"uncomfortable_area": setup.UncomfortableArea,
			"body_feeling":       setup.BodyFeeling,
		}); err != nil {
			return nil, err
		}
		return &PersonaContext{
			Name: BodyScanGuideName,
			SystemInstruction: fmt.Sprintf(bodyScanSystemTemplate,
				mood, assessment.MoodRating, sensations, attention,
				setup.UncomfortableArea, setup.BodyFeeling, setup.UncomfortableArea),
			OpeningInstruction: fmt.Sprintf(bodyScanOpeningTemplate,
				setup.UncomfortableArea, setup.BodyFeeling, mood, sensations),
		}, nil

	case pkg.ExerciseReflection:
		return &PersonaContext{
			Name: ReflectionGuideName,
			SystemInstruction: fmt.Sprintf(reflectionSystemTemplate,
				mood, assessment.MoodRating, sensations, attention),
			OpeningInstruction: fmt.Sprintf(reflectionOpeningTemplate,
				mood, attention),
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedExercise, exercise)
}

// priorExerciseClause renders the already-offered list appended to the
// breathing system prompt. Empty when the tracker has nothing yet, which is
// the normal case for a freshly composed persona.
func priorExerciseClause(prior []string) string {
	if len(prior) == 0 {
		return ""
	}
	return fmt.Sprintf("\n6. You have ALREADY offered these exercises and must never offer them again: %s", strings.Join(prior, ", "))
}

func requireSetup(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: name, Reason: "required for this exercise"}
		}
	}
	return nil
}
