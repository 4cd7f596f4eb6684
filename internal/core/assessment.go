package core

import (
	"pocket-wellness/pkg"
)

// SubmitAssessment validates the check-in answers and returns the immutable
// assessment record. Sensations must be a non-empty subset of the catalog
// and the attention focus must be one of the known options.
func SubmitAssessment(moodRating int, bodySensations []string, attentionFocus string) (*pkg.AssessmentRecord, error) {
	if moodRating < 1 || moodRating > 5 {
		return nil, &ValidationError{Field: "mood_rating", Reason: "must be between 1 and 5"}
	}
	if len(bodySensations) == 0 {
		return nil, &ValidationError{Field: "body_sensations", Reason: "select at least one sensation"}
	}
	for _, s := range bodySensations {
		if !knownTag(pkg.BodySensations, s) {
			return nil, &ValidationError{Field: "body_sensations", Reason: "unknown sensation " + s}
		}
	}
	if attentionFocus == "" {
		return nil, &ValidationError{Field: "attention_focus", Reason: "select where your attention is"}
	}
	if !knownTag(pkg.AttentionOptions, attentionFocus) {
		return nil, &ValidationError{Field: "attention_focus", Reason: "unknown option " + attentionFocus}
	}

	sensations := make([]string, len(bodySensations))
	copy(sensations, bodySensations)
	return &pkg.AssessmentRecord{
		MoodRating:     moodRating,
		BodySensations: sensations,
		AttentionFocus: attentionFocus,
	}, nil
}

func knownTag(catalog []string, tag string) bool {
	for _, t := range catalog {
		if t == tag {
			return true
		}
	}
	return false
}
