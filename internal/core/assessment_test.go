package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAssessment_Valid(t *testing.T) {
	record, err := SubmitAssessment(2, []string{"Tight chest or breathing"}, "Physical sensations")
	require.NoError(t, err)
	assert.Equal(t, 2, record.MoodRating)
	assert.Equal(t, []string{"Tight chest or breathing"}, record.BodySensations)
	assert.Equal(t, "Physical sensations", record.AttentionFocus)
}

func TestSubmitAssessment_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		mood       int
		sensations []string
		attention  string
		field      string
	}{
		{"empty sensations", 3, nil, "Physical sensations", "body_sensations"},
		{"unknown sensation", 3, []string{"Itchy elbows"}, "Physical sensations", "body_sensations"},
		{"unset attention", 3, []string{"Numbness"}, "", "attention_focus"},
		{"unknown attention", 3, []string{"Numbness"}, "The weather", "attention_focus"},
		{"mood too low", 0, []string{"Numbness"}, "Physical sensations", "mood_rating"},
		{"mood too high", 6, []string{"Numbness"}, "Physical sensations", "mood_rating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := SubmitAssessment(tt.mood, tt.sensations, tt.attention)
			assert.Nil(t, record)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestSubmitAssessment_CopiesSensations(t *testing.T) {
	input := []string{"Numbness", "Palpitations"}
	record, err := SubmitAssessment(4, input, "Personal care or self-care")
	require.NoError(t, err)

	input[0] = "mutated"
	assert.Equal(t, "Numbness", record.BodySensations[0])
}
