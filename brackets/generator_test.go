package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clubpoint/bracket-system/models"
)

func strPtr(s string) *string { return &s }

func TestParseSettings(t *testing.T) {
	testCases := []struct {
		name     string
		raw      *string
		expected Settings
	}{
		{"nil", nil, Settings{BestOf: 3}},
		{"empty", strPtr(""), Settings{BestOf: 3}},
		{"malformed", strPtr("{not json"), Settings{BestOf: 3}},
		{"best of five", strPtr(`{"best_of":5}`), Settings{BestOf: 5}},
		{"even best of ignored", strPtr(`{"best_of":4}`), Settings{BestOf: 3}},
		{"rounds and third place", strPtr(`{"rounds":6,"third_place":true}`), Settings{BestOf: 3, Rounds: 6, ThirdPlace: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseSettings(tc.raw))
		})
	}
}

func TestForFormatCoversEveryFormat(t *testing.T) {
	for _, format := range []models.BracketFormat{
		models.FormatRoundRobin,
		models.FormatSingleElimination,
		models.FormatDoubleElimination,
		models.FormatAmericano,
	} {
		gen, err := ForFormat(format)
		assert.NoError(t, err, "format %s", format)
		assert.NotNil(t, gen)
	}

	_, err := ForFormat(models.BracketFormat("swiss"))
	assert.ErrorIs(t, err, ErrUnsupportedConfiguration)
}
