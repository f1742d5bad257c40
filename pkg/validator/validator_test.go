package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreeText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"cyrillic phrase", "Головная боль", true},
		{"with punctuation and digits", "Температура 38,5!", true},
		{"yo letters", "Ёлка, ёж", true},
		{"latin letters", "headache", false},
		{"mixed scripts", "Боль severe", false},
		{"empty", "", false},
		{"newline", "Боль\n", false},
		{"underscore", "Боль_", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FreeText(tc.input))
		})
	}
}

func TestValidateComplaint(t *testing.T) {
	assert.NoError(t, ValidateComplaint("Головная боль"))
	assert.Error(t, ValidateComplaint(""))
	assert.Error(t, ValidateComplaint("latin text"))

	// 500 runes is the limit, 501 is over it.
	assert.NoError(t, ValidateComplaint(strings.Repeat("а", 500)))
	assert.Error(t, ValidateComplaint(strings.Repeat("а", 501)))
}

func TestValidateReadings(t *testing.T) {
	assert.NoError(t, ValidateReadings("Принимать парацетамол"))
	assert.Error(t, ValidateReadings(""))
	assert.Error(t, ValidateReadings("take aspirin"))
}
