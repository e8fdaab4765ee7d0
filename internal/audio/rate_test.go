package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  float64
	}{
		{"", 1.0},
		{"-20%", 0.8},
		{"+10%", 1.1},
		{"0%", 1.0},
		{"0.75", 0.75},
		{" 1.5 ", 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRate(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseRate_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"fast", "-20", "-90%", "+400%", "%"} {
		_, err := ParseRate(input)
		assert.Error(t, err, input)
	}
}
