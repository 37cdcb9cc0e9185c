package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text    string
		amount  int
		unit    string
		delay   time.Duration
		message string
	}{
		{"remind me to call Mom in 5 minutes", 5, "minutes", 5 * time.Minute, "call Mom"},
		{"set a timer for 10 minutes", 10, "minutes", 10 * time.Minute, DefaultMessage},
		{"remind me that the oven is on after 1 hour", 1, "hour", time.Hour, "the oven is on"},
		{"Remind me to stretch in 30 Seconds please", 30, "seconds", 30 * time.Second, "stretch please"},
		{"remind me to in 2 hours", 2, "hours", 2 * time.Hour, DefaultMessage},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			req, err := Parse(tt.text)
			require.NoError(t, err)

			assert.Equal(t, tt.amount, req.Amount)
			assert.Equal(t, tt.unit, req.Unit)
			assert.Equal(t, tt.delay, req.Delay)
			assert.Equal(t, tt.message, req.Message)
		})
	}
}

func TestParse_NoDuration(t *testing.T) {
	for _, text := range []string{"remind me to call mom", "set a timer", "start timer for five minutes"} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrNoDuration, text)
	}
}

func TestParse_Overflow(t *testing.T) {
	_, err := Parse("set a timer for 99999999999999 hours")
	assert.ErrorIs(t, err, ErrNoDuration)
}
