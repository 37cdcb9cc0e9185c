package confirm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func waitPending(t *testing.T, g *Gate) Question {
	t.Helper()

	var q Question
	require.Eventually(t, func() bool {
		var ok bool
		q, ok = g.Pending()
		return ok
	}, time.Second, time.Millisecond)

	return q
}

func TestAsk_Answered(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, want := range []bool{true, false} {
		g := &Gate{}
		result := make(chan bool)

		go func() {
			ok, err := g.Ask(context.Background(), "restart?")
			assert.NoError(t, err)
			result <- ok
		}()

		q := waitPending(t, g)
		assert.Equal(t, "restart?", q.Text)

		require.NoError(t, g.Answer(want))
		assert.Equal(t, want, <-result)

		_, ok := g.Pending()
		assert.False(t, ok)
	}
}

func TestAsk_Busy(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := &Gate{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = g.Ask(context.Background(), "first")
	}()
	waitPending(t, g)

	_, err := g.Ask(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, g.Answer(false))
	<-done
}

func TestAsk_Cancelled(t *testing.T) {
	g := &Gate{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ok, err := g.Ask(ctx, "shut down?")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, pending := g.Pending()
	assert.False(t, pending)
	assert.ErrorIs(t, g.Answer(true), ErrNothingPending)
}

func TestIsYes(t *testing.T) {
	for _, text := range []string{"yes", " Y ", "Yeah!", "sure.", "OK"} {
		assert.True(t, IsYes(text), text)
	}
	for _, text := range []string{"no", "", "yes please", "nope"} {
		assert.False(t, IsYes(text), text)
	}
}
