package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	s := NewService(2)

	assert.True(t, s.Add(SourceTerminal, "one"))
	assert.True(t, s.Add(SourceVoice, "two"))
	assert.False(t, s.Add(SourceWeb, "three"))

	msg := <-s.Channel()
	assert.Equal(t, Message{Source: SourceTerminal, Text: "one"}, msg)
}

func TestShutdown(t *testing.T) {
	s := NewService(2)
	s.Add(SourceTerminal, "pending")

	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())
	assert.False(t, s.Add(SourceTerminal, "late"))

	msg, ok := <-s.Channel()
	assert.True(t, ok)
	assert.Equal(t, "pending", msg.Text)

	_, ok = <-s.Channel()
	assert.False(t, ok)
}
