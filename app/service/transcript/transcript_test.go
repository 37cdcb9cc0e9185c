package transcript

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_SequenceAndBound(t *testing.T) {
	s := NewService()

	for i := 0; i < historySize+5; i++ {
		s.Add(Entry{Source: SourceUser, Text: fmt.Sprint(i)})
	}

	all := s.Since(0)
	require.Len(t, all, historySize)
	assert.Equal(t, uint64(6), all[0].Seq)
	assert.Equal(t, "5", all[0].Text)
	assert.Equal(t, uint64(historySize+5), s.LastSeq())
}

func TestSince(t *testing.T) {
	s := NewService()
	s.Add(Entry{Source: SourceUser, Text: "a"})
	s.Add(Entry{Source: SourceAssistant, Text: "b"})
	s.Add(Entry{Source: SourceAssistant, Text: "c"})

	got := s.Since(1)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Text)
	assert.Empty(t, s.Since(3))
}

func TestSubscribe(t *testing.T) {
	s := NewService()
	ch, cancel := s.Subscribe(0)

	s.Add(Entry{Source: SourceAssistant, Text: "hello"})

	select {
	case entry := <-ch:
		assert.Equal(t, "hello", entry.Text)
	case <-time.After(time.Second):
		t.Fatal("no entry received")
	}

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	s.Add(Entry{Text: "after cancel"})
}

func TestSubscribe_ReplaysBacklog(t *testing.T) {
	s := NewService()
	s.Add(Entry{Source: SourceUser, Text: "seen"})
	s.Add(Entry{Source: SourceAssistant, Text: "greeting"})

	ch, cancel := s.Subscribe(1)
	defer cancel()

	s.Add(Entry{Source: SourceAssistant, Text: "live"})

	var got []string
	for len(got) < 2 {
		select {
		case entry := <-ch:
			got = append(got, entry.Text)
		case <-time.After(time.Second):
			t.Fatal("no entry received")
		}
	}

	assert.Equal(t, []string{"greeting", "live"}, got)
}

func TestStatus(t *testing.T) {
	s := NewService()
	assert.Equal(t, "Ready", s.Status())

	s.SetStatus("Listening")
	assert.Equal(t, "Listening", s.Status())
}

func TestFormat(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

	got := Format([]Entry{
		{Source: SourceUser, Text: "read notes", Time: at},
		{Source: SourceAssistant, Text: "Here are your notes", FullText: "1\n2", Time: at},
	})

	assert.Equal(t, "09:30:00 - user: read notes\n09:30:00 - assistant: 1\n2\n", got)
	assert.Equal(t, "No messages", Format(nil))
}
