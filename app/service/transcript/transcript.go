package transcript

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/do"
)

const (
	historySize      = 200
	subscriberBuffer = 64
)

const (
	SourceUser      = "user"
	SourceAssistant = "assistant"
	SourceDebug     = "debug"
)

type Entry struct {
	Seq      uint64    `json:"seq"`
	Source   string    `json:"source"`
	Text     string    `json:"text"`
	FullText string    `json:"fullText,omitempty"`
	IsError  bool      `json:"isError,omitempty"`
	Time     time.Time `json:"time"`
}

// Service is the bounded conversation log shown by the shells, plus the
// one-line status of the assistant.
type Service struct {
	mu          sync.RWMutex
	entries     []Entry
	seq         uint64
	status      string
	subscribers map[chan Entry]struct{}
	now         func() time.Time
}

func New(_ *do.Injector) (*Service, error) {
	return NewService(), nil
}

func NewService() *Service {
	return &Service{
		status:      "Ready",
		subscribers: make(map[chan Entry]struct{}),
		now:         time.Now,
	}
}

func (s *Service) Add(entry Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	entry.Seq = s.seq
	entry.Time = s.now()

	if len(s.entries) >= historySize {
		s.entries = append(s.entries[1:], entry)
	} else {
		s.entries = append(s.entries, entry)
	}

	for ch := range s.subscribers {
		select {
		case ch <- entry:
		default:
			slog.Warn("Transcript subscriber is full, entry dropped", "seq", entry.Seq)
		}
	}

	return entry
}

// Since returns the retained entries with a sequence number above seq.
func (s *Service) Since(seq uint64) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, entry := range s.entries {
		if entry.Seq > seq {
			return append([]Entry(nil), s.entries[i:]...)
		}
	}

	return nil
}

func (s *Service) LastSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.seq
}

func (s *Service) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}

func (s *Service) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// Subscribe streams retained entries after since, then new entries until
// cancel is called.
func (s *Service) Subscribe(since uint64) (<-chan Entry, func()) {
	ch := make(chan Entry, subscriberBuffer)

	s.mu.Lock()
	backlog := s.entries
	if len(backlog) > subscriberBuffer {
		backlog = backlog[len(backlog)-subscriberBuffer:]
	}
	for _, entry := range backlog {
		if entry.Seq > since {
			ch <- entry
		}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Format renders entries as plain text lines, long forms included.
func Format(entries []Entry) string {
	if len(entries) == 0 {
		return "No messages"
	}

	var builder strings.Builder

	for _, entry := range entries {
		text := entry.Text
		if entry.FullText != "" {
			text = entry.FullText
		}

		builder.WriteString(fmt.Sprintf("%s - %s: %s\n", entry.Time.Format("15:04:05"), entry.Source, text))
	}

	return builder.String()
}
