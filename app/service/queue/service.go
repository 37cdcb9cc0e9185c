package queue

import (
	"log/slog"
	"sync"

	"github.com/samber/do"
)

const bufferSize = 64

const (
	SourceTerminal = "terminal"
	SourceWeb      = "web"
	SourceVoice    = "voice"
	SourceMCP      = "mcp"
)

var _ do.Shutdownable = (*Service)(nil)

// Service is the single inbox of utterances. Every shell and the voice loop
// feed it, the engine drains it.
type Service struct {
	queue chan Message

	mu     sync.RWMutex
	closed bool
}

type Message struct {
	Source string
	Text   string
}

func New(_ *do.Injector) (*Service, error) {
	return NewService(bufferSize), nil
}

func NewService(size int) *Service {
	return &Service{
		queue: make(chan Message, size),
	}
}

// Add enqueues without blocking. It reports false when the message was
// dropped because the queue is full or closed.
func (s *Service) Add(source, text string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.queue <- Message{Source: source, Text: text}:
		return true
	default:
		slog.Warn("Message queue is full", "source", source)
		return false
	}
}

func (s *Service) Channel() <-chan Message {
	return s.queue
}

func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.queue)
	}

	return nil
}
