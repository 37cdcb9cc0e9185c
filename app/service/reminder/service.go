package reminder

import (
	"fmt"
	"friday/app/client/host"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Announcer delivers the reminder text to the user.
type Announcer interface {
	Announce(text string)
}

type Notifier interface {
	Notify(title, message string) error
}

type Timer interface {
	Stop() bool
}

type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Service keeps one-shot reminder timers. Pending reminders are dropped on
// shutdown, nothing survives a restart.
type Service struct {
	announcer Announcer
	notifier  Notifier
	clock     Clock
	title     string

	mu      sync.Mutex
	pending map[uint64]Timer
	nextID  uint64
	closed  bool
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[Announcer](di),
		do.MustInvoke[*host.Client](di),
		systemClock{},
	), nil
}

func NewService(announcer Announcer, notifier Notifier, clock Clock) *Service {
	return &Service{
		announcer: announcer,
		notifier:  notifier,
		clock:     clock,
		title:     "Reminder",
		pending:   make(map[uint64]Timer),
	}
}

// Schedule returns immediately, message is delivered after delay.
func (s *Service) Schedule(delay time.Duration, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		slog.Warn("Reminder dropped, service is shut down", "message", message)
		return
	}

	s.nextID++
	id := s.nextID

	s.pending[id] = s.clock.AfterFunc(delay, func() {
		s.fire(id, message)
	})

	slog.Info("Reminder scheduled", "id", id, "delay", delay, "message", message)
}

func (s *Service) fire(id uint64, message string) {
	s.mu.Lock()
	_, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()

	if !ok {
		return
	}

	s.announcer.Announce(fmt.Sprintf("BEEP BEEP BEEP! Speaking your reminder now: reminding you **%s**", message))

	if err := s.notifier.Notify(s.title, message); err != nil {
		slog.Warn("Reminder notification failed", "id", id, "error", err)
	}
}

func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, timer := range s.pending {
		timer.Stop()
		delete(s.pending, id)
	}

	return nil
}
