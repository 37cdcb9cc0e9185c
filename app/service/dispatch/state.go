package dispatch

import (
	"sync"

	"github.com/samber/do"
)

// State holds the two conversation flags. Only the dispatcher changes them,
// always while planning a turn.
type State struct {
	mu                   sync.Mutex
	awaitingConfirmation bool
	quietMode            bool
}

func NewState(_ *do.Injector) (*State, error) {
	return &State{}, nil
}

func (s *State) Quiet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.quietMode
}

func (s *State) AwaitingConfirmation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.awaitingConfirmation
}
