// Package confirm asks the user a yes/no question out of band and blocks the
// asking action until a shell answers it.
package confirm

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/samber/do"
)

var (
	ErrBusy           = errors.New("another confirmation is pending")
	ErrNothingPending = errors.New("no confirmation is pending")
)

var yesWords = []string{"yes", "y", "yeah", "yep", "sure", "confirm", "ok", "okay"}

type Question struct {
	ID   uint64 `json:"id"`
	Text string `json:"text"`
}

type request struct {
	question Question
	answer   chan bool
}

// Gate holds at most one open question at a time.
type Gate struct {
	mu      sync.Mutex
	pending *request
	nextID  uint64
}

func New(_ *do.Injector) (*Gate, error) {
	return &Gate{}, nil
}

// Ask blocks until Answer is called or ctx is done.
func (g *Gate) Ask(ctx context.Context, text string) (bool, error) {
	g.mu.Lock()
	if g.pending != nil {
		g.mu.Unlock()
		return false, ErrBusy
	}

	g.nextID++
	req := &request{
		question: Question{ID: g.nextID, Text: text},
		answer:   make(chan bool, 1),
	}
	g.pending = req
	g.mu.Unlock()

	slog.Debug("Confirmation requested", "id", req.question.ID, "question", text)

	select {
	case ok := <-req.answer:
		return ok, nil
	case <-ctx.Done():
		g.mu.Lock()
		if g.pending == req {
			g.pending = nil
		}
		g.mu.Unlock()

		return false, ctx.Err()
	}
}

func (g *Gate) Pending() (Question, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return Question{}, false
	}

	return g.pending.question, true
}

func (g *Gate) Answer(yes bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return ErrNothingPending
	}

	g.pending.answer <- yes
	g.pending = nil

	return nil
}

// IsYes reports whether a typed answer means yes. Anything else is a no.
func IsYes(text string) bool {
	return slices.Contains(yesWords, strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!")))
}
