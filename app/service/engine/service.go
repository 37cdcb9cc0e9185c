package engine

import (
	"context"
	"friday/app/service/dispatch"
	"friday/app/service/queue"
	"friday/app/service/speaker"
	"friday/app/service/transcript"
	"friday/app/service/voice"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/do"
	"github.com/sourcegraph/conc"
)

const AppCancelName = "appCancel"

var _ do.Shutdownable = (*Service)(nil)

type Planner interface {
	Plan(raw string) dispatch.Turn
}

type Voice interface {
	Stop()
	Continuous() bool
}

// Service plans queued utterances one at a time and runs every planned
// turn in its own tracked goroutine.
type Service struct {
	planner    Planner
	queue      *queue.Service
	speaker    *speaker.Service
	transcript *transcript.Service
	voice      Voice
	cancelApp  context.CancelFunc

	tasks    conc.WaitGroup
	inFlight atomic.Int32
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*dispatch.Service](di),
		do.MustInvoke[*queue.Service](di),
		do.MustInvoke[*speaker.Service](di),
		do.MustInvoke[*transcript.Service](di),
		do.MustInvoke[*voice.Service](di),
		do.MustInvokeNamed[context.CancelFunc](di, AppCancelName),
	), nil
}

func NewService(
	planner Planner,
	queueSvc *queue.Service,
	speakerSvc *speaker.Service,
	transcriptSvc *transcript.Service,
	voiceSvc Voice,
	cancelApp context.CancelFunc,
) *Service {
	return &Service{
		planner:    planner,
		queue:      queueSvc,
		speaker:    speakerSvc,
		transcript: transcriptSvc,
		voice:      voiceSvc,
		cancelApp:  cancelApp,
	}
}

func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.queue.Channel():
			if !ok {
				return
			}

			s.process(ctx, msg)
		}
	}
}

func (s *Service) process(ctx context.Context, msg queue.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	s.transcript.Add(transcript.Entry{
		Source: transcript.SourceUser,
		Text:   text,
	})
	s.transcript.SetStatus("Processing Command...")

	turn := s.planner.Plan(text)

	slog.Info("Planned turn",
		"source", msg.Source,
		"text", text,
		"rule", turn.Rule)

	if turn.Exit {
		turn.Run(ctx, s.speaker.Emitter(ctx))
		s.voice.Stop()
		s.cancelApp()
		return
	}

	s.inFlight.Add(1)
	s.tasks.Go(func() {
		start := time.Now()
		turn.Run(ctx, s.speaker.Emitter(ctx))

		if s.inFlight.Add(-1) == 0 {
			s.transcript.SetStatus(s.idleStatus())
		}

		slog.Debug("Turn finished",
			"rule", turn.Rule,
			"duration", time.Since(start))
	})
}

func (s *Service) idleStatus() string {
	if s.voice.Continuous() {
		return voice.StatusContinuous
	}

	return voice.StatusReady
}

// Shutdown waits for running turns.
func (s *Service) Shutdown() error {
	if r := s.tasks.WaitAndRecover(); r != nil {
		slog.Error("Turn panicked", "error", r.AsError())
		return r.AsError()
	}

	return nil
}
