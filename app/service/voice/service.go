package voice

import (
	"context"
	"errors"
	"fmt"
	"friday/app/client/speechkit"
	"friday/app/config"
	"friday/app/service/queue"
	"friday/app/service/speaker"
	"friday/app/service/transcript"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/do"
)

const (
	StatusReady      = "Ready"
	StatusContinuous = "Listening for Command (Continuous Mode)"
)

var _ do.Shutdownable = (*Service)(nil)

type Recognizer interface {
	Recognize(ctx context.Context, audio <-chan []byte) (string, error)
}

type Microphone interface {
	Open(ctx context.Context) (<-chan []byte, error)
}

type Speaker interface {
	Announce(text string)
	Debug(text string)
}

type StatusBoard interface {
	SetStatus(status string)
}

// Service runs voice mode: one wake word attempt, then continuous command
// listening until it is switched off.
type Service struct {
	cfg        *config.Config
	appCtx     context.Context
	recognizer Recognizer
	microphone Microphone
	queue      *queue.Service
	speaker    Speaker
	status     StatusBoard

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	continuous atomic.Bool
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		do.MustInvoke[context.Context](di),
		cfg,
		do.MustInvoke[*speechkit.YandexSpeechKit](di),
		NewFFmpegMicrophone(cfg.Voice.InputFormat, cfg.Voice.InputDevice),
		do.MustInvoke[*queue.Service](di),
		do.MustInvoke[*speaker.Service](di),
		do.MustInvoke[*transcript.Service](di),
	), nil
}

func NewService(
	appCtx context.Context,
	cfg *config.Config,
	recognizer Recognizer,
	microphone Microphone,
	queueSvc *queue.Service,
	speakerSvc Speaker,
	status StatusBoard,
) *Service {
	return &Service{
		cfg:        cfg,
		appCtx:     appCtx,
		recognizer: recognizer,
		microphone: microphone,
		queue:      queueSvc,
		speaker:    speakerSvc,
		status:     status,
	}
}

func (s *Service) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancel != nil
}

// Continuous reports whether the loop is past the wake word and taking
// commands.
func (s *Service) Continuous() bool {
	return s.continuous.Load()
}

// Toggle switches voice mode and reports whether it is now on.
func (s *Service) Toggle() bool {
	if s.Listening() {
		s.Stop()
		s.speaker.Announce("Voice mode deactivated. I'm ready for text commands.")
		return false
	}

	s.Start()
	return true
}

func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(s.appCtx)
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done

	go s.run(ctx, done)
}

// Stop ends voice mode and waits for the loop to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (s *Service) Shutdown() error {
	s.Stop()
	return nil
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.finish(done)

	audio, err := s.microphone.Open(ctx)
	if err != nil {
		slog.Error("Failed to open microphone", "error", err)
		s.speaker.Announce("I couldn't access your microphone. Please check your input device.")
		return
	}

	if !s.awaitWakeWord(ctx, audio) {
		return
	}

	s.continuous.Store(true)
	defer s.continuous.Store(false)

	s.status.SetStatus(StatusContinuous)

	for {
		text, err := s.listen(ctx, audio, s.cfg.Voice.ListenTimeout)

		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, speechkit.ErrNoSpeech):
		case errors.Is(err, speechkit.ErrUnclear):
			s.speaker.Debug("Voice not clear.")
		case errors.Is(err, speechkit.ErrUnavailable):
			slog.Warn("Speech service unavailable", "error", err)
			s.speaker.Announce("I'm having trouble connecting to the speech service. Maybe check your internet?")
			if !sleep(ctx, s.cfg.Voice.ListenTimeout) {
				return
			}
		case errors.Is(err, speechkit.ErrMicrophoneClosed):
			s.speaker.Announce("The microphone stopped sending audio. Voice mode is off.")
			return
		case err != nil:
			slog.Warn("Voice recognition failed", "error", err)
			if !sleep(ctx, s.cfg.Voice.ListenTimeout) {
				return
			}
		default:
			slog.Info("Voice command heard", "text", text)
			s.queue.Add(queue.SourceVoice, text)
		}
	}
}

func (s *Service) awaitWakeWord(ctx context.Context, audio <-chan []byte) bool {
	wakeWord := strings.ToLower(s.cfg.Assistant.WakeWord)
	s.status.SetStatus(fmt.Sprintf("Waiting for Wake Word (Say '%s')", wakeWord))

	text, err := s.listen(ctx, audio, s.cfg.Voice.WakeTimeout)
	if ctx.Err() != nil {
		return false
	}

	if err != nil {
		slog.Info("Wake word attempt failed", "error", err)
		s.speaker.Announce("Didn't hear the wake word. Try clicking Voice Mode again.")
		return false
	}

	if !strings.Contains(strings.ToLower(text), wakeWord) {
		slog.Info("Wake word not heard", "text", text)
		return false
	}

	s.speaker.Announce(fmt.Sprintf("Yes, %s? I'm listening.", s.cfg.Assistant.User))
	return true
}

func (s *Service) listen(ctx context.Context, audio <-chan []byte, timeout time.Duration) (string, error) {
	drain(audio)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return s.recognizer.Recognize(ctx, audio)
}

// finish clears the running state when the loop ends on its own.
func (s *Service) finish(done chan struct{}) {
	s.status.SetStatus(StatusReady)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done == done {
		s.cancel()
		s.cancel, s.done = nil, nil
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
