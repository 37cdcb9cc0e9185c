package speaker

import (
	"context"
	"friday/app/client/host"
	"friday/app/service/dispatch"
	"friday/app/service/transcript"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/do"
)

var markup = strings.NewReplacer("**", "", "`", "")

type Speech interface {
	Speak(ctx context.Context, text string) error
}

type Quietness interface {
	Quiet() bool
}

// Service delivers assistant replies: always to the transcript, and to speech
// output unless quiet mode is on.
type Service struct {
	appCtx     context.Context
	quiet      Quietness
	transcript *transcript.Service
	speech     Speech
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[context.Context](di),
		do.MustInvoke[*dispatch.State](di),
		do.MustInvoke[*transcript.Service](di),
		do.MustInvoke[*host.Client](di),
	), nil
}

func NewService(appCtx context.Context, quiet Quietness, transcriptSvc *transcript.Service, speech Speech) *Service {
	return &Service{
		appCtx:     appCtx,
		quiet:      quiet,
		transcript: transcriptSvc,
		speech:     speech,
	}
}

func (s *Service) Deliver(ctx context.Context, reply dispatch.Reply) {
	s.transcript.Add(transcript.Entry{
		Source:   transcript.SourceAssistant,
		Text:     reply.Text,
		FullText: reply.FullText,
		IsError:  reply.IsError,
	})

	if s.quiet.Quiet() {
		return
	}

	if err := s.speech.Speak(ctx, Plain(reply.Text)); err != nil {
		slog.Warn("Speech output failed", "error", err)
	}
}

// Emitter binds Deliver to ctx for use as a dispatch.Emit.
func (s *Service) Emitter(ctx context.Context) dispatch.Emit {
	return func(reply dispatch.Reply) {
		s.Deliver(ctx, reply)
	}
}

// Announce delivers text that does not belong to any turn, such as a
// reminder firing.
func (s *Service) Announce(text string) {
	s.Deliver(s.appCtx, dispatch.Reply{Text: text})
}

// Greet announces the assistant at startup.
func (s *Service) Greet(name, user string) {
	s.Announce(Greeting(name, user))
}

func Greeting(name, user string) string {
	return fmt.Sprintf("Hello there, %s. I'm %s, ready to assist you locally. How can I start your day?", user, name)
}

// Debug records text in the transcript only.
func (s *Service) Debug(text string) {
	s.transcript.Add(transcript.Entry{
		Source: transcript.SourceDebug,
		Text:   text,
	})
}

func Plain(text string) string {
	return markup.Replace(text)
}
