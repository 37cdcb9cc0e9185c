package terminal

import (
	"bufio"
	"context"
	"fmt"
	"friday/app/config"
	"friday/app/service/confirm"
	"friday/app/service/queue"
	"friday/app/service/transcript"
	"friday/app/service/voice"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/samber/do"
)

const VoiceCommand = "/voice"

type VoiceToggler interface {
	Toggle() bool
}

// Shell is the interactive chat on stdin/stdout. Replies arrive through the
// transcript, so turns started by voice or reminders show up here too.
type Shell struct {
	cfg        *config.Config
	queue      *queue.Service
	transcript *transcript.Service
	gate       *confirm.Gate
	voice      VoiceToggler
	renderer   *glamour.TermRenderer

	in    io.Reader
	outMu sync.Mutex
	out   io.Writer
}

func New(di *do.Injector) (*Shell, error) {
	return NewShell(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*queue.Service](di),
		do.MustInvoke[*transcript.Service](di),
		do.MustInvoke[*confirm.Gate](di),
		do.MustInvoke[*voice.Service](di),
		os.Stdin,
		os.Stdout,
	), nil
}

func NewShell(
	cfg *config.Config,
	queueSvc *queue.Service,
	transcriptSvc *transcript.Service,
	gate *confirm.Gate,
	voiceSvc VoiceToggler,
	in io.Reader,
	out io.Writer,
) *Shell {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		slog.Warn("Markdown renderer unavailable", "error", err)
	}

	return &Shell{
		cfg:        cfg,
		queue:      queueSvc,
		transcript: transcriptSvc,
		gate:       gate,
		voice:      voiceSvc,
		renderer:   renderer,
		in:         in,
		out:        out,
	}
}

// Run reads lines until input ends or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.printf("%s\n", debugStyle.Render(fmt.Sprintf(
		"Type /commands for help, %s to toggle voice mode.", VoiceCommand)))

	entries, unsubscribe := s.transcript.Subscribe(0)

	var printer sync.WaitGroup
	printer.Add(1)
	go func() {
		defer printer.Done()
		for entry := range entries {
			s.print(entry)
		}
	}()

	defer printer.Wait()
	defer unsubscribe()

	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			s.handle(line)
		}
	}
}

func (s *Shell) handle(line string) {
	text := strings.TrimSpace(line)
	if text == "" {
		return
	}

	if question, ok := s.gate.Pending(); ok {
		s.transcript.Add(transcript.Entry{Source: transcript.SourceUser, Text: text})

		if err := s.gate.Answer(confirm.IsYes(text)); err != nil {
			slog.Warn("Confirmation answer dropped", "id", question.ID, "error", err)
		}
		return
	}

	if text == VoiceCommand {
		if s.voice.Toggle() {
			s.printf("%s\n", debugStyle.Render("Voice mode on."))
		}
		return
	}

	if !s.queue.Add(queue.SourceTerminal, text) {
		slog.Warn("Command dropped, queue is closed", "text", text)
	}
}

func (s *Shell) print(entry transcript.Entry) {
	switch entry.Source {
	case transcript.SourceUser:
		return
	case transcript.SourceDebug:
		s.printf("%s\n", debugStyle.Render(entry.Text))
		return
	}

	prefix := assistantStyle.Render(s.cfg.Assistant.Name + ":")
	if entry.IsError {
		prefix = errorStyle.Render(s.cfg.Assistant.Name + " (error):")
	}

	if entry.FullText == "" {
		s.printf("%s %s\n", prefix, entry.Text)
		return
	}

	s.printf("%s\n%s", prefix, s.render(entry.FullText))
}

func (s *Shell) render(markdown string) string {
	if s.renderer == nil {
		return markdown + "\n"
	}

	rendered, err := s.renderer.Render(markdown)
	if err != nil {
		return markdown + "\n"
	}

	return rendered
}

func (s *Shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	_, _ = fmt.Fprintf(s.out, format, args...)
}
