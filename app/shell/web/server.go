package web

import (
	"context"
	_ "embed"
	"errors"
	"friday/app/config"
	"friday/app/service/confirm"
	"friday/app/service/dispatch"
	"friday/app/service/queue"
	"friday/app/service/transcript"
	"friday/app/service/voice"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

//go:embed index.html
var indexPage []byte

type VoiceToggler interface {
	Toggle() bool
	Listening() bool
}

type commandRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type confirmationRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type transcriptResponse struct {
	Entries   []transcript.Entry `json:"entries"`
	LastSeq   uint64             `json:"lastSeq"`
	Status    string             `json:"status"`
	Listening bool               `json:"listening"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the browser chat. It binds to loopback only and shares the
// queue with every other shell.
type Server struct {
	cfg        *config.Config
	queue      *queue.Service
	transcript *transcript.Service
	gate       *confirm.Gate
	voice      VoiceToggler
	validate   *validator.Validate
	app        *fiber.App
}

func New(di *do.Injector) (*Server, error) {
	return NewServer(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*queue.Service](di),
		do.MustInvoke[*transcript.Service](di),
		do.MustInvoke[*confirm.Gate](di),
		do.MustInvoke[*voice.Service](di),
	), nil
}

func NewServer(
	cfg *config.Config,
	queueSvc *queue.Service,
	transcriptSvc *transcript.Service,
	gate *confirm.Gate,
	voiceSvc VoiceToggler,
) *Server {
	s := &Server{
		cfg:        cfg,
		queue:      queueSvc,
		transcript: transcriptSvc,
		gate:       gate,
		voice:      voiceSvc,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               cfg.Assistant.Name,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s.app.Get("/", s.index)

	api := s.app.Group("/api", sameOrigin)
	api.Post("/commands", s.postCommand)
	api.Get("/transcript", s.getTranscript)
	api.Get("/examples", s.getExamples)
	api.Post("/voice", s.postVoice)
	api.Get("/confirmation", s.getConfirmation)
	api.Post("/confirmation", s.postConfirmation)

	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			slog.Warn("Web shell shutdown failed", "error", err)
		}
	}()

	slog.Info("Web shell listening", "addr", s.cfg.HTTP.Listen)

	return s.app.Listen(s.cfg.HTTP.Listen)
}

func (s *Server) index(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexPage)
}

func (s *Server) postCommand(c *fiber.Ctx) error {
	var req commandRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	req.Text = strings.TrimSpace(req.Text)
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "text is required and must be at most 500 characters")
	}

	if !s.queue.Add(queue.SourceWeb, req.Text) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "assistant is shutting down")
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) getTranscript(c *fiber.Ctx) error {
	since := uint64(max(c.QueryInt("since", 0), 0))

	entries := s.transcript.Since(since)
	if entries == nil {
		entries = []transcript.Entry{}
	}

	return c.JSON(transcriptResponse{
		Entries:   entries,
		LastSeq:   s.transcript.LastSeq(),
		Status:    s.transcript.Status(),
		Listening: s.voice.Listening(),
	})
}

func (s *Server) getExamples(c *fiber.Ctx) error {
	return c.JSON(dispatch.HelpExamples())
}

func (s *Server) postVoice(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"listening": s.voice.Toggle()})
}

func (s *Server) getConfirmation(c *fiber.Ctx) error {
	question, ok := s.gate.Pending()
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.JSON(question)
}

func (s *Server) postConfirmation(c *fiber.Ctx) error {
	var req confirmationRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "answer is required")
	}

	if _, ok := s.gate.Pending(); !ok {
		return fiber.NewError(fiber.StatusConflict, confirm.ErrNothingPending.Error())
	}

	s.transcript.Add(transcript.Entry{Source: transcript.SourceUser, Text: req.Answer})

	if err := s.gate.Answer(confirm.IsYes(req.Answer)); err != nil {
		if errors.Is(err, confirm.ErrNothingPending) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// sameOrigin rejects requests a browser sends on behalf of another site.
func sameOrigin(c *fiber.Ctx) error {
	switch c.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
	default:
		return fiber.NewError(fiber.StatusForbidden, "cross-site request")
	}

	if origin := c.Get(fiber.HeaderOrigin); origin != "" {
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Host != string(c.Request().Host()) {
			return fiber.NewError(fiber.StatusForbidden, "cross-origin request")
		}
	}

	return c.Next()
}

// parseJSON only accepts JSON bodies. Form posts need no preflight, JSON does.
func parseJSON(c *fiber.Ctx, out any) error {
	if !c.Is("json") {
		return fiber.NewError(fiber.StatusUnsupportedMediaType, "body must be application/json")
	}

	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	} else {
		slog.Error("Web request failed", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
