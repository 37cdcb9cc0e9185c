package mcpserver

import (
	"context"
	"friday/app/config"
	"friday/app/service/confirm"
	"friday/app/service/dispatch"
	"friday/app/service/queue"
	"friday/app/service/speaker"
	"friday/app/service/transcript"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
	"github.com/sourcegraph/conc"
)

const (
	ToolCommand    = "assistant_command"
	ToolConfirm    = "assistant_confirm"
	ToolTranscript = "assistant_transcript"

	version      = "1.0.0"
	pollInterval = 50 * time.Millisecond
)

var _ do.Shutdownable = (*Server)(nil)

type Planner interface {
	Plan(raw string) dispatch.Turn
}

type Deliverer interface {
	Deliver(ctx context.Context, reply dispatch.Reply)
}

// Server exposes the assistant as MCP tools over stdio. A tool call returns
// once its turn finishes or stops at a yes/no question.
type Server struct {
	appCtx     context.Context
	planner    Planner
	speaker    Deliverer
	transcript *transcript.Service
	gate       *confirm.Gate
	mcp        *server.MCPServer

	mu      sync.Mutex
	current *runningTurn
	tasks   conc.WaitGroup
}

type runningTurn struct {
	mu      sync.Mutex
	replies []dispatch.Reply
	done    chan struct{}
}

func New(di *do.Injector) (*Server, error) {
	return NewServer(
		do.MustInvoke[context.Context](di),
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*dispatch.Service](di),
		do.MustInvoke[*speaker.Service](di),
		do.MustInvoke[*transcript.Service](di),
		do.MustInvoke[*confirm.Gate](di),
	), nil
}

func NewServer(
	appCtx context.Context,
	cfg *config.Config,
	planner Planner,
	speakerSvc Deliverer,
	transcriptSvc *transcript.Service,
	gate *confirm.Gate,
) *Server {
	s := &Server{
		appCtx:     appCtx,
		planner:    planner,
		speaker:    speakerSvc,
		transcript: transcriptSvc,
		gate:       gate,
	}

	s.mcp = server.NewMCPServer(cfg.Assistant.Name, version, server.WithToolCapabilities(false))

	s.mcp.AddTool(mcp.NewTool(ToolCommand,
		mcp.WithDescription("Send one text command to the "+cfg.Assistant.Name+" assistant and return its replies. Send /commands for the command list."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The command, as the user would type it")),
	), s.handleCommand)

	s.mcp.AddTool(mcp.NewTool(ToolConfirm,
		mcp.WithDescription("Answer the yes/no question a previous command is waiting on"),
		mcp.WithString("answer", mcp.Required(), mcp.Description("yes or no")),
	), s.handleConfirm)

	s.mcp.AddTool(mcp.NewTool(ToolTranscript,
		mcp.WithDescription("Return the recent conversation log, oldest first"),
		mcp.WithNumber("since", mcp.Description("Only entries with a sequence number above this one")),
	), s.handleTranscript)

	return s
}

// Serve speaks MCP on stdin/stdout until ctx is done or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) Shutdown() error {
	s.tasks.Wait()
	return nil
}

func (s *Server) handleCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return mcp.NewToolResultError("text must not be empty"), nil
	}

	if _, ok := s.gate.Pending(); ok {
		return mcp.NewToolResultError("a question is waiting for an answer, use " + ToolConfirm), nil
	}

	s.transcript.Add(transcript.Entry{Source: transcript.SourceUser, Text: text})

	turn := s.planner.Plan(text)

	slog.Info("Planned turn",
		"source", queue.SourceMCP,
		"text", text,
		"rule", turn.Rule)

	running := &runningTurn{done: make(chan struct{})}

	s.mu.Lock()
	s.current = running
	s.mu.Unlock()

	s.tasks.Go(func() {
		defer close(running.done)
		turn.Run(s.appCtx, running.emitter(s.appCtx, s.speaker))
	})

	if err = s.await(ctx, running); err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(running.since(0)), nil
}

func (s *Server) handleConfirm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	answer, err := req.RequireString("answer")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	running := s.current
	s.mu.Unlock()

	if _, ok := s.gate.Pending(); !ok || running == nil {
		return mcp.NewToolResultError(confirm.ErrNothingPending.Error()), nil
	}

	seen := running.count()

	s.transcript.Add(transcript.Entry{Source: transcript.SourceUser, Text: answer})

	if err = s.gate.Answer(confirm.IsYes(answer)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err = s.await(ctx, running); err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(running.since(seen)), nil
}

func (s *Server) handleTranscript(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	since := max(req.GetInt("since", 0), 0)

	return mcp.NewToolResultText(transcript.Format(s.transcript.Since(uint64(since)))), nil
}

// await returns when the turn is finished or waits on a confirmation.
func (s *Server) await(ctx context.Context, running *runningTurn) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-running.done:
			return nil
		case <-ticker.C:
			if _, ok := s.gate.Pending(); ok {
				return nil
			}
		}
	}
}

func (r *runningTurn) emitter(ctx context.Context, speaker Deliverer) dispatch.Emit {
	return func(reply dispatch.Reply) {
		r.mu.Lock()
		r.replies = append(r.replies, reply)
		r.mu.Unlock()

		speaker.Deliver(ctx, reply)
	}
}

func (r *runningTurn) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.replies)
}

func (r *runningTurn) since(from int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	texts := make([]string, 0, len(r.replies))
	for _, reply := range r.replies[min(from, len(r.replies)):] {
		text := reply.Text
		if reply.FullText != "" {
			text = reply.FullText
		}

		texts = append(texts, text)
	}

	return strings.Join(texts, "\n\n")
}
