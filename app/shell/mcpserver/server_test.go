package mcpserver

import (
	"context"
	"friday/app/client/host"
	"friday/app/config"
	"friday/app/service/confirm"
	"friday/app/service/dialogue"
	"friday/app/service/dispatch"
	"friday/app/service/transcript"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeHost struct {
	mu      sync.Mutex
	actions []host.PowerAction
}

func (h *fakeHost) OpenURL(string) error  { return nil }
func (h *fakeHost) Dial(string) error     { return nil }
func (h *fakeHost) CopyText(string) error { return nil }

func (h *fakeHost) Power(_ context.Context, action host.PowerAction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, action)
	return nil
}

func (h *fakeHost) powered() []host.PowerAction {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]host.PowerAction(nil), h.actions...)
}

type deliveries struct {
	mu      sync.Mutex
	replies []dispatch.Reply
}

func (d *deliveries) Deliver(_ context.Context, reply dispatch.Reply) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.replies = append(d.replies, reply)
}

type fixture struct {
	server     *Server
	host       *fakeHost
	delivered  *deliveries
	transcript *transcript.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	table, err := dialogue.Default()
	require.NoError(t, err)

	gate := &confirm.Gate{}
	f := &fixture{
		host:       &fakeHost{},
		delivered:  &deliveries{},
		transcript: transcript.NewService(),
	}

	planner := dispatch.NewService(dispatch.Deps{
		Config:  cfg,
		Table:   table,
		Host:    f.host,
		Confirm: gate,
		Now: func() time.Time {
			return time.Date(2025, 10, 28, 15, 4, 0, 0, time.UTC)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f.server = NewServer(ctx, cfg, planner, f.delivered, f.transcript, gate)
	t.Cleanup(func() { _ = f.server.Shutdown() })

	return f
}

func call(tool string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = tool
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, res)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestCommand(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFixture(t)

	res, err := f.server.handleCommand(context.Background(), call(ToolCommand, map[string]any{"text": "what time is it"}))
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, "The time is exactly 03:04 PM", resultText(t, res))

	entries := f.transcript.Since(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "what time is it", entries[0].Text)
	assert.Len(t, f.delivered.replies, 1)
}

func TestCommand_InvalidArguments(t *testing.T) {
	f := newFixture(t)

	res, err := f.server.handleCommand(context.Background(), call(ToolCommand, map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = f.server.handleCommand(context.Background(), call(ToolCommand, map[string]any{"text": "   "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestConfirm_NothingPending(t *testing.T) {
	f := newFixture(t)

	res, err := f.server.handleConfirm(context.Background(), call(ToolConfirm, map[string]any{"answer": "yes"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPowerNeedsConfirmation(t *testing.T) {
	f := newFixture(t)

	res, err := f.server.handleCommand(context.Background(), call(ToolCommand, map[string]any{"text": "restart the computer"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "(yes/no)")
	assert.Empty(t, f.host.powered())

	busy, err := f.server.handleCommand(context.Background(), call(ToolCommand, map[string]any{"text": "what time is it"}))
	require.NoError(t, err)
	assert.True(t, busy.IsError)

	res, err = f.server.handleConfirm(context.Background(), call(ToolConfirm, map[string]any{"answer": "yes"}))
	require.NoError(t, err)
	assert.Equal(t, "Confirmed! Executing restart in 1 second. Goodbye!", resultText(t, res))
	assert.Equal(t, []host.PowerAction{host.PowerRestart}, f.host.powered())
}

func TestPowerDeclined(t *testing.T) {
	f := newFixture(t)

	_, err := f.server.handleCommand(context.Background(), call(ToolCommand, map[string]any{"text": "shutdown now"}))
	require.NoError(t, err)

	res, err := f.server.handleConfirm(context.Background(), call(ToolConfirm, map[string]any{"answer": "no"}))
	require.NoError(t, err)
	assert.Equal(t, "Shut down cancelled. We're staying active!", resultText(t, res))
	assert.Empty(t, f.host.powered())
}

func TestTranscript(t *testing.T) {
	f := newFixture(t)

	res, err := f.server.handleTranscript(context.Background(), call(ToolTranscript, map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "No messages", resultText(t, res))

	_, err = f.server.handleCommand(context.Background(), call(ToolCommand, map[string]any{"text": "what time is it"}))
	require.NoError(t, err)

	res, err = f.server.handleTranscript(context.Background(), call(ToolTranscript, map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "user: what time is it")

	res, err = f.server.handleTranscript(context.Background(), call(ToolTranscript, map[string]any{"since": float64(1)}))
	require.NoError(t, err)
	assert.NotContains(t, resultText(t, res), "what time is it")
}
