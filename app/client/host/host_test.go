package host

import (
	"context"
	"errors"
	"friday/app/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func newTestClient(cfg *config.Config, goos string) (*Client, *recorder, *[]string) {
	rec := &recorder{}
	var opened []string

	c := NewClient(cfg)
	c.goos = goos
	c.run = rec.run
	c.openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}

	return c, rec, &opened
}

func TestPower_DisabledOnlyLogs(t *testing.T) {
	c, rec, _ := newTestClient(&config.Config{}, "linux")

	require.NoError(t, c.Power(context.Background(), PowerShutdown))
	assert.Empty(t, rec.calls)
}

func TestPower_Executes(t *testing.T) {
	cfg := &config.Config{Power: config.Power{Execute: true}}
	c, rec, _ := newTestClient(cfg, "windows")

	require.NoError(t, c.Power(context.Background(), PowerRestart))
	assert.Equal(t, [][]string{{"shutdown", "/r", "/t", "1"}}, rec.calls)
}

func TestPower_UnsupportedPlatform(t *testing.T) {
	c, _, _ := newTestClient(&config.Config{}, "plan9")

	err := c.Power(context.Background(), PowerLogOff)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan9")
}

func TestPowerCommand_AllPlatformsCoverAllActions(t *testing.T) {
	for goos := range powerCommands {
		c, _, _ := newTestClient(&config.Config{}, goos)

		for _, action := range []PowerAction{PowerShutdown, PowerRestart, PowerLogOff} {
			command, err := c.PowerCommand(action)
			require.NoError(t, err, "%s/%s", goos, action)
			assert.NotEmpty(t, command)
		}
	}
}

func TestDial(t *testing.T) {
	c, _, opened := newTestClient(&config.Config{}, "linux")

	require.NoError(t, c.Dial("9876543210"))
	assert.Equal(t, []string{"tel:9876543210"}, *opened)
}

func TestSpeak(t *testing.T) {
	cfg := &config.Config{Speech: config.Speech{Command: []string{"espeak", "-s", "170"}}}
	c, rec, _ := newTestClient(cfg, "linux")

	require.NoError(t, c.Speak(context.Background(), "hello there"))
	require.NoError(t, c.Speak(context.Background(), "   "))

	assert.Equal(t, [][]string{{"espeak", "-s", "170", "hello there"}}, rec.calls)
}

func TestSpeak_Disabled(t *testing.T) {
	c, rec, _ := newTestClient(&config.Config{}, "linux")

	require.NoError(t, c.Speak(context.Background(), "hello"))
	assert.Empty(t, rec.calls)
}

func TestSpeak_Error(t *testing.T) {
	cfg := &config.Config{Speech: config.Speech{Command: []string{"say"}}}
	c, rec, _ := newTestClient(cfg, "darwin")
	rec.err = errors.New("exit status 1")

	assert.Error(t, c.Speak(context.Background(), "hello"))
}
