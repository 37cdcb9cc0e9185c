package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "FRIDAY", cfg.Assistant.Name)
	assert.Equal(t, "friday", cfg.Assistant.WakeWord)
	assert.Equal(t, "data/friday_notes.txt", cfg.Files.Notes)
	assert.Equal(t, 3*time.Second, cfg.Voice.ListenTimeout)
	assert.Equal(t, "9876543210", cfg.Contacts["mom"])
	assert.False(t, cfg.Power.Execute)
}

func TestLoad_OverridesAndDurations(t *testing.T) {
	path := writeConfig(t, `
assistant:
  user: Alex
files:
  notes: /tmp/notes.txt
contacts:
  bob: "5550001111"
voice:
  listen_timeout: 4s
speech:
  command: [espeak, -s, "170"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Alex", cfg.Assistant.User)
	assert.Equal(t, "/tmp/notes.txt", cfg.Files.Notes)
	assert.Equal(t, map[string]string{"bob": "5550001111"}, cfg.Contacts)
	assert.Equal(t, 4*time.Second, cfg.Voice.ListenTimeout)
	assert.Equal(t, []string{"espeak", "-s", "170"}, cfg.Speech.Command)
}

func TestLoad_RejectsNonNumericContact(t *testing.T) {
	path := writeConfig(t, `
contacts:
  bob: "call me maybe"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate")
}

func TestLoad_RejectsBrokenYAML(t *testing.T) {
	path := writeConfig(t, "assistant: [")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoad_RejectsBadListenAddress(t *testing.T) {
	path := writeConfig(t, `
http:
  listen: "not an address"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ListenMustBeLoopback(t *testing.T) {
	for _, addr := range []string{"0.0.0.0:8484", "192.168.1.10:8484", ":8484", "example.com:80"} {
		path := writeConfig(t, "http:\n  listen: \""+addr+"\"\n")

		_, err := Load(path)
		assert.Error(t, err, addr)
	}

	for _, addr := range []string{"127.0.0.1:9000", "localhost:9000"} {
		path := writeConfig(t, "http:\n  listen: \""+addr+"\"\n")

		cfg, err := Load(path)
		require.NoError(t, err, addr)
		assert.Equal(t, addr, cfg.HTTP.Listen)
	}
}
