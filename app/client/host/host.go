// Package host wraps the side effects the assistant has on the local machine:
// the browser, the telephony handler, the clipboard, desktop notifications,
// speech output and power control.
package host

import (
	"context"
	"fmt"
	"friday/app/config"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"github.com/pkg/browser"
	"github.com/samber/do"
)

type runFunc func(ctx context.Context, name string, args ...string) error

type Client struct {
	cfg  *config.Config
	goos string

	openURL        func(url string) error
	writeClipboard func(text string) error
	notify         func(title, message string) error
	run            runFunc

	speakMu sync.Mutex
}

func New(di *do.Injector) (*Client, error) {
	return NewClient(do.MustInvoke[*config.Config](di)), nil
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:            cfg,
		goos:           runtime.GOOS,
		openURL:        browser.OpenURL,
		writeClipboard: clipboard.WriteAll,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		run: runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(out)))
	}

	return nil
}

func (c *Client) OpenURL(url string) error {
	slog.Debug("Opening URL", "url", url)

	if err := c.openURL(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}

	return nil
}

// Dial hands a tel: URI to whatever the platform registered for it.
func (c *Client) Dial(number string) error {
	return c.OpenURL("tel:" + number)
}

func (c *Client) CopyText(text string) error {
	if err := c.writeClipboard(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	return nil
}

func (c *Client) Notify(title, message string) error {
	if err := c.notify(title, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}

// Speak runs the configured TTS command with text as its last argument. Calls
// are serialized so utterances never overlap.
func (c *Client) Speak(ctx context.Context, text string) error {
	command := c.cfg.Speech.Command
	if len(command) == 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	c.speakMu.Lock()
	defer c.speakMu.Unlock()

	args := append(append([]string(nil), command[1:]...), text)
	if err := c.run(ctx, command[0], args...); err != nil {
		return fmt.Errorf("speech failed: %w", err)
	}

	return nil
}
