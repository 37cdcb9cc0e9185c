package host

import (
	"context"
	"fmt"
	"log/slog"
)

type PowerAction string

const (
	PowerShutdown PowerAction = "shut down"
	PowerRestart  PowerAction = "restart"
	PowerLogOff   PowerAction = "log off"
)

var powerCommands = map[string]map[PowerAction][]string{
	"windows": {
		PowerShutdown: {"shutdown", "/s", "/t", "1"},
		PowerRestart:  {"shutdown", "/r", "/t", "1"},
		PowerLogOff:   {"shutdown", "/l"},
	},
	"linux": {
		PowerShutdown: {"systemctl", "poweroff"},
		PowerRestart:  {"systemctl", "reboot"},
		PowerLogOff:   {"loginctl", "terminate-session", "self"},
	},
	"darwin": {
		PowerShutdown: {"osascript", "-e", `tell app "System Events" to shut down`},
		PowerRestart:  {"osascript", "-e", `tell app "System Events" to restart`},
		PowerLogOff:   {"osascript", "-e", `tell app "System Events" to log out`},
	},
}

// PowerCommand returns the command line for action on the current platform.
func (c *Client) PowerCommand(action PowerAction) ([]string, error) {
	command, ok := powerCommands[c.goos][action]
	if !ok {
		return nil, fmt.Errorf("%s is not supported on %s", action, c.goos)
	}

	return command, nil
}

// Power runs the host power command. Unless power.execute is set the command
// is only logged.
func (c *Client) Power(ctx context.Context, action PowerAction) error {
	command, err := c.PowerCommand(action)
	if err != nil {
		return err
	}

	if !c.cfg.Power.Execute {
		slog.Warn("Power command skipped, execution disabled", "action", action, "command", command)
		return nil
	}

	slog.Warn("Executing power command", "action", action, "command", command, "telegram", true)

	if err = c.run(ctx, command[0], command[1:]...); err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	return nil
}
