package mux

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Tmux implements the Driver interface for tmux.
type Tmux struct{}

// NewTmux creates a new tmux driver.
func NewTmux() *Tmux {
	return &Tmux{}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// CurrentSession returns the raw name of the attached session.
func (t *Tmux) CurrentSession(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", fmt.Errorf("tmux display-message session_name: %w", err)
	}
	return out, nil
}

// CurrentWindow returns the raw index of the active window.
func (t *Tmux) CurrentWindow(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "display-message", "-p", "#{window_index}")
	if err != nil {
		return "", fmt.Errorf("tmux display-message window_index: %w", err)
	}
	return out, nil
}

// CurrentPane returns the raw index of the active pane.
func (t *Tmux) CurrentPane(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "display-message", "-p", "#{pane_index}")
	if err != nil {
		return "", fmt.Errorf("tmux display-message pane_index: %w", err)
	}
	return out, nil
}

// StartDetachedSession creates a new detached session named name.
// Creating a session that already exists is an error at the tmux level.
func (t *Tmux) StartDetachedSession(ctx context.Context, name string) error {
	if _, err := t.run(ctx, "new-session", "-d", "-s", name); err != nil {
		return fmt.Errorf("tmux new-session -d -s %s: %w", name, err)
	}
	return nil
}

// KillSession destroys the named session.
func (t *Tmux) KillSession(ctx context.Context, name string) error {
	if _, err := t.run(ctx, "kill-session", "-t", name); err != nil {
		return fmt.Errorf("tmux kill-session -t %s: %w", name, err)
	}
	return nil
}

// ListSessions returns the names of all sessions on the server.
func (t *Tmux) ListSessions(ctx context.Context) ([]string, error) {
	out, err := t.run(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		return nil, fmt.Errorf("tmux list-sessions: %w", err)
	}
	var sessions []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			sessions = append(sessions, line)
		}
	}
	return sessions, nil
}

// ListWindows returns the windows of a session.
func (t *Tmux) ListWindows(ctx context.Context, session string) ([]Window, error) {
	format := "#{window_index}\t#{window_name}\t#{window_panes}"
	out, err := t.run(ctx, "list-windows", "-t", session, "-F", format)
	if err != nil {
		return nil, fmt.Errorf("tmux list-windows -t %s: %w", session, err)
	}
	return parseWindows(out), nil
}

// SetRemainOnExit toggles the remain-on-exit flag on a window.
func (t *Tmux) SetRemainOnExit(ctx context.Context, session string, window int, on bool) error {
	value := "off"
	if on {
		value = "on"
	}
	target := fmt.Sprintf("%s:%d", session, window)
	if _, err := t.run(ctx, "set-option", "-w", "-t", target, "remain-on-exit", value); err != nil {
		return fmt.Errorf("tmux set-option remain-on-exit %s on %s: %w", value, target, err)
	}
	return nil
}

// BreakPane relocates sourcePane into a new window in another session.
// -d keeps the destination window from grabbing focus.
func (t *Tmux) BreakPane(ctx context.Context, session string, window, sourcePane int, destSession string, destWindow int, label string) error {
	src := fmt.Sprintf("%s:%d.%d", session, window, sourcePane)
	dst := fmt.Sprintf("%s:%d", destSession, destWindow)
	if _, err := t.run(ctx, "break-pane", "-d", "-s", src, "-t", dst, "-n", label); err != nil {
		return fmt.Errorf("tmux break-pane %s -> %s: %w", src, dst, err)
	}
	return nil
}

// JoinPane moves a window's pane into an existing window, inserted after
// destPane.
func (t *Tmux) JoinPane(ctx context.Context, srcSession string, srcWindow int, destSession string, destWindow, destPane int) error {
	src := fmt.Sprintf("%s:%d", srcSession, srcWindow)
	dst := fmt.Sprintf("%s:%d.%d", destSession, destWindow, destPane)
	if _, err := t.run(ctx, "join-pane", "-d", "-s", src, "-t", dst); err != nil {
		return fmt.Errorf("tmux join-pane %s -> %s: %w", src, dst, err)
	}
	return nil
}

// CreatePane splits a new pane off anchorPane running command. -P -F prints
// the new pane's index on stdout.
func (t *Tmux) CreatePane(ctx context.Context, session string, window, anchorPane int, command string) (string, error) {
	target := fmt.Sprintf("%s:%d.%d", session, window, anchorPane)
	out, err := t.run(ctx, "split-window", "-t", target, "-P", "-F", "#{pane_index}", command)
	if err != nil {
		return "", fmt.Errorf("tmux split-window -t %s: %w", target, err)
	}
	return out, nil
}

// run executes a tmux command and returns its stdout.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}

// parseWindows parses list-windows output in index\tname\tpanes format.
// Malformed lines are skipped; tmux output is not under our control.
func parseWindows(out string) []Window {
	var windows []Window
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		panes, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		windows = append(windows, Window{Index: index, Name: parts[1], Panes: panes})
	}
	return windows
}
