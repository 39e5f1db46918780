package mux

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Watcher observes pane deaths in a session through tmux control mode.
//
// It attaches a control-mode client (tmux -C) to the session and subscribes
// to a format that fires whenever a pane's remain-on-exit corpse appears,
// reporting the PID of the process that ran in the pane. This is how
// stagehand notices that a process parked in the holding session has exited.
type Watcher struct {
	session      string
	subscription string
	cmd          *exec.Cmd
	stdin        io.WriteCloser
	stdout       io.ReadCloser
}

// NewWatcher starts a control-mode client attached to session.
func NewWatcher(session string) (*Watcher, error) {
	cmd := exec.Command("tmux", "-C", "attach-session", "-t", session)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("control mode stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("control mode stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start tmux control mode: %w", err)
	}
	return &Watcher{
		session:      session,
		subscription: "pane_dead_" + sanitizeSessionName(session),
		cmd:          cmd,
		stdin:        stdin,
		stdout:       stdout,
	}, nil
}

// Run subscribes to pane-death notifications and delivers the PID of each
// dead pane's process on deaths until ctx is cancelled or the control-mode
// client exits.
func (w *Watcher) Run(ctx context.Context, deaths chan<- int) error {
	sub := fmt.Sprintf("refresh-client -B %s:%%*:\"#{pane_dead} #{pane_pid}\"\n", w.subscription)
	if _, err := io.WriteString(w.stdin, sub); err != nil {
		return fmt.Errorf("subscribe to pane deaths: %w", err)
	}

	go func() {
		<-ctx.Done()
		w.Close()
	}()

	reader := bufio.NewReader(w.stdout)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("control mode read: %w", err)
		}
		if pid, ok := parseDeathNotification(line, w.subscription); ok {
			select {
			case deaths <- pid:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Close kills the control-mode client. Safe to call more than once.
func (w *Watcher) Close() error {
	if w.cmd.Process == nil {
		return nil
	}
	if err := w.cmd.Process.Kill(); err != nil {
		return err
	}
	_, err := w.cmd.Process.Wait()
	return err
}

// parseDeathNotification extracts the pane PID from a control-mode
// subscription line. The subscribed format expands to "<pane_dead> <pid>",
// so a matching line ends in "... 1 <pid>" once the pane is dead.
func parseDeathNotification(line, subscription string) (int, bool) {
	if !strings.HasPrefix(line, "%subscription-changed "+subscription) {
		return 0, false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[len(fields)-2] != "1" {
		return 0, false
	}
	pid, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return pid, true
}

// sanitizeSessionName strips characters tmux rejects in subscription names.
func sanitizeSessionName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}
