// Package mux provides an abstraction over terminal multiplexers (tmux).
//
// The Driver interface mirrors the session/window/pane operations stagehand
// needs to stage panes in and out of a hidden holding session. It exists so
// the session controller can be tested against a deterministic in-memory
// fake instead of a real tmux binary.
package mux

import (
	"context"
	"strings"
)

// Window describes one window inside a session.
type Window struct {
	Index int
	Name  string
	Panes int
}

// Driver abstracts the multiplexer command surface.
//
// The Current* queries return the multiplexer's raw output, a
// newline-terminated identifier; callers strip and parse it. All other
// methods report only success or failure, except CreatePane, which returns
// the raw textual index of the new pane.
type Driver interface {
	// Name returns the multiplexer name (e.g., "tmux").
	Name() string

	// CurrentSession returns the name of the session attached in the
	// foreground.
	CurrentSession(ctx context.Context) (string, error)

	// CurrentWindow returns the index of the active window.
	CurrentWindow(ctx context.Context) (string, error)

	// CurrentPane returns the index of the active pane.
	CurrentPane(ctx context.Context) (string, error)

	// StartDetachedSession creates a new session that is not attached to
	// any terminal.
	StartDetachedSession(ctx context.Context, name string) error

	// KillSession destroys a session and everything in it.
	KillSession(ctx context.Context, name string) error

	// ListSessions returns the names of all sessions on the server.
	ListSessions(ctx context.Context) ([]string, error)

	// ListWindows returns the windows of a session.
	ListWindows(ctx context.Context, session string) ([]Window, error)

	// SetRemainOnExit controls whether panes in the given window survive
	// their process exiting.
	SetRemainOnExit(ctx context.Context, session string, window int, on bool) error

	// BreakPane moves sourcePane out of (session, window) into a new
	// window at (destSession, destWindow) named label.
	BreakPane(ctx context.Context, session string, window, sourcePane int, destSession string, destWindow int, label string) error

	// JoinPane moves the pane of (srcSession, srcWindow) into
	// (destSession, destWindow), inserted after destPane.
	JoinPane(ctx context.Context, srcSession string, srcWindow int, destSession string, destWindow, destPane int) error

	// CreatePane splits a new pane off anchorPane running command and
	// returns the new pane's raw textual index.
	CreatePane(ctx context.Context, session string, window, anchorPane int, command string) (string, error)
}

// IsSessionNotFound reports whether an error from a session-targeted call
// indicates the session no longer exists. tmux phrases this as
// "can't find session" on stderr.
func IsSessionNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "can't find session") ||
		strings.Contains(msg, "session not found")
}
