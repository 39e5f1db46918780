// Package session implements the session/window/pane lifecycle controller.
//
// A Context is built once per run from the live multiplexer state. It tracks
// the visible session/window/pane the user is looking at, plus a hidden
// "holding" session owned by stagehand, and performs the ordered multiplexer
// operations that move a process's pane between the two without killing the
// process inside it.
package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/offstage/stagehand/internal/mux"
)

// Context holds the identifiers the controller operates on. The fields are
// immutable after construction; only the holding session resource itself is
// created (Prepare) and destroyed (Cleanup) during the context's lifetime.
type Context struct {
	driver mux.Driver

	// detachedSession is the holding session owned by this context.
	detachedSession string

	// session/window/pane identify the visible anchor point captured at
	// construction. They are where new panes are inserted, not where any
	// particular process lives.
	session string
	window  int
	pane    int
}

// FromCurrent queries the driver for the session, window, and pane currently
// attached in the foreground and builds a Context around them.
//
// Identifiers that are not valid UTF-8, or window/pane indexes that do not
// parse as non-negative integers, mean the multiplexer integration itself is
// broken; those produce a *FatalError. Driver I/O failures are ordinary
// errors.
func FromCurrent(ctx context.Context, driver mux.Driver, detachedSessionName string) (*Context, error) {
	if detachedSessionName == "" {
		return nil, fmt.Errorf("detached session name must not be empty")
	}

	rawSession, err := driver.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("query current session: %w", err)
	}
	session, err := cleanIdentifier(rawSession)
	if err != nil {
		return nil, &FatalError{Op: "current session", Output: rawSession, Err: err}
	}

	rawWindow, err := driver.CurrentWindow(ctx)
	if err != nil {
		return nil, fmt.Errorf("query current window: %w", err)
	}
	window, err := parseIndex(rawWindow)
	if err != nil {
		return nil, &FatalError{Op: "current window", Output: rawWindow, Err: err}
	}

	rawPane, err := driver.CurrentPane(ctx)
	if err != nil {
		return nil, fmt.Errorf("query current pane: %w", err)
	}
	pane, err := parseIndex(rawPane)
	if err != nil {
		return nil, &FatalError{Op: "current pane", Output: rawPane, Err: err}
	}

	return &Context{
		driver:          driver,
		detachedSession: detachedSessionName,
		session:         session,
		window:          window,
		pane:            pane,
	}, nil
}

// Session returns the visible session name.
func (c *Context) Session() string { return c.session }

// Window returns the visible window index.
func (c *Context) Window() int { return c.window }

// Pane returns the anchor pane index.
func (c *Context) Pane() int { return c.pane }

// DetachedSession returns the name of the holding session.
func (c *Context) DetachedSession() string { return c.detachedSession }

// Prepare creates the holding session, then marks the visible window
// remain-on-exit so a fast-exiting process cannot destroy its pane before it
// is relocated. The holding session must exist before any pane can be broken
// into it, so that step goes first.
func (c *Context) Prepare(ctx context.Context) error {
	if err := c.driver.StartDetachedSession(ctx, c.detachedSession); err != nil {
		return fmt.Errorf("start holding session %q: %w", c.detachedSession, err)
	}
	if err := c.driver.SetRemainOnExit(ctx, c.session, c.window, true); err != nil {
		return fmt.Errorf("set remain-on-exit on %s:%d: %w", c.session, c.window, err)
	}
	return nil
}

// Cleanup reverses Prepare: kill the holding session and clear the
// remain-on-exit flag on the visible window. Killing a session that was
// already destroyed externally fails; callers decide whether that matters
// (mux.IsSessionNotFound distinguishes it).
func (c *Context) Cleanup(ctx context.Context) error {
	if err := c.driver.KillSession(ctx, c.detachedSession); err != nil {
		return fmt.Errorf("kill holding session %q: %w", c.detachedSession, err)
	}
	if err := c.driver.SetRemainOnExit(ctx, c.session, c.window, false); err != nil {
		return fmt.Errorf("clear remain-on-exit on %s:%d: %w", c.session, c.window, err)
	}
	return nil
}

// CreatePane creates a new pane next to the anchor pane running command and
// returns its index. Malformed driver output here is an ordinary error, not
// fatal: it is reachable during normal operation when something else mutates
// the session concurrently.
func (c *Context) CreatePane(ctx context.Context, command string) (int, error) {
	out, err := c.driver.CreatePane(ctx, c.session, c.window, c.pane, command)
	if err != nil {
		return 0, fmt.Errorf("create pane in %s:%d: %w", c.session, c.window, err)
	}
	cleaned, err := cleanIdentifier(out)
	if err != nil {
		return 0, fmt.Errorf("create pane output %q: %w", out, err)
	}
	pane, err := parseIndex(cleaned)
	if err != nil {
		return 0, fmt.Errorf("create pane output %q: %w", cleaned, err)
	}
	return pane, nil
}

// BreakPane relocates sourcePane out of the visible window into a new window
// labeled windowLabel at destWindow inside the holding session, then marks
// the destination window remain-on-exit so a quick process exit cannot
// destroy it before a later JoinPane.
func (c *Context) BreakPane(ctx context.Context, sourcePane, destWindow int, windowLabel string) error {
	if err := c.driver.BreakPane(ctx, c.session, c.window, sourcePane, c.detachedSession, destWindow, windowLabel); err != nil {
		return fmt.Errorf("break pane %d into %s:%d: %w", sourcePane, c.detachedSession, destWindow, err)
	}
	if err := c.driver.SetRemainOnExit(ctx, c.detachedSession, destWindow, true); err != nil {
		return fmt.Errorf("set remain-on-exit on %s:%d: %w", c.detachedSession, destWindow, err)
	}
	return nil
}

// JoinPane moves targetWindow's pane from the holding session back into the
// visible window, inserted after the anchor pane, and returns the index the
// relocated pane lands at.
//
// The returned index is pane+1 by convention, not requeried from the
// multiplexer: it is only accurate if no other pane was inserted at or
// before the anchor since construction.
func (c *Context) JoinPane(ctx context.Context, targetWindow int) (int, error) {
	err := c.driver.JoinPane(ctx, c.detachedSession, targetWindow, c.session, c.window, c.pane)
	if err != nil {
		return 0, fmt.Errorf("join %s:%d into %s:%d: %w", c.detachedSession, targetWindow, c.session, c.window, err)
	}
	return c.pane + 1, nil
}

// cleanIdentifier validates driver output as UTF-8 and strips the trailing
// newline.
func cleanIdentifier(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("output is not valid UTF-8")
	}
	return strings.TrimRight(raw, "\r\n"), nil
}

// parseIndex parses a window or pane index: a non-negative integer with an
// optional trailing newline.
func parseIndex(raw string) (int, error) {
	cleaned, err := cleanIdentifier(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative index %d", n)
	}
	return n, nil
}
