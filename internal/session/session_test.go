package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/offstage/stagehand/internal/mux"
)

// fakeDriver is a deterministic in-memory driver that records every call.
type fakeDriver struct {
	calls []string

	sessionOut string
	windowOut  string
	paneOut    string
	createOut  string

	// errs maps an operation name to a forced error.
	errs map[string]error

	// sessions tracks which sessions exist, for prepare/cleanup pairing.
	sessions map[string]bool
}

var _ mux.Driver = (*fakeDriver)(nil)

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		sessionOut: "main\n",
		windowOut:  "2\n",
		paneOut:    "0\n",
		createOut:  "7\n",
		errs:       map[string]error{},
		sessions:   map[string]bool{"main": true},
	}
}

func (f *fakeDriver) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeDriver) Name() string { return "fake" }

func (f *fakeDriver) CurrentSession(ctx context.Context) (string, error) {
	f.record("current-session")
	return f.sessionOut, f.errs["current-session"]
}

func (f *fakeDriver) CurrentWindow(ctx context.Context) (string, error) {
	f.record("current-window")
	return f.windowOut, f.errs["current-window"]
}

func (f *fakeDriver) CurrentPane(ctx context.Context) (string, error) {
	f.record("current-pane")
	return f.paneOut, f.errs["current-pane"]
}

func (f *fakeDriver) StartDetachedSession(ctx context.Context, name string) error {
	f.record("start-detached-session %s", name)
	if err := f.errs["start-detached-session"]; err != nil {
		return err
	}
	f.sessions[name] = true
	return nil
}

func (f *fakeDriver) KillSession(ctx context.Context, name string) error {
	f.record("kill-session %s", name)
	if err := f.errs["kill-session"]; err != nil {
		return err
	}
	delete(f.sessions, name)
	return nil
}

func (f *fakeDriver) ListSessions(ctx context.Context) ([]string, error) {
	f.record("list-sessions")
	var names []string
	for name := range f.sessions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, f.errs["list-sessions"]
}

func (f *fakeDriver) ListWindows(ctx context.Context, session string) ([]mux.Window, error) {
	f.record("list-windows %s", session)
	return nil, f.errs["list-windows"]
}

func (f *fakeDriver) SetRemainOnExit(ctx context.Context, session string, window int, on bool) error {
	f.record("set-remain-on-exit %s:%d %v", session, window, on)
	return f.errs["set-remain-on-exit"]
}

func (f *fakeDriver) BreakPane(ctx context.Context, session string, window, sourcePane int, destSession string, destWindow int, label string) error {
	f.record("break-pane %s:%d.%d -> %s:%d %s", session, window, sourcePane, destSession, destWindow, label)
	return f.errs["break-pane"]
}

func (f *fakeDriver) JoinPane(ctx context.Context, srcSession string, srcWindow int, destSession string, destWindow, destPane int) error {
	f.record("join-pane %s:%d -> %s:%d.%d", srcSession, srcWindow, destSession, destWindow, destPane)
	return f.errs["join-pane"]
}

func (f *fakeDriver) CreatePane(ctx context.Context, session string, window, anchorPane int, command string) (string, error) {
	f.record("create-pane %s:%d.%d %s", session, window, anchorPane, command)
	return f.createOut, f.errs["create-pane"]
}

func mustContext(t *testing.T, d *fakeDriver) *Context {
	t.Helper()
	c, err := FromCurrent(context.Background(), d, "stagehand")
	if err != nil {
		t.Fatalf("FromCurrent: %v", err)
	}
	return c
}

func TestFromCurrent(t *testing.T) {
	t.Run("exposes driver identifiers unmodified", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)

		if c.Session() != "main" {
			t.Errorf("Session: got %q, want %q", c.Session(), "main")
		}
		if c.Window() != 2 {
			t.Errorf("Window: got %d, want %d", c.Window(), 2)
		}
		if c.Pane() != 0 {
			t.Errorf("Pane: got %d, want %d", c.Pane(), 0)
		}
		if c.DetachedSession() != "stagehand" {
			t.Errorf("DetachedSession: got %q, want %q", c.DetachedSession(), "stagehand")
		}
	})

	t.Run("rejects empty detached session name", func(t *testing.T) {
		d := newFakeDriver()
		if _, err := FromCurrent(context.Background(), d, ""); err == nil {
			t.Fatal("expected error for empty detached session name")
		}
	})

	tests := []struct {
		name      string
		mutate    func(*fakeDriver)
		wantFatal bool
	}{
		{
			name:      "non-numeric window output is fatal",
			mutate:    func(d *fakeDriver) { d.windowOut = "x\n" },
			wantFatal: true,
		},
		{
			name:      "non-numeric pane output is fatal",
			mutate:    func(d *fakeDriver) { d.paneOut = "abc\n" },
			wantFatal: true,
		},
		{
			name:      "negative window index is fatal",
			mutate:    func(d *fakeDriver) { d.windowOut = "-1\n" },
			wantFatal: true,
		},
		{
			name:      "non-UTF8 session output is fatal",
			mutate:    func(d *fakeDriver) { d.sessionOut = "ma\xffin\n" },
			wantFatal: true,
		},
		{
			name:      "driver I/O failure is not fatal",
			mutate:    func(d *fakeDriver) { d.errs["current-window"] = errors.New("broken pipe") },
			wantFatal: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			tt.mutate(d)
			_, err := FromCurrent(context.Background(), d, "stagehand")
			if err == nil {
				t.Fatal("expected error")
			}
			var fatal *FatalError
			if got := errors.As(err, &fatal); got != tt.wantFatal {
				t.Errorf("errors.As(*FatalError): got %v, want %v (err: %v)", got, tt.wantFatal, err)
			}
		})
	}
}

func TestPrepareAndCleanup(t *testing.T) {
	t.Run("prepare orders create before flag", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)
		d.calls = nil

		if err := c.Prepare(context.Background()); err != nil {
			t.Fatalf("Prepare: %v", err)
		}

		want := []string{
			"start-detached-session stagehand",
			"set-remain-on-exit main:2 true",
		}
		if !slices.Equal(d.calls, want) {
			t.Errorf("calls: got %v, want %v", d.calls, want)
		}
	})

	t.Run("prepare then cleanup leaves no holding session", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)

		if err := c.Prepare(context.Background()); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if !d.sessions["stagehand"] {
			t.Fatal("holding session missing after Prepare")
		}
		if err := c.Cleanup(context.Background()); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
		if d.sessions["stagehand"] {
			t.Error("holding session still present after Cleanup")
		}
		last := d.calls[len(d.calls)-1]
		if last != "set-remain-on-exit main:2 false" {
			t.Errorf("last call: got %q, want remain-on-exit cleared", last)
		}
	})

	t.Run("prepare failure propagates and skips the flag", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)
		d.calls = nil
		d.errs["start-detached-session"] = errors.New("tmux unreachable")

		if err := c.Prepare(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if len(d.calls) != 1 {
			t.Errorf("calls after failed first step: got %v, want just the session create", d.calls)
		}
	})
}

func TestCreatePane(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		err      error
		wantPane int
		wantErr  bool
	}{
		{name: "numeric output", output: "7\n", wantPane: 7},
		{name: "no trailing newline", output: "3", wantPane: 3},
		{name: "non-numeric output", output: "abc\n", wantErr: true},
		{name: "empty output", output: "\n", wantErr: true},
		{name: "driver failure", output: "", err: errors.New("exit status 1"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			c := mustContext(t, d)
			d.createOut = tt.output
			d.errs["create-pane"] = tt.err

			pane, err := c.CreatePane(context.Background(), "htop")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				// Malformed output must stay an ordinary error.
				var fatal *FatalError
				if errors.As(err, &fatal) {
					t.Errorf("got FatalError %v, want ordinary error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreatePane: %v", err)
			}
			if pane != tt.wantPane {
				t.Errorf("pane: got %d, want %d", pane, tt.wantPane)
			}
		})
	}

	t.Run("anchors at the context pane", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)
		d.calls = nil

		if _, err := c.CreatePane(context.Background(), "htop"); err != nil {
			t.Fatalf("CreatePane: %v", err)
		}
		want := []string{"create-pane main:2.0 htop"}
		if !slices.Equal(d.calls, want) {
			t.Errorf("calls: got %v, want %v", d.calls, want)
		}
	})
}

func TestBreakPane(t *testing.T) {
	t.Run("issues break then remain-on-exit", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)
		d.calls = nil

		if err := c.BreakPane(context.Background(), 1, 4, "worker"); err != nil {
			t.Fatalf("BreakPane: %v", err)
		}
		want := []string{
			"break-pane main:2.1 -> stagehand:4 worker",
			"set-remain-on-exit stagehand:4 true",
		}
		if !slices.Equal(d.calls, want) {
			t.Errorf("calls: got %v, want %v", d.calls, want)
		}
	})

	t.Run("aborts before the flag when break fails", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)
		d.calls = nil
		d.errs["break-pane"] = errors.New("no such pane")

		if err := c.BreakPane(context.Background(), 1, 4, "worker"); err == nil {
			t.Fatal("expected error")
		}
		if len(d.calls) != 1 {
			t.Errorf("calls after failed break: got %v, want just break-pane", d.calls)
		}
	})
}

func TestJoinPane(t *testing.T) {
	t.Run("returns anchor pane plus one regardless of target", func(t *testing.T) {
		d := newFakeDriver()
		d.paneOut = "3\n"
		c := mustContext(t, d)

		for _, target := range []int{0, 4, 99} {
			pane, err := c.JoinPane(context.Background(), target)
			if err != nil {
				t.Fatalf("JoinPane(%d): %v", target, err)
			}
			if pane != 4 {
				t.Errorf("JoinPane(%d): got %d, want 4", target, pane)
			}
		}
	})

	t.Run("targets the anchor pane position", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)
		d.calls = nil

		if _, err := c.JoinPane(context.Background(), 5); err != nil {
			t.Fatalf("JoinPane: %v", err)
		}
		want := []string{"join-pane stagehand:5 -> main:2.0"}
		if !slices.Equal(d.calls, want) {
			t.Errorf("calls: got %v, want %v", d.calls, want)
		}
	})

	t.Run("propagates driver failure", func(t *testing.T) {
		d := newFakeDriver()
		c := mustContext(t, d)
		d.errs["join-pane"] = errors.New("no such window")

		if _, err := c.JoinPane(context.Background(), 5); err == nil {
			t.Fatal("expected error")
		}
	})
}
