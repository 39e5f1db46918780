package mux

import "context"

// CallRecorder receives one observation per driver call.
// *otel.Metrics satisfies this; tests can substitute their own.
type CallRecorder interface {
	RecordDriverCall(ctx context.Context, op string, err error)
}

// Instrument wraps a Driver so that every call is recorded on rec.
func Instrument(d Driver, rec CallRecorder) Driver {
	return &instrumented{d: d, rec: rec}
}

type instrumented struct {
	d   Driver
	rec CallRecorder
}

func (i *instrumented) Name() string { return i.d.Name() }

func (i *instrumented) CurrentSession(ctx context.Context) (string, error) {
	out, err := i.d.CurrentSession(ctx)
	i.rec.RecordDriverCall(ctx, "current-session", err)
	return out, err
}

func (i *instrumented) CurrentWindow(ctx context.Context) (string, error) {
	out, err := i.d.CurrentWindow(ctx)
	i.rec.RecordDriverCall(ctx, "current-window", err)
	return out, err
}

func (i *instrumented) CurrentPane(ctx context.Context) (string, error) {
	out, err := i.d.CurrentPane(ctx)
	i.rec.RecordDriverCall(ctx, "current-pane", err)
	return out, err
}

func (i *instrumented) StartDetachedSession(ctx context.Context, name string) error {
	err := i.d.StartDetachedSession(ctx, name)
	i.rec.RecordDriverCall(ctx, "start-detached-session", err)
	return err
}

func (i *instrumented) KillSession(ctx context.Context, name string) error {
	err := i.d.KillSession(ctx, name)
	i.rec.RecordDriverCall(ctx, "kill-session", err)
	return err
}

func (i *instrumented) ListSessions(ctx context.Context) ([]string, error) {
	out, err := i.d.ListSessions(ctx)
	i.rec.RecordDriverCall(ctx, "list-sessions", err)
	return out, err
}

func (i *instrumented) ListWindows(ctx context.Context, session string) ([]Window, error) {
	out, err := i.d.ListWindows(ctx, session)
	i.rec.RecordDriverCall(ctx, "list-windows", err)
	return out, err
}

func (i *instrumented) SetRemainOnExit(ctx context.Context, session string, window int, on bool) error {
	err := i.d.SetRemainOnExit(ctx, session, window, on)
	i.rec.RecordDriverCall(ctx, "set-remain-on-exit", err)
	return err
}

func (i *instrumented) BreakPane(ctx context.Context, session string, window, sourcePane int, destSession string, destWindow int, label string) error {
	err := i.d.BreakPane(ctx, session, window, sourcePane, destSession, destWindow, label)
	i.rec.RecordDriverCall(ctx, "break-pane", err)
	return err
}

func (i *instrumented) JoinPane(ctx context.Context, srcSession string, srcWindow int, destSession string, destWindow, destPane int) error {
	err := i.d.JoinPane(ctx, srcSession, srcWindow, destSession, destWindow, destPane)
	i.rec.RecordDriverCall(ctx, "join-pane", err)
	return err
}

func (i *instrumented) CreatePane(ctx context.Context, session string, window, anchorPane int, command string) (string, error) {
	out, err := i.d.CreatePane(ctx, session, window, anchorPane, command)
	i.rec.RecordDriverCall(ctx, "create-pane", err)
	return out, err
}
