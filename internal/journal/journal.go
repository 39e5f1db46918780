// Package journal records stagehand operations in an append-only JSONL file.
//
// Each line is one Entry. The journal is best-effort operational history:
// readers skip lines they cannot parse rather than failing, since a crash
// mid-write can leave a truncated final line.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Operation names recorded in the journal.
const (
	OpPrepare   = "prepare"
	OpCleanup   = "cleanup"
	OpCreate    = "create"
	OpPark      = "park"
	OpRecall    = "recall"
	OpPaneDeath = "pane-death"
)

// Entry is one journaled operation.
type Entry struct {
	TS      time.Time `json:"ts"`
	Op      string    `json:"op"`
	Session string    `json:"session,omitempty"`
	Window  int       `json:"window,omitempty"`
	Pane    int       `json:"pane,omitempty"`
	Label   string    `json:"label,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Validate checks the fields every entry must carry.
func (e Entry) Validate() error {
	if e.Op == "" {
		return fmt.Errorf("op is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}

// DefaultPath returns the journal location under the user state directory.
func DefaultPath() string {
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		return filepath.Join(stateDir, "stagehand", "journal.jsonl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "stagehand", "journal.jsonl")
	}
	return filepath.Join(home, ".local", "state", "stagehand", "journal.jsonl")
}

// Append writes one entry to the journal at path, creating the file and its
// directory as needed.
func Append(path string, e Entry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("journal entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(e); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	return nil
}

// ReadAll returns all parseable entries in the journal at path, oldest
// first. A missing journal is an empty history, not an error.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if e.Validate() != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}
