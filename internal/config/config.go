// Package config loads stagehand configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (STAGEHAND_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. Explicit path passed to Load
//  2. stagehand.yml in current directory
//  3. ~/.config/stagehand/stagehand.yml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all stagehand configuration.
type Config struct {
	General GeneralConfig         `yaml:"general"`
	Procs   map[string]ProcConfig `yaml:"procs"`

	// Journal is the path of the JSONL operation journal. Empty means the
	// default state-directory location.
	Journal string `yaml:"journal"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// ConfigFile is the path of the file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// GeneralConfig holds holding-session behavior.
type GeneralConfig struct {
	// DetachedSessionName names the hidden holding session stagehand owns.
	DetachedSessionName string `yaml:"detached_session_name"`

	// KillExistingSession replaces a leftover holding session from a
	// previous run instead of refusing to start.
	KillExistingSession bool `yaml:"kill_existing_session"`
}

// ProcConfig describes one named process that can be opened in a pane.
type ProcConfig struct {
	// Shell is a full shell command line. Takes precedence over Cmd.
	Shell string `yaml:"shell"`

	// Cmd is an argv-style command, joined into a shell line.
	Cmd []string `yaml:"cmd"`

	Cwd     string            `yaml:"cwd"`
	Env     map[string]string `yaml:"env"`
	AddPath []string          `yaml:"add_path"`

	// Autostart opens this proc automatically during `stagehand up`.
	Autostart bool `yaml:"autostart"`

	// Stop is the signal number used by external supervision tooling.
	Stop int `yaml:"stop"`

	Description string   `yaml:"description"`
	Categories  []string `yaml:"categories"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			DetachedSessionName: "stagehand",
		},
	}
}

// Load reads configuration from path (or the search locations when path is
// empty) and applies environment overrides. A missing search-location file
// is fine; an explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, found, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", found, err)
		}
		cfg.ConfigFile = found
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)
	applyProcDefaults(cfg)

	return cfg, nil
}

// readConfigFile resolves and reads the config file. Returns nil data when
// no file exists and none was explicitly requested.
func readConfigFile(path string) ([]byte, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("reading config file %s: %w", path, err)
		}
		return data, path, nil
	}

	if data, err := os.ReadFile("stagehand.yml"); err == nil {
		return data, "stagehand.yml", nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "stagehand", "stagehand.yml")
		if data, err := os.ReadFile(p); err == nil {
			return data, p, nil
		}
	}

	return nil, "", nil
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg, file *Config) {
	if file.General.DetachedSessionName != "" {
		cfg.General.DetachedSessionName = file.General.DetachedSessionName
	}
	if file.General.KillExistingSession {
		cfg.General.KillExistingSession = true
	}
	if file.Procs != nil {
		cfg.Procs = file.Procs
	}
	if file.Journal != "" {
		cfg.Journal = file.Journal
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("STAGEHAND_DETACHED_SESSION"); v != "" {
		cfg.General.DetachedSessionName = v
	}
	if v := os.Getenv("STAGEHAND_KILL_EXISTING"); v == "true" || v == "1" {
		cfg.General.KillExistingSession = true
	}
	if v := os.Getenv("STAGEHAND_JOURNAL"); v != "" {
		cfg.Journal = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}

// applyProcDefaults fills per-proc defaults: cwd falls back to the current
// directory, stop to SIGKILL.
func applyProcDefaults(cfg *Config) {
	wd, _ := os.Getwd()
	for name, proc := range cfg.Procs {
		if proc.Cwd == "" {
			proc.Cwd = wd
		}
		if proc.Stop == 0 {
			proc.Stop = 9
		}
		cfg.Procs[name] = proc
	}
}

// CommandLine builds the single shell line handed to the multiplexer for
// this proc: env exports, PATH additions, a cd into the working directory,
// then the command itself.
func (p ProcConfig) CommandLine() string {
	var parts []string

	keys := make([]string, 0, len(p.Env))
	for k := range p.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("export %s=%s", k, shellQuote(p.Env[k])))
	}

	if len(p.AddPath) > 0 {
		quoted := make([]string, len(p.AddPath))
		for i, dir := range p.AddPath {
			quoted[i] = shellQuote(dir)
		}
		parts = append(parts, fmt.Sprintf("export PATH=\"$PATH\":%s", strings.Join(quoted, ":")))
	}

	if p.Cwd != "" {
		parts = append(parts, "cd "+shellQuote(p.Cwd))
	}

	command := p.Shell
	if command == "" {
		command = strings.Join(p.Cmd, " ")
	}
	parts = append(parts, command)

	return strings.Join(parts, " && ")
}

// shellQuote single-quotes s for a POSIX shell.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&|;<>(){}*?[]~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
