package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

// Applier receives accepted snapshots, i.e. the scheduler picking up a
// new poll interval. Application failure triggers a rollback of both the
// persisted document and the in-memory snapshot.
type Applier interface {
	Reschedule(interval time.Duration) error
}

// Effect classifies how a changed field takes effect
type Effect string

// change classifications reported per updated field
const (
	EffectLive    Effect = "applied live"
	EffectRestart Effect = "requires restart"
)

// FieldChange describes one changed field of an accepted update
type FieldChange struct {
	Field  string `json:"field"`
	Effect Effect `json:"effect"`
}

// UpdateResult is the structured outcome of an update request
type UpdateResult struct {
	Accepted       bool          `json:"accepted"`
	Message        string        `json:"message"`
	Changes        []FieldChange `json:"changes,omitempty"`
	RollbackFailed bool          `json:"rollback_failed,omitempty"`
}

// Manager is the single source of truth for the active configuration.
// It holds exactly one live snapshot; updates are all-or-nothing and
// readers always see either the fully-old or the fully-new state.
type Manager struct {
	path    string
	applier Applier

	mu      sync.RWMutex // guards current
	current *Config

	updateMu sync.Mutex // serializes updates, independent of reads
}

// NewManager creates a manager around an already loaded config and its
// file path
func NewManager(path string, cfg *Config) *Manager {
	return &Manager{path: path, current: cfg}
}

// SetApplier registers the component that consumes accepted snapshots.
// Wired after construction because the scheduler needs the manager too.
func (m *Manager) SetApplier(a Applier) {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()
	m.applier = a
}

// Snapshot returns the live config. The returned value is a deep copy,
// callers can't mutate the manager's state through it.
func (m *Manager) Snapshot() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// GetServerConfig returns the live server binding and timeout
func (m *Manager) GetServerConfig() (listen string, timeout time.Duration) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.GetServerConfig()
}

// ApplyUpdate validates a candidate config, persists it with a
// backup-write-verify discipline, and swaps the live snapshot. On any
// failure after validation the previous document and snapshot are
// restored. A failed restore is flagged for operator attention since it
// can leave persisted and in-memory state mismatched.
func (m *Manager) ApplyUpdate(candidate *Config) UpdateResult {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	candidate = candidate.Clone()
	candidate.applyDefaults()

	// validating: reject without touching anything
	if err := candidate.Validate(); err != nil {
		lgr.Printf("[WARN] config update rejected: %v", err)
		return UpdateResult{Accepted: false, Message: err.Error()}
	}

	old := m.Snapshot()
	changes := classifyChanges(old, candidate)
	if len(changes) == 0 {
		return UpdateResult{Accepted: true, Message: "no changes"}
	}

	// backing up: keep the current persisted document retrievable until
	// the new one is confirmed live
	backup, err := os.ReadFile(m.path)
	if err != nil && !os.IsNotExist(err) {
		return UpdateResult{Accepted: false, Message: fmt.Sprintf("backup current config: %v", err)}
	}
	if backup != nil {
		if err := os.WriteFile(m.path+".bak", backup, 0o600); err != nil {
			return UpdateResult{Accepted: false, Message: fmt.Sprintf("write config backup: %v", err)}
		}
	}

	// writing: stage to a temp file, verify the bytes made it to disk
	// intact, then atomically replace
	if err := m.writeVerified(candidate); err != nil {
		return UpdateResult{Accepted: false, Message: err.Error()}
	}

	// applying: swap the live snapshot and reschedule the poll loop
	m.mu.Lock()
	m.current = candidate
	m.mu.Unlock()

	if m.applier != nil {
		if err := m.applier.Reschedule(candidate.Interval()); err != nil {
			lgr.Printf("[WARN] config apply failed, rolling back: %v", err)
			return m.rollback(old, backup, err)
		}
	}

	lgr.Printf("[INFO] config updated, %d field(s) changed", len(changes))
	return UpdateResult{Accepted: true, Message: "configuration saved", Changes: changes}
}

// writeVerified marshals the config, stages it next to the target path,
// reads it back to confirm the write and renames it into place
func (m *Manager) writeVerified(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".config-*.yml")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write staging file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}

	// read back and compare, defends against partial writes
	written, err := os.ReadFile(tmpName) //nolint:gosec // path built above
	if err != nil {
		return fmt.Errorf("verify staging file: %w", err)
	}
	if !bytes.Equal(written, data) {
		return fmt.Errorf("staging file content mismatch, write was incomplete")
	}

	if err := os.Rename(tmpName, m.path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}

// rollback restores the previous snapshot and persisted document after a
// failed application
func (m *Manager) rollback(old *Config, backup []byte, cause error) UpdateResult {
	m.mu.Lock()
	m.current = old
	m.mu.Unlock()

	restore := func() error {
		if backup == nil {
			return os.Remove(m.path) // nothing was persisted before this update
		}
		return os.WriteFile(m.path, backup, 0o600)
	}
	if err := restore(); err != nil {
		lgr.Printf("[ERROR] config rollback failed, persisted and in-memory state differ: %v", err)
		return UpdateResult{
			Accepted:       false,
			Message:        fmt.Sprintf("apply failed (%v) and restoring previous config failed (%v), operator attention required", cause, err),
			RollbackFailed: true,
		}
	}

	return UpdateResult{Accepted: false, Message: fmt.Sprintf("apply failed, previous configuration restored: %v", cause)}
}

// classifyChanges diffs two configs field by field. Fields consumed on
// every cycle or request apply live; fields bound at process start are
// recorded but need a restart.
func classifyChanges(old, next *Config) []FieldChange {
	var changes []FieldChange

	add := func(field string, effect Effect, changed bool) {
		if changed {
			changes = append(changes, FieldChange{Field: field, Effect: effect})
		}
	}

	add("server.listen", EffectRestart, old.Server.Listen != next.Server.Listen)
	add("server.timeout", EffectRestart, old.Server.Timeout != next.Server.Timeout)
	add("server.base_url", EffectRestart, old.Server.BaseURL != next.Server.BaseURL)
	add("database", EffectRestart, old.Database != next.Database)
	add("log_file", EffectRestart, old.LogFile != next.LogFile)
	add("browser", EffectRestart, old.Browser != next.Browser) // fetcher session is built at startup

	add("poll.interval_minutes", EffectLive, old.Poll.IntervalMinutes != next.Poll.IntervalMinutes)
	add("poll", EffectLive, old.Poll != next.Poll && old.Poll.IntervalMinutes == next.Poll.IntervalMinutes)
	add("currency", EffectLive, old.Currency != next.Currency)
	add("targets", EffectLive, !reflect.DeepEqual(old.Targets, next.Targets))

	return changes
}
