package metrics

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperengineering/loopz/internal/types"
	"github.com/tidwall/gjson"
)

// CurrentVersion is the envelope version written by this build.
const CurrentVersion = 3

// ErrCorruptState is returned by Decode for blobs that are not a metrics
// envelope.
var ErrCorruptState = errors.New("corrupt metrics state")

// State is the persisted custom-metrics envelope.
type State struct {
	Version int                  `json:"version"`
	Metrics []types.CustomMetric `json:"metrics"`
}

// DefaultState is a fresh install: the system metrics at the current version.
func DefaultState() State {
	return State{Version: CurrentVersion, Metrics: SystemMetrics()}
}

// Migration upgrades a state to Version. Apply must be pure.
type Migration struct {
	Version int
	Name    string
	Apply   func(State) State
}

// Migrations is the ordered upgrade chain.
var Migrations = []Migration{
	{Version: 1, Name: "seed system metrics", Apply: seedSystemMetrics},
	{Version: 2, Name: "inject missing system metrics", Apply: injectSystemMetrics},
	{Version: 3, Name: "refresh system metric copy", Apply: func(s State) State {
		// v2 states may predate a system metric too.
		return refreshSystemCopy(injectSystemMetrics(s))
	}},
}

// Migrate applies every migration newer than s.Version, in order. A state
// with no metrics list restarts from version 0. The second result reports
// whether anything was applied.
func Migrate(s State) (State, bool) {
	if s.Metrics == nil {
		s.Version = 0
	}
	applied := false
	for _, m := range Migrations {
		if m.Version <= s.Version {
			continue
		}
		s = m.Apply(s)
		s.Version = m.Version
		applied = true
	}
	return s, applied
}

// Decode parses a persisted envelope without migrating it.
func Decode(data []byte) (State, error) {
	if !gjson.ValidBytes(data) {
		return State{}, fmt.Errorf("%w: invalid JSON", ErrCorruptState)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return State{}, fmt.Errorf("%w: not an object", ErrCorruptState)
	}

	s := State{Version: int(root.Get("version").Int())}
	raw := root.Get("metrics")
	if raw.Exists() && !raw.IsArray() {
		return State{}, fmt.Errorf("%w: metrics is not a list", ErrCorruptState)
	}
	if raw.Exists() {
		if err := json.Unmarshal([]byte(raw.Raw), &s.Metrics); err != nil {
			return State{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		if s.Metrics == nil {
			s.Metrics = []types.CustomMetric{}
		}
	}
	return s, nil
}

// seedSystemMetrics replaces a pre-versioned state with the defaults.
func seedSystemMetrics(State) State {
	return State{Metrics: SystemMetrics()}
}

// injectSystemMetrics prepends any system metric whose id is missing.
func injectSystemMetrics(s State) State {
	present := make(map[string]bool, len(s.Metrics))
	for _, m := range s.Metrics {
		present[m.ID] = true
	}
	var missing []types.CustomMetric
	for _, sm := range SystemMetrics() {
		if !present[sm.ID] {
			missing = append(missing, sm)
		}
	}
	if len(missing) == 0 {
		return s
	}
	s.Metrics = append(missing, s.Metrics...)
	return s
}

// refreshSystemCopy overwrites the descriptive fields of system metrics
// with the current built-in definitions. User choices (weeklyGoal,
// isActive, color) are kept.
func refreshSystemCopy(s State) State {
	out := make([]types.CustomMetric, len(s.Metrics))
	for i, m := range s.Metrics {
		if def, ok := SystemMetric(m.ID); ok && m.IsSystemMetric {
			m.Name = def.Name
			m.Description = def.Description
			m.UnitType = def.UnitType
			m.Category = def.Category
			m.LinkedField = def.LinkedField
		}
		out[i] = m
	}
	s.Metrics = out
	return s
}
