// Package backup exports the whole log book as a single JSON document,
// optionally encrypts it with a passphrase, restores it into a store and
// uploads it to S3-compatible storage.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hyperengineering/loopz/internal/goals"
	"github.com/hyperengineering/loopz/internal/logbook"
	"github.com/hyperengineering/loopz/internal/metrics"
	"github.com/hyperengineering/loopz/internal/store"
	"github.com/hyperengineering/loopz/internal/streak"
)

// FormatVersion is the snapshot layout written by Export.
const FormatVersion = 1

var (
	// ErrInvalidSnapshot is returned for documents Restore cannot apply.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrPassphraseRequired is returned when opening an encrypted snapshot
	// without a passphrase.
	ErrPassphraseRequired = errors.New("snapshot is encrypted: passphrase required")
)

// Snapshot holds the raw persisted document of every key. A nil field means
// the key had never been written.
type Snapshot struct {
	Version       int             `json:"version"`
	ExportedAt    time.Time       `json:"exportedAt"`
	Logs          json.RawMessage `json:"logs,omitempty"`
	Goals         json.RawMessage `json:"goals,omitempty"`
	Streaks       json.RawMessage `json:"streaks,omitempty"`
	CustomMetrics json.RawMessage `json:"customMetrics,omitempty"`
}

func (s *Snapshot) field(key string) *json.RawMessage {
	switch key {
	case store.KeyLogs:
		return &s.Logs
	case store.KeyGoals:
		return &s.Goals
	case store.KeyStreaks:
		return &s.Streaks
	case store.KeyCustomMetrics:
		return &s.CustomMetrics
	}
	return nil
}

// Export reads every key from s.
func Export(ctx context.Context, s store.Store, now time.Time) (Snapshot, error) {
	snap := Snapshot{Version: FormatVersion, ExportedAt: now.UTC()}
	for _, key := range store.AllKeys {
		data, err := s.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("export %s: %w", key, err)
		}
		*snap.field(key) = json.RawMessage(data)
	}
	return snap, nil
}

// Restore replaces the contents of s with snap. Keys absent from the
// snapshot are deleted so the store matches the exported state. Every
// document is checked before the first write.
func Restore(ctx context.Context, s store.Store, snap Snapshot) error {
	if snap.Version < 1 || snap.Version > FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	for _, key := range store.AllKeys {
		raw := *snap.field(key)
		if raw == nil {
			continue
		}
		if err := validateDocument(key, raw); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, key, err)
		}
	}

	for _, key := range store.AllKeys {
		raw := *snap.field(key)
		if raw == nil {
			if err := s.Delete(ctx, key); err != nil {
				return fmt.Errorf("restore %s: %w", key, err)
			}
			continue
		}
		if err := s.Put(ctx, key, raw); err != nil {
			return fmt.Errorf("restore %s: %w", key, err)
		}
	}

	slog.Info("snapshot restored",
		"component", "backup",
		"exported_at", snap.ExportedAt,
	)
	return nil
}

// validateDocument decodes raw into the type its key holds.
func validateDocument(key string, raw []byte) error {
	var err error
	switch key {
	case store.KeyLogs:
		_, err = logbook.Decode(raw)
	case store.KeyGoals:
		_, _, err = goals.Decode(raw)
	case store.KeyStreaks:
		_, err = streak.Decode(raw)
	case store.KeyCustomMetrics:
		_, err = metrics.Decode(raw)
	}
	return err
}

// Marshal renders snap as indented JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Parse decodes a plaintext snapshot document.
func Parse(data []byte) (Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return Snapshot{}, fmt.Errorf("%w: not valid JSON", ErrInvalidSnapshot)
	}
	if v := gjson.GetBytes(data, "version"); !v.Exists() || v.Type != gjson.Number {
		return Snapshot{}, fmt.Errorf("%w: missing version", ErrInvalidSnapshot)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return snap, nil
}

// Seal marshals snap, encrypting it when passphrase is non-empty.
func Seal(snap Snapshot, passphrase string) ([]byte, error) {
	data, err := snap.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if passphrase == "" {
		return data, nil
	}
	return Encrypt(data, passphrase)
}

// Open is the inverse of Seal. Plain JSON is parsed directly; anything else
// is treated as ciphertext and needs passphrase.
func Open(data []byte, passphrase string) (Snapshot, error) {
	if gjson.ValidBytes(data) {
		return Parse(data)
	}
	if passphrase == "" {
		return Snapshot{}, ErrPassphraseRequired
	}
	plain, err := Decrypt(data, passphrase)
	if err != nil {
		return Snapshot{}, err
	}
	return Parse(plain)
}
