// Package state persists the last-sync watermark: the timestamp below which
// messages are considered already processed.
package state

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/avigneron/winesync/internal/entity"
)

// Store keeps the watermark as one RFC-3339 line in a flat file. A missing
// file means no watermark, so all available messages are processed.
type Store struct {
	Path   string
	Logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{Path: path, Logger: logger}
}

// Load returns the stored watermark and whether one exists. Corrupt files
// are logged and treated as absent.
func (s *Store) Load() (time.Time, bool) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.Logger.Warn("state.watermark.read_error", "path", s.Path, "error", err)
		}
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		s.Logger.Warn("state.watermark.parse_error", "path", s.Path, "error", err)
		return time.Time{}, false
	}
	return t, true
}

// Save writes t as the new watermark. Failures are logged, never returned:
// a watermark write must not take the run down.
func (s *Store) Save(t time.Time) {
	value := t.UTC().Format(time.RFC3339)
	if err := os.WriteFile(s.Path, []byte(value+"\n"), 0o644); err != nil {
		s.Logger.Error("state.watermark.write_error", "path", s.Path, "error", err)
		return
	}
	s.Logger.Info("state.watermark.saved", "path", s.Path, "watermark", value)
}

// Advance computes the latest order date in the batch and saves it when it
// moves the watermark forward. The watermark never regresses, even when an
// out-of-order date shows up in a batch; orders whose date failed to parse
// are ignored here.
func (s *Store) Advance(orders []entity.WineOrder) {
	var max time.Time
	for _, order := range orders {
		if order.Date.After(max) {
			max = order.Date
		}
	}
	if max.IsZero() {
		return
	}
	if prev, ok := s.Load(); ok && !max.After(prev) {
		s.Logger.Info("state.watermark.unchanged", "watermark", prev.UTC().Format(time.RFC3339))
		return
	}
	s.Save(max)
}
