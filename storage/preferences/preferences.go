// Package preferences persists the user's selection and anchor input
package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kylycht/fxpad/model"
	"github.com/kylycht/fxpad/service/metrics"
	"github.com/kylycht/fxpad/storage"
	"github.com/kylycht/fxpad/storage/codec"
	"github.com/rs/zerolog/log"
)

type Store struct {
	blobs   storage.BlobStore
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(blobs storage.BlobStore, m *metrics.Metrics) *Store {
	return &Store{blobs: blobs, metrics: m, now: time.Now}
}

// Load returns the saved preferences, or the defaults
// when nothing usable is stored
func (s *Store) Load(ctx context.Context) model.UserPreferences {
	text, err := s.blobs.ReadText(ctx, storage.PreferencesKey)
	if errors.Is(err, storage.ErrNotFound) {
		log.Debug().Msg("no saved preferences, using defaults")
		return model.DefaultPreferences()
	}
	if err != nil {
		log.Warn().Err(err).Msg("unable to read preferences, using defaults")
		return model.DefaultPreferences()
	}

	res := codec.DecodePreferences(text)
	if !res.OK() {
		log.Warn().Err(res.Reason).Msg("preferences are corrupt, using defaults")
	}
	return res.Or(model.DefaultPreferences())
}

// Save stamps the current time and persists p
func (s *Store) Save(ctx context.Context, p model.UserPreferences) (model.UserPreferences, error) {
	p.LastSaved = s.now()

	text, err := codec.EncodePreferences(p)
	if err != nil {
		return p, err
	}

	if err := s.blobs.WriteText(ctx, storage.PreferencesKey, text); err != nil {
		s.metrics.PersistFailed(storage.PreferencesKey)
		return p, fmt.Errorf("save preferences: %w", err)
	}

	log.Debug().Strs("selected", p.SelectedCodes).Str("active", p.ActiveCode).Msg("preferences saved")
	return p, nil
}

// Exists reports whether preferences were saved
func (s *Store) Exists(ctx context.Context) (bool, error) {
	return s.blobs.Exists(ctx, storage.PreferencesKey)
}

// Clear deletes the saved preferences
func (s *Store) Clear(ctx context.Context) error {
	return s.blobs.Delete(ctx, storage.PreferencesKey)
}
