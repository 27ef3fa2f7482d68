package preferences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kylycht/fxpad/model"
	"github.com/kylycht/fxpad/storage"
	"github.com/kylycht/fxpad/storage/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenBlobs struct {
	storage.BlobStore
}

func (brokenBlobs) WriteText(context.Context, string, string) error {
	return errors.New("permission denied")
}

func newStore(t *testing.T) (*Store, storage.BlobStore) {
	t.Helper()
	blobs, err := file.New(t.TempDir())
	require.NoError(t, err)
	return New(blobs, nil), blobs
}

func TestStore_LoadDefaults(t *testing.T) {
	s, blobs := newStore(t)
	ctx := context.Background()

	assert.Equal(t, model.DefaultPreferences(), s.Load(ctx))

	require.NoError(t, blobs.WriteText(ctx, storage.PreferencesKey, "garbage"))
	assert.Equal(t, model.DefaultPreferences(), s.Load(ctx))
}

func TestStore_SaveAndLoad(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1_760_000_000_000)
	s.now = func() time.Time { return now }

	saved, err := s.Save(ctx, model.UserPreferences{
		SelectedCodes: []string{"USD", "JPY"},
		ActiveCode:    "JPY",
		InputText:     "12.",
	})
	require.NoError(t, err)
	assert.True(t, now.Equal(saved.LastSaved))

	got := s.Load(ctx)
	assert.Equal(t, []string{"USD", "JPY"}, got.SelectedCodes)
	assert.Equal(t, "JPY", got.ActiveCode)
	assert.Equal(t, "12.", got.InputText)
	assert.True(t, now.Equal(got.LastSaved))
}

func TestStore_SaveFailure(t *testing.T) {
	blobs, err := file.New(t.TempDir())
	require.NoError(t, err)
	s := New(brokenBlobs{blobs}, nil)

	_, err = s.Save(context.Background(), model.DefaultPreferences())
	assert.Error(t, err)

	ok, err := s.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ExistsAndClear(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Clear(ctx))

	_, err = s.Save(ctx, model.DefaultPreferences())
	require.NoError(t, err)

	ok, err = s.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	ok, err = s.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
