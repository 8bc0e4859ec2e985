package draftstore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vendoreval/internal/draftstore"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := draftstore.New(t.TempDir())
	require.NoError(t, err)

	data := json.RawMessage(`{"experienceScore":7,"experienceRemark":"strong"}`)
	require.NoError(t, store.Save(1, 2, data))

	draft, err := store.Load(1, 2)
	require.NoError(t, err)
	require.NotNil(t, draft)
	require.Equal(t, int64(1), draft.VendorID)
	require.Equal(t, int64(2), draft.EvaluatorID)
	require.JSONEq(t, string(data), string(draft.Data))
	require.WithinDuration(t, time.Now(), draft.SavedAt, 5*time.Second)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	store, err := draftstore.New(t.TempDir())
	require.NoError(t, err)

	draft, err := store.Load(9, 9)
	require.NoError(t, err)
	require.Nil(t, draft)
}

func TestLoadIgnoresStaleDraft(t *testing.T) {
	dir := t.TempDir()
	store, err := draftstore.New(dir)
	require.NoError(t, err)

	stale := draftstore.Draft{
		VendorID:    1,
		EvaluatorID: 2,
		Data:        json.RawMessage(`{}`),
		SavedAt:     time.Now().Add(-25 * time.Hour),
	}
	payload, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft-1-2.json"), payload, 0o644))

	draft, err := store.Load(1, 2)
	require.NoError(t, err)
	require.Nil(t, draft)
}

func TestLoadIgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := draftstore.New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft-1-2.json"), []byte("not json"), 0o644))

	draft, err := store.Load(1, 2)
	require.NoError(t, err)
	require.Nil(t, draft)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := draftstore.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(1, 2, json.RawMessage(`{}`)))
	require.NoError(t, store.Delete(1, 2))
	require.NoError(t, store.Delete(1, 2))

	draft, err := store.Load(1, 2)
	require.NoError(t, err)
	require.Nil(t, draft)
}

func TestAutosaverFlushWritesLatest(t *testing.T) {
	store, err := draftstore.New(t.TempDir())
	require.NoError(t, err)

	saver := draftstore.NewAutosaver(store, 1, 2)
	saver.Set(json.RawMessage(`{"experienceScore":3}`))
	saver.Set(json.RawMessage(`{"experienceScore":8}`))
	require.NoError(t, saver.Flush())

	draft, err := store.Load(1, 2)
	require.NoError(t, err)
	require.NotNil(t, draft)
	require.JSONEq(t, `{"experienceScore":8}`, string(draft.Data))
}

func TestAutosaverFlushWithoutPending(t *testing.T) {
	store, err := draftstore.New(t.TempDir())
	require.NoError(t, err)

	saver := draftstore.NewAutosaver(store, 1, 2)
	require.NoError(t, saver.Flush())

	draft, err := store.Load(1, 2)
	require.NoError(t, err)
	require.Nil(t, draft)
}
