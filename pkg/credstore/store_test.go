package credstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/foliodocs/folio/pkg/credstore"
	"github.com/foliodocs/folio/pkg/session"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*credstore.Store, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := credstore.Open(filepath.Join(dir, "state.db"), filepath.Join(dir, "store.key"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, dir
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)

	pair := session.Pair{AccessToken: "access-abc", RefreshToken: "refresh-xyz"}
	require.NoError(t, store.Save(pair))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, pair, got)
}

func TestLoadEmpty(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)

	got, err := store.Load()
	require.NoError(t, err)
	require.True(t, got.IsZero())
}

func TestClear(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)

	require.NoError(t, store.Save(session.Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, store.Clear())

	got, err := store.Load()
	require.NoError(t, err)
	require.True(t, got.IsZero())

	// Clearing an empty store is a no-op, not an error.
	require.NoError(t, store.Clear())
}

func TestSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state.db")
	keyPath := filepath.Join(dir, "store.key")

	store, err := credstore.Open(dbPath, keyPath)
	require.NoError(t, err)

	pair := session.Pair{AccessToken: "persisted-access", RefreshToken: "persisted-refresh"}
	require.NoError(t, store.Save(pair))
	require.NoError(t, store.Close())

	reopened, err := credstore.Open(dbPath, keyPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load()
	require.NoError(t, err)
	require.Equal(t, pair, got)
}

func TestWrongKeyFailsToUnseal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state.db")

	store, err := credstore.Open(dbPath, filepath.Join(dir, "key-one"))
	require.NoError(t, err)
	require.NoError(t, store.Save(session.Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, store.Close())

	other, err := credstore.Open(dbPath, filepath.Join(dir, "key-two"))
	require.NoError(t, err)
	defer other.Close()

	_, err = other.Load()
	require.Error(t, err)
}

func TestRejectsTruncatedKeyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "short.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("too short"), 0o600))

	_, err := credstore.Open(filepath.Join(dir, "state.db"), keyPath)
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	mem := credstore.NewMemory()

	got, err := mem.Load()
	require.NoError(t, err)
	require.True(t, got.IsZero())

	pair := session.Pair{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, mem.Save(pair))

	got, err = mem.Load()
	require.NoError(t, err)
	require.Equal(t, pair, got)

	require.NoError(t, mem.Clear())
	got, err = mem.Load()
	require.NoError(t, err)
	require.True(t, got.IsZero())
}
