package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/feedql/internal/store"
)

// TempStore opens a fresh index database in a temp dir and closes it when
// the test ends. Returns the store and the database path, so tests can also
// open read-only handles on the same file.
func TempStore(t *testing.T) (*store.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "index.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})
	return st, path
}
