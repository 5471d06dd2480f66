package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/sqlstore/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	storetest.Run(t, func(t *testing.T) model.Backend {
		store, err := NewStore("", nil)
		require.NoError(t, err)
		store.Now = storetest.NewClock().Now
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestSnapshotTo(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "invite.db")
	store, err := NewStore(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.InsertGuestbookEntry(model.GuestbookEntry{Name: "Primo Juan", Message: "¡Que viva el amor!"})
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "backups", "snap.db")
	require.NoError(t, store.SnapshotTo(dst))
	// A second snapshot to the same path replaces the first.
	require.NoError(t, store.SnapshotTo(dst))

	_, err = os.Stat(dst + ".tmp")
	assert.True(t, os.IsNotExist(err))

	restored, err := NewStore(dst, nil)
	require.NoError(t, err)
	t.Cleanup(func() { restored.Close() })
	entries, err := restored.ListGuestbook(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Primo Juan", entries[0].Name)
}

func TestSnapshotTo_InMemoryStore(t *testing.T) {
	store, err := NewStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.SnapshotTo(filepath.Join(t.TempDir(), "snap.db"))
	assert.True(t, errors.Is(err, ErrInMemoryStore))
}
