package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return newTestStoreAt(t, t.TempDir())
}

func newTestStoreAt(t *testing.T, dataDir string) *Store {
	t.Helper()

	store, _, err := Open(dataDir)
	require.NoError(t, err, "open store at %q", dataDir)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func mustSaveMessage(t *testing.T, store *Store, peerID, direction, content string, timestamp int64) string {
	t.Helper()

	id, err := store.SaveMessage(context.Background(), Message{
		PeerID:    peerID,
		Direction: direction,
		Content:   content,
		Timestamp: timestamp,
	})
	require.NoError(t, err, "save message for %q", peerID)
	return id
}
