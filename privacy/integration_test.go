package privacy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toxprivacy/config"
	"toxprivacy/core"
	"toxprivacy/crypto"
	"toxprivacy/events"
	"toxprivacy/nospam"
	"toxprivacy/storage"
)

var (
	_ Settings = (*config.Store)(nil)
	_ Core     = (*core.Core)(nil)
	_ History  = (*storage.Store)(nil)
)

func TestFormAgainstPersistentStores(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()

	settings, err := config.Open(dataDir)
	require.NoError(t, err)
	keys, err := crypto.EnsureKeyPair(settings.IdentityKeyPath())
	require.NoError(t, err)
	bus := events.NewBus()
	c, err := core.New(keys, settings, bus)
	require.NoError(t, err)
	history, _, err := storage.Open(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })

	id, err := history.SaveMessage(ctx, storage.Message{PeerID: "peer", Direction: storage.DirectionOutgoing, Content: "hi"})
	require.NoError(t, err)
	require.NoError(t, history.AddReceipt(ctx, storage.Receipt{MessageID: id, PeerID: "peer"}))

	answer := false
	form, err := New(Deps{
		Settings: settings,
		Core:     c,
		History:  history,
		Bus:      bus,
		Confirm:  ConfirmFunc(func(string, string) bool { return answer }),
	})
	require.NoError(t, err)
	defer form.Close()

	var seen []nospam.Value
	form.OnNospamChanged(func(v nospam.Value) { seen = append(seen, v) })

	applied, err := form.NospamEditingFinished("1A2B3C4D")
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, []nospam.Value{0x1A2B3C4D}, seen)

	applied, err = form.NospamEditingFinished("zzzzzzzz")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, form.SetTypingNotification(false))
	require.NoError(t, form.BlacklistChanged("a\nb\nc"))

	// declined: flag off, history kept, receipts dropped
	erased, err := form.SetKeepHistory(ctx, false)
	require.NoError(t, err)
	assert.False(t, erased)
	count, err := history.CountMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	pending, err := history.PendingReceipts(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	answer = true
	erased, err = form.SetKeepHistory(ctx, false)
	require.NoError(t, err)
	assert.True(t, erased)
	count, err = history.CountMessages(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	reopened, err := config.Open(dataDir)
	require.NoError(t, err)
	assert.Equal(t, nospam.Value(0x1A2B3C4D), reopened.Nospam())
	assert.False(t, reopened.EnableLogging())
	assert.False(t, reopened.TypingNotification())
	assert.Equal(t, []string{"a", "b", "c"}, reopened.BlackList())
	assert.Equal(t, filepath.Join(dataDir, "keys", "identity.pem"), reopened.IdentityKeyPath())

	view := form.Show()
	assert.Equal(t, "1A2B3C4D", view.Nospam)
	assert.Equal(t, "a\nb\nc", view.BlackList)
	assert.Equal(t, c.SelfID().String()[64:72], view.Nospam)
}
