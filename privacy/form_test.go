package privacy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toxprivacy/core"
	"toxprivacy/events"
	"toxprivacy/nospam"
)

type fakeSettings struct {
	logging   bool
	typing    bool
	blacklist []string
	err       error
}

func (s *fakeSettings) EnableLogging() bool { return s.logging }
func (s *fakeSettings) SetEnableLogging(v bool) error {
	if s.err != nil {
		return s.err
	}
	s.logging = v
	return nil
}
func (s *fakeSettings) TypingNotification() bool { return s.typing }
func (s *fakeSettings) SetTypingNotification(v bool) error {
	if s.err != nil {
		return s.err
	}
	s.typing = v
	return nil
}
func (s *fakeSettings) BlackList() []string { return s.blacklist }
func (s *fakeSettings) SetBlackList(lines []string) error {
	if s.err != nil {
		return s.err
	}
	s.blacklist = lines
	return nil
}

type fakeCore struct {
	nospam nospam.Value
	sets   int
	err    error
}

func (c *fakeCore) SetNospam(v nospam.Value) error {
	if c.err != nil {
		return c.err
	}
	c.sets++
	c.nospam = v
	return nil
}

func (c *fakeCore) SelfID() core.Identity { return core.Identity{Nospam: c.nospam} }

type fakeHistory struct {
	erased        int
	receiptsClear int
}

func (h *fakeHistory) EraseHistory(context.Context) error {
	h.erased++
	return nil
}

func (h *fakeHistory) ClearReceipts(context.Context) error {
	h.receiptsClear++
	return nil
}

type fixture struct {
	settings *fakeSettings
	core     *fakeCore
	history  *fakeHistory
	bus      *events.Bus
	asked    []string
	answer   bool
	form     *Form
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fx := &fixture{
		settings: &fakeSettings{logging: true, typing: true, blacklist: []string{}},
		core:     &fakeCore{nospam: 0x0BADF00D},
		history:  &fakeHistory{},
		bus:      events.NewBus(),
	}
	form, err := New(Deps{
		Settings: fx.settings,
		Core:     fx.core,
		History:  fx.history,
		Bus:      fx.bus,
		Confirm: ConfirmFunc(func(title, question string) bool {
			fx.asked = append(fx.asked, title+"|"+question)
			return fx.answer
		}),
		Random: func() nospam.Value { return 0x00C0FFEE },
	})
	require.NoError(t, err)
	t.Cleanup(form.Close)
	fx.form = form
	return fx
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(Deps{})
	require.Error(t, err)

	_, err = New(Deps{Settings: &fakeSettings{}, Core: &fakeCore{}, History: &fakeHistory{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmer")
}

func TestShow(t *testing.T) {
	fx := newFixture(t)
	fx.settings.typing = false
	fx.settings.blacklist = []string{"a", "", "c"}

	view := fx.form.Show()
	assert.Equal(t, View{
		Nospam:             "0BADF00D",
		TypingNotification: false,
		KeepHistory:        true,
		BlackList:          "a\n\nc",
	}, view)
}

func TestDisableHistoryDeclined(t *testing.T) {
	fx := newFixture(t)
	cleared := 0
	fx.form.OnReceiptsCleared(func() { cleared++ })

	erased, err := fx.form.SetKeepHistory(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, erased)

	assert.False(t, fx.settings.logging, "flag must persist as disabled")
	assert.Zero(t, fx.history.erased, "history must stay untouched")
	assert.Equal(t, 1, fx.history.receiptsClear)
	assert.Equal(t, 1, cleared)
	assert.Equal(t, []string{"Confirmation|Do you want to permanently delete all chat history?"}, fx.asked)
}

func TestDisableHistoryConfirmed(t *testing.T) {
	fx := newFixture(t)
	fx.answer = true

	erased, err := fx.form.SetKeepHistory(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, erased)
	assert.Equal(t, 1, fx.history.erased)
	assert.False(t, fx.settings.logging)
}

func TestEnableHistoryDoesNotPrompt(t *testing.T) {
	fx := newFixture(t)
	fx.settings.logging = false

	erased, err := fx.form.SetKeepHistory(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, erased)
	assert.True(t, fx.settings.logging)
	assert.Empty(t, fx.asked)
	assert.Zero(t, fx.history.receiptsClear)
}

func TestSetKeepHistorySaveFailure(t *testing.T) {
	fx := newFixture(t)
	fx.settings.err = errors.New("read-only")

	_, err := fx.form.SetKeepHistory(context.Background(), false)
	require.Error(t, err)
	assert.Empty(t, fx.asked)
	assert.Zero(t, fx.history.receiptsClear)
}

func TestSetTypingNotification(t *testing.T) {
	fx := newFixture(t)

	var changed []string
	fx.bus.Subscribe(events.SettingsChanged, func(p any) { changed = append(changed, p.(string)) })

	require.NoError(t, fx.form.SetTypingNotification(false))
	assert.False(t, fx.settings.typing)
	assert.Equal(t, []string{SettingTypingNotification}, changed)
}

func TestNospamEditingFinished(t *testing.T) {
	fx := newFixture(t)

	applied, err := fx.form.NospamEditingFinished("1A2B3C4D")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, nospam.Value(0x1A2B3C4D), fx.core.nospam)
}

func TestNospamEditingFinishedIgnoresInvalidHex(t *testing.T) {
	fx := newFixture(t)

	applied, err := fx.form.NospamEditingFinished("zzzzzzzz")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, nospam.Value(0x0BADF00D), fx.core.nospam, "prior nospam must be kept")
	assert.Zero(t, fx.core.sets)
}

func TestNospamEditingFinishedCoreError(t *testing.T) {
	fx := newFixture(t)
	fx.core.err = errors.New("boom")

	applied, err := fx.form.NospamEditingFinished("00000001")
	require.Error(t, err)
	assert.False(t, applied)
}

func TestNospamTextChanged(t *testing.T) {
	fx := newFixture(t)

	text, cursor := fx.form.NospamTextChanged("ABC", 2)
	assert.Equal(t, "00000ABC", text)
	assert.Equal(t, 2, cursor)
}

func TestRandomizeNospam(t *testing.T) {
	fx := newFixture(t)

	got, err := fx.form.RandomizeNospam()
	require.NoError(t, err)
	assert.Equal(t, "00C0FFEE", got)
	assert.Equal(t, nospam.Value(0x00C0FFEE), fx.core.nospam)
}

func TestBlacklistRoundTrip(t *testing.T) {
	fx := newFixture(t)

	for _, text := range []string{"a\nb\nc", "", "\n", "one\n\nthree\n"} {
		require.NoError(t, fx.form.BlacklistChanged(text))
		assert.Equal(t, text, fx.form.Show().BlackList)
	}

	require.NoError(t, fx.form.BlacklistChanged("a\nb\nc"))
	assert.Equal(t, []string{"a", "b", "c"}, fx.settings.blacklist)
}

func TestCloseUnsubscribes(t *testing.T) {
	fx := newFixture(t)

	fx.form.OnReceiptsCleared(func() {})
	fx.form.OnNospamChanged(func(nospam.Value) {})
	assert.Equal(t, 1, fx.bus.Subscribers(events.ReceiptsCleared))
	assert.Equal(t, 1, fx.bus.Subscribers(events.NospamChanged))

	fx.form.Close()
	fx.form.Close()
	assert.Zero(t, fx.bus.Subscribers(events.ReceiptsCleared))
	assert.Zero(t, fx.bus.Subscribers(events.NospamChanged))
}

func TestFormWithoutBus(t *testing.T) {
	form, err := New(Deps{
		Settings: &fakeSettings{},
		Core:     &fakeCore{},
		History:  &fakeHistory{},
		Confirm:  Answer(false),
	})
	require.NoError(t, err)

	form.OnReceiptsCleared(func() { t.Fatal("unexpected call") })
	_, err = form.SetKeepHistory(context.Background(), false)
	require.NoError(t, err)
	form.Close()
}
