// Package privacy implements the privacy settings form: the keep-history and
// typing-notification toggles, the nospam editor and the blacklist editor.
//
// The form holds no state of its own. Every handler writes one field through
// to the injected collaborators and Show reads them back.
package privacy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"toxprivacy/core"
	"toxprivacy/events"
	"toxprivacy/nospam"
)

const (
	eraseHistoryTitle    = "Confirmation"
	eraseHistoryQuestion = "Do you want to permanently delete all chat history?"
)

// Setting names published on events.SettingsChanged.
const (
	SettingKeepHistory        = "keep_history"
	SettingTypingNotification = "typing_notification"
	SettingBlackList          = "blacklist"
)

// Settings is the persisted settings store.
type Settings interface {
	EnableLogging() bool
	SetEnableLogging(enabled bool) error
	TypingNotification() bool
	SetTypingNotification(enabled bool) error
	BlackList() []string
	SetBlackList(lines []string) error
}

// Core is the messaging core identity state.
type Core interface {
	SetNospam(v nospam.Value) error
	SelfID() core.Identity
}

// History is the conversation history store.
type History interface {
	EraseHistory(ctx context.Context) error
	ClearReceipts(ctx context.Context) error
}

// Deps are the collaborators a Form writes through to. Bus may be nil.
type Deps struct {
	Settings Settings
	Core     Core
	History  History
	Confirm  Confirmer
	Bus      *events.Bus
	Random   func() nospam.Value
}

// View is what the form displays when it becomes visible.
type View struct {
	Nospam             string
	TypingNotification bool
	KeepHistory        bool
	BlackList          string
}

// Form binds privacy controls to the settings store and the core.
// Handlers are meant to be called from a single goroutine.
type Form struct {
	deps        Deps
	unsubscribe []func()
}

// New validates deps and returns a form.
func New(deps Deps) (*Form, error) {
	switch {
	case deps.Settings == nil:
		return nil, errors.New("privacy form: settings store is required")
	case deps.Core == nil:
		return nil, errors.New("privacy form: core is required")
	case deps.History == nil:
		return nil, errors.New("privacy form: history store is required")
	case deps.Confirm == nil:
		return nil, errors.New("privacy form: confirmer is required")
	}
	if deps.Random == nil {
		deps.Random = nospam.Random
	}
	return &Form{deps: deps}, nil
}

// OnReceiptsCleared registers fn to run whenever the form drops pending
// receipts. The registration ends with Close.
func (f *Form) OnReceiptsCleared(fn func()) {
	if f.deps.Bus == nil {
		return
	}
	f.unsubscribe = append(f.unsubscribe, f.deps.Bus.Subscribe(events.ReceiptsCleared, func(any) { fn() }))
}

// OnNospamChanged registers fn to run after the core accepted a new nospam.
// The registration ends with Close.
func (f *Form) OnNospamChanged(fn func(nospam.Value)) {
	if f.deps.Bus == nil {
		return
	}
	f.unsubscribe = append(f.unsubscribe, f.deps.Bus.Subscribe(events.NospamChanged, func(p any) {
		if v, ok := p.(nospam.Value); ok {
			fn(v)
		}
	}))
}

// Close drops every registration the form made. Safe to call twice.
func (f *Form) Close() {
	for _, unsubscribe := range f.unsubscribe {
		unsubscribe()
	}
	f.unsubscribe = nil
}

// Show reads the current state for display.
func (f *Form) Show() View {
	return View{
		Nospam:             f.deps.Core.SelfID().NoSpamString(),
		TypingNotification: f.deps.Settings.TypingNotification(),
		KeepHistory:        f.deps.Settings.EnableLogging(),
		BlackList:          JoinBlackList(f.deps.Settings.BlackList()),
	}
}

// SetKeepHistory persists the keep-history flag. Turning it off drops pending
// receipts and, if the user confirms, erases all history. A declined prompt
// leaves history intact; the flag stays off either way.
func (f *Form) SetKeepHistory(ctx context.Context, enabled bool) (erased bool, err error) {
	if err := f.deps.Settings.SetEnableLogging(enabled); err != nil {
		return false, fmt.Errorf("save keep history: %w", err)
	}
	f.deps.Bus.Publish(events.SettingsChanged, SettingKeepHistory)
	if enabled {
		return false, nil
	}

	if err := f.deps.History.ClearReceipts(ctx); err != nil {
		return false, fmt.Errorf("clear receipts: %w", err)
	}
	f.deps.Bus.Publish(events.ReceiptsCleared, nil)

	if !f.deps.Confirm.Confirm(eraseHistoryTitle, eraseHistoryQuestion) {
		log.Printf("[INFO] history logging disabled, existing history kept")
		return false, nil
	}
	if err := f.deps.History.EraseHistory(ctx); err != nil {
		return false, fmt.Errorf("erase history: %w", err)
	}
	return true, nil
}

// SetTypingNotification persists the typing-notification flag.
func (f *Form) SetTypingNotification(enabled bool) error {
	if err := f.deps.Settings.SetTypingNotification(enabled); err != nil {
		return fmt.Errorf("save typing notification: %w", err)
	}
	f.deps.Bus.Publish(events.SettingsChanged, SettingTypingNotification)
	return nil
}

// NospamEditingFinished applies edited nospam text. Text that does not parse
// is ignored and the core keeps its current value.
func (f *Form) NospamEditingFinished(text string) (applied bool, err error) {
	v, err := nospam.ParseHex(text)
	if err != nil {
		log.Printf("[DEBUG] ignoring nospam edit: %v", err)
		return false, nil
	}
	if err := f.deps.Core.SetNospam(v); err != nil {
		return false, err
	}
	return true, nil
}

// NospamTextChanged re-pads the nospam field after an edit and returns the
// text and cursor to display.
func (f *Form) NospamTextChanged(text string, cursor int) (string, int) {
	return nospam.NormalizeEdit(text, cursor)
}

// RandomizeNospam sets a fresh random nospam and returns its display form.
func (f *Form) RandomizeNospam() (string, error) {
	if err := f.deps.Core.SetNospam(f.deps.Random()); err != nil {
		return "", err
	}
	return f.deps.Core.SelfID().NoSpamString(), nil
}

// BlacklistChanged stores the blacklist text, one entry per line.
func (f *Form) BlacklistChanged(text string) error {
	if err := f.deps.Settings.SetBlackList(SplitBlackList(text)); err != nil {
		return fmt.Errorf("save blacklist: %w", err)
	}
	f.deps.Bus.Publish(events.SettingsChanged, SettingBlackList)
	return nil
}

// SplitBlackList splits text on newlines, keeping empty lines.
func SplitBlackList(text string) []string {
	return strings.Split(text, "\n")
}

// JoinBlackList is the inverse of SplitBlackList.
func JoinBlackList(lines []string) string {
	return strings.Join(lines, "\n")
}
