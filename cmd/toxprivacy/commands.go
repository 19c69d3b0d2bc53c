package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"toxprivacy/nospam"
	"toxprivacy/privacy"
)

type envRef struct {
	env *cliEnv
}

func (r envRef) form() (*privacy.Form, error) {
	if r.env == nil || r.env.form == nil {
		return nil, errNotOpened
	}
	return r.env.form, nil
}

// ShowCmd prints the privacy view and the full address.
type ShowCmd struct {
	envRef
}

// Execute prints the current settings.
func (c *ShowCmd) Execute([]string) error {
	form, err := c.form()
	if err != nil {
		return err
	}

	view := form.Show()
	out := c.env.out
	printField(out, "Address", c.env.core.SelfID().String())
	printField(out, "Fingerprint", c.env.core.Fingerprint())
	printField(out, "Nospam", view.Nospam)
	printField(out, "Keep history", onOff(view.KeepHistory))
	printField(out, "Typing notifications", onOff(view.TypingNotification))
	printField(out, "Data directory", c.env.dataDir)

	lines := privacy.SplitBlackList(view.BlackList)
	if view.BlackList == "" {
		lines = nil
	}
	printField(out, "Blacklist", strconv.Itoa(len(lines))+" entries")
	for _, line := range lines {
		fmt.Fprintf(out, "  %s\n", line)
	}
	return nil
}

// NospamCmd groups nospam subcommands.
type NospamCmd struct {
	Set       NospamSetCmd       `command:"set" description:"set nospam from hex text"`
	Random    NospamRandomCmd    `command:"random" description:"set a random nospam"`
	Normalize NospamNormalizeCmd `command:"normalize" description:"print hex text padded to 8 characters"`
}

// NospamSetCmd applies user-entered nospam text.
type NospamSetCmd struct {
	envRef
	Args struct {
		Value string `positional-arg-name:"HEX" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

// Execute pads short text like the editor does, then applies it. Longer text
// is parsed as typed, so it is either applied whole or rejected. Invalid hex
// keeps the current nospam.
func (c *NospamSetCmd) Execute([]string) error {
	form, err := c.form()
	if err != nil {
		return err
	}

	text := c.Args.Value
	if len(text) < nospam.Length {
		text, _ = form.NospamTextChanged(text, len(text))
	}
	applied, err := form.NospamEditingFinished(text)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("[WARN] %q is not a valid nospam, keeping %s", c.Args.Value, form.Show().Nospam)
	}
	printField(c.env.out, "Nospam", form.Show().Nospam)
	return nil
}

// NospamRandomCmd sets a random nospam.
type NospamRandomCmd struct {
	envRef
}

// Execute generates and applies a new nospam.
func (c *NospamRandomCmd) Execute([]string) error {
	form, err := c.form()
	if err != nil {
		return err
	}

	value, err := form.RandomizeNospam()
	if err != nil {
		return err
	}
	printField(c.env.out, "Nospam", value)
	return nil
}

// NospamNormalizeCmd prints normalized nospam text without applying it.
type NospamNormalizeCmd struct {
	envRef
	Args struct {
		Text string `positional-arg-name:"TEXT"`
	} `positional-args:"yes"`
}

// Execute prints the padded text.
func (c *NospamNormalizeCmd) Execute([]string) error {
	form, err := c.form()
	if err != nil {
		return err
	}

	text, _ := form.NospamTextChanged(c.Args.Text, 0)
	fmt.Fprintln(c.env.out, text)
	return nil
}

// HistoryCmd toggles history logging.
type HistoryCmd struct {
	envRef
	Args struct {
		State string `positional-arg-name:"on|off" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

// Execute persists the flag; turning it off offers to erase history.
func (c *HistoryCmd) Execute([]string) error {
	form, err := c.form()
	if err != nil {
		return err
	}
	enabled, err := parseOnOff(c.Args.State)
	if err != nil {
		return err
	}

	erased, err := form.SetKeepHistory(c.env.ctx, enabled)
	if err != nil {
		return err
	}
	printField(c.env.out, "Keep history", onOff(enabled))
	if erased {
		printField(c.env.out, "History", "erased")
	}
	return nil
}

// TypingCmd toggles typing notifications.
type TypingCmd struct {
	envRef
	Args struct {
		State string `positional-arg-name:"on|off" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

// Execute persists the flag.
func (c *TypingCmd) Execute([]string) error {
	form, err := c.form()
	if err != nil {
		return err
	}
	enabled, err := parseOnOff(c.Args.State)
	if err != nil {
		return err
	}

	if err := form.SetTypingNotification(enabled); err != nil {
		return err
	}
	printField(c.env.out, "Typing notifications", onOff(enabled))
	return nil
}

// BlacklistCmd groups blacklist subcommands.
type BlacklistCmd struct {
	Show BlacklistShowCmd `command:"show" description:"print the blacklist, one entry per line"`
	Set  BlacklistSetCmd  `command:"set" description:"replace the blacklist from a file or stdin"`
}

// BlacklistShowCmd prints the blacklist text.
type BlacklistShowCmd struct {
	envRef
}

// Execute prints the stored text exactly.
func (c *BlacklistShowCmd) Execute([]string) error {
	form, err := c.form()
	if err != nil {
		return err
	}
	fmt.Fprint(c.env.out, form.Show().BlackList)
	return nil
}

// BlacklistSetCmd replaces the blacklist.
type BlacklistSetCmd struct {
	envRef
	File string `short:"f" long:"file" description:"read entries from file instead of stdin"`
}

// Execute stores the input verbatim, one entry per line.
func (c *BlacklistSetCmd) Execute([]string) error {
	form, err := c.form()
	if err != nil {
		return err
	}

	var raw []byte
	if c.File != "" {
		raw, err = os.ReadFile(c.File)
	} else {
		raw, err = io.ReadAll(c.env.in)
	}
	if err != nil {
		return fmt.Errorf("read blacklist: %w", err)
	}

	if err := form.BlacklistChanged(string(raw)); err != nil {
		return err
	}
	printField(c.env.out, "Blacklist", strconv.Itoa(len(privacy.SplitBlackList(string(raw))))+" entries")
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
