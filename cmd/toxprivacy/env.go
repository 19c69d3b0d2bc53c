package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"toxprivacy/config"
	"toxprivacy/core"
	"toxprivacy/crypto"
	"toxprivacy/events"
	"toxprivacy/nospam"
	"toxprivacy/privacy"
	"toxprivacy/storage"
)

// cliEnv is the opened profile shared by all commands of one invocation.
type cliEnv struct {
	ctx context.Context
	in  io.Reader
	out io.Writer

	dataDir  string
	settings *config.Store
	core     *core.Core
	history  *storage.Store
	form     *privacy.Form
}

func (e *cliEnv) open(dataDir string, assumeYes bool) error {
	var err error
	if dataDir == "" {
		e.settings, dataDir, err = config.LoadOrCreate()
	} else {
		e.settings, err = config.Open(dataDir)
	}
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	e.dataDir = dataDir

	keys, err := crypto.EnsureKeyPair(e.settings.IdentityKeyPath())
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}

	bus := events.NewBus()
	if e.core, err = core.New(keys, e.settings, bus); err != nil {
		return err
	}

	history, dbPath, err := storage.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	e.history = history
	log.Printf("[DEBUG] settings %s, history %s", e.settings.Path(), dbPath)

	var confirm privacy.Confirmer = &privacy.PromptConfirmer{In: e.in, Out: e.out}
	if assumeYes {
		confirm = privacy.Answer(true)
	}

	e.form, err = privacy.New(privacy.Deps{
		Settings: e.settings,
		Core:     e.core,
		History:  e.history,
		Confirm:  confirm,
		Bus:      bus,
	})
	if err != nil {
		return err
	}
	e.form.OnReceiptsCleared(func() { log.Printf("[INFO] pending receipts cleared") })
	e.form.OnNospamChanged(func(v nospam.Value) {
		log.Printf("[INFO] nospam set to %s, requests to the old address will be dropped", v)
	})
	return nil
}

func (e *cliEnv) close() {
	if e.form != nil {
		e.form.Close()
	}
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			log.Printf("[WARN] history close error: %v", err)
		}
	}
}

var errNotOpened = errors.New("profile is not opened")
