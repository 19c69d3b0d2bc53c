// Package core exposes the identity state of the local messenger profile.
package core

import (
	"fmt"
	"log"
	"sync"

	"toxprivacy/crypto"
	"toxprivacy/events"
	"toxprivacy/nospam"
)

// NospamStore persists the nospam value.
type NospamStore interface {
	Nospam() nospam.Value
	SetNospam(nospam.Value) error
}

// Core holds the identity keypair and the active nospam.
type Core struct {
	mu     sync.Mutex
	keys   *crypto.KeyPair
	nospam nospam.Value
	store  NospamStore
	bus    *events.Bus
}

// New returns a core that starts from the nospam currently held by store.
// bus may be nil.
func New(keys *crypto.KeyPair, store NospamStore, bus *events.Bus) (*Core, error) {
	if keys == nil {
		return nil, fmt.Errorf("new core: identity keypair is required")
	}
	if store == nil {
		return nil, fmt.Errorf("new core: nospam store is required")
	}

	return &Core{
		keys:   keys,
		nospam: store.Nospam(),
		store:  store,
		bus:    bus,
	}, nil
}

// SetNospam persists and activates a new nospam. Contact requests addressed
// to the previous value stop matching.
func (c *Core) SetNospam(v nospam.Value) error {
	c.mu.Lock()
	if err := c.store.SetNospam(v); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("set nospam: %w", err)
	}
	prev := c.nospam
	c.nospam = v
	c.mu.Unlock()

	log.Printf("[DEBUG] nospam changed %s -> %s", prev, v)
	c.bus.Publish(events.NospamChanged, v)
	return nil
}

// SelfID returns the current public address.
func (c *Core) SelfID() Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Identity{PublicKey: c.keys.Public, Nospam: c.nospam}
}

// Fingerprint returns the formatted fingerprint of the identity public key.
func (c *Core) Fingerprint() string {
	return crypto.FormatFingerprint(crypto.KeyFingerprint(c.keys.Public[:]))
}
