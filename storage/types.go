package storage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates a requested row does not exist.
	ErrNotFound = errors.New("storage: record not found")
)

const (
	// DirectionIncoming marks a message received from a peer.
	DirectionIncoming = "incoming"
	// DirectionOutgoing marks a message sent to a peer.
	DirectionOutgoing = "outgoing"
)

// Message is one logged chat message.
type Message struct {
	MessageID string
	PeerID    string
	Direction string
	Content   string
	Timestamp int64
}

// Receipt is a pending delivery receipt for an outgoing message.
type Receipt struct {
	MessageID string
	PeerID    string
	CreatedAt int64
}

func validateDirection(direction string) error {
	switch direction {
	case DirectionIncoming, DirectionOutgoing:
		return nil
	default:
		return fmt.Errorf("invalid message direction %q", direction)
	}
}

func nowUnixMilli() int64 {
	return time.Now().UnixMilli()
}
