package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SaveMessage inserts a new message row, assigning an ID and timestamp when missing.
func (s *Store) SaveMessage(ctx context.Context, message Message) (string, error) {
	if message.PeerID == "" {
		return "", errors.New("peer_id is required")
	}
	if message.Content == "" {
		return "", errors.New("content is required")
	}
	if err := validateDirection(message.Direction); err != nil {
		return "", err
	}
	if message.MessageID == "" {
		message.MessageID = uuid.NewString()
	}
	if message.Timestamp == 0 {
		message.Timestamp = nowUnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, peer_id, direction, content, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		message.MessageID,
		message.PeerID,
		message.Direction,
		message.Content,
		message.Timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("insert message %q: %w", message.MessageID, err)
	}

	return message.MessageID, nil
}

// GetMessages returns conversation messages with one peer ordered by timestamp.
func (s *Store) GetMessages(ctx context.Context, peerID string, limit, offset int) ([]Message, error) {
	if peerID == "" {
		return nil, errors.New("peer_id is required")
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, peer_id, direction, content, timestamp
		FROM messages
		WHERE peer_id = ?
		ORDER BY timestamp ASC, message_id ASC
		LIMIT ? OFFSET ?`,
		peerID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("get messages for peer %q: %w", peerID, err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MessageID, &m.PeerID, &m.Direction, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return messages, nil
}

// GetMessage returns one message by ID.
func (s *Store) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	if messageID == "" {
		return nil, errors.New("message_id is required")
	}

	var m Message
	err := s.db.QueryRowContext(ctx,
		`SELECT message_id, peer_id, direction, content, timestamp
		FROM messages WHERE message_id = ?`,
		messageID,
	).Scan(&m.MessageID, &m.PeerID, &m.Direction, &m.Content, &m.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get message %q: %w", messageID, err)
	}

	return &m, nil
}

// CountMessages returns the number of logged messages.
func (s *Store) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM messages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
