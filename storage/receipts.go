package storage

import (
	"context"
	"errors"
	"fmt"
)

// AddReceipt records that a delivery receipt is awaited for an outgoing message.
func (s *Store) AddReceipt(ctx context.Context, receipt Receipt) error {
	if receipt.MessageID == "" {
		return errors.New("message_id is required")
	}
	if receipt.PeerID == "" {
		return errors.New("peer_id is required")
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = nowUnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO receipts (message_id, peer_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET created_at = excluded.created_at`,
		receipt.MessageID,
		receipt.PeerID,
		receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receipt %q: %w", receipt.MessageID, err)
	}

	return nil
}

// PendingReceipts returns awaited receipts oldest first.
func (s *Store) PendingReceipts(ctx context.Context) ([]Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, peer_id, created_at FROM receipts ORDER BY created_at ASC, message_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	receipts := make([]Receipt, 0)
	for rows.Next() {
		var r Receipt
		if err := rows.Scan(&r.MessageID, &r.PeerID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt row: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt rows: %w", err)
	}

	return receipts, nil
}

// ResolveReceipt drops the awaited receipt for messageID.
func (s *Store) ResolveReceipt(ctx context.Context, messageID string) error {
	if messageID == "" {
		return errors.New("message_id is required")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE message_id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("resolve receipt %q: %w", messageID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for receipt %q: %w", messageID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ClearReceipts drops every awaited receipt.
func (s *Store) ClearReceipts(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM receipts`); err != nil {
		return fmt.Errorf("clear receipts: %w", err)
	}
	return nil
}
