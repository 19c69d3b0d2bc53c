package storage

import (
	"context"
	"fmt"
	"log"
)

// EraseHistory permanently deletes all logged messages and awaited receipts.
// Once the delete is committed the history is gone, so a failed compaction
// afterwards is logged and not returned.
func (s *Store) EraseHistory(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin erase transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return fmt.Errorf("erase messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM receipts`); err != nil {
		return fmt.Errorf("erase receipts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit erase transaction: %w", err)
	}

	if err := s.compact(ctx); err != nil {
		log.Printf("[WARN] history erased but not compacted: %v", err)
	}

	if n, err := res.RowsAffected(); err == nil {
		log.Printf("[INFO] history erased, %d messages removed", n)
	}
	return nil
}
