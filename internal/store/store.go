// Package store persists packing lists and gear items in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newID returns a time-ordered UUID, falling back to a random one if the
// clock sequence cannot be read.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func now() time.Time {
	return time.Now().UTC()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// touchList bumps updated_at on a list and reports whether the list exists.
func touchList(ctx context.Context, tx *sql.Tx, listID string, at time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE packing_lists SET updated_at = ? WHERE id = ?`, at, listID)
	if err != nil {
		return false, fmt.Errorf("touch packing list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
