package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/ulpack/internal/model"
	"github.com/dukerupert/ulpack/internal/share"
)

const (
	InventoryTitle       = "My Gear Inventory"
	InventoryDescription = "Auto-created list for direct gear registration"
)

func (s *PackingListStore) getInventory(ctx context.Context) (*model.PackingList, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+packingListCols+` FROM packing_lists WHERE is_inventory = 1 ORDER BY created_at ASC, rowid ASC LIMIT 1`)
	l, err := scanPackingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory list: %w", err)
	}
	return l, nil
}

// ResolveInventory returns the gear inventory list, creating it on first
// use. The partial unique index on is_inventory lets concurrent first calls
// race on the insert and still converge on one list.
func (s *PackingListStore) ResolveInventory(ctx context.Context) (*model.PackingList, error) {
	l, err := s.getInventory(ctx)
	if err != nil || l != nil {
		return l, err
	}

	token, err := share.NewToken()
	if err != nil {
		return nil, err
	}
	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO packing_lists (id, title, description, unit, share_token, is_shared, is_inventory, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, 1, ?, ?)
		 ON CONFLICT (is_inventory) WHERE is_inventory = 1 DO NOTHING`,
		newID(), InventoryTitle, InventoryDescription, model.UnitGram, token, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert inventory list: %w", err)
	}

	l, err = s.getInventory(ctx)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("inventory list missing after insert")
	}
	return l, nil
}
