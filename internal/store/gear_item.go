package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/ulpack/internal/model"
)

type GearItemStore struct {
	db *sql.DB
}

func NewGearItemStore(db *sql.DB) *GearItemStore {
	return &GearItemStore{db: db}
}

func scanGearItem(scanner interface{ Scan(...any) error }) (*model.GearItem, error) {
	var g model.GearItem
	var category, kind string

	err := scanner.Scan(
		&g.ID, &g.ListID, &g.Name, &category, &g.WeightGrams,
		&g.Quantity, &kind, &g.Notes, &g.SortOrder,
	)
	if err != nil {
		return nil, err
	}

	g.Category = model.Category(category)
	g.Kind = model.Kind(kind)
	return &g, nil
}

const gearItemCols = `id, list_id, name, category, weight_grams, quantity, kind, notes, sort_order`

// Create appends an item to the end of its list and bumps the list's
// updated_at. It returns nil, nil when the list does not exist.
func (s *GearItemStore) Create(ctx context.Context, item model.GearItem) (*model.GearItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ok, err := touchList(ctx, tx, item.ListID, now())
	if err != nil || !ok {
		return nil, err
	}

	id := newID()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO gear_items (id, list_id, name, category, weight_grams, quantity, kind, notes, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?,
		   (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM gear_items WHERE list_id = ?))`,
		id, item.ListID, item.Name, item.Category, item.WeightGrams, item.Quantity, item.Kind, item.Notes,
		item.ListID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert gear item: %w", err)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+gearItemCols+` FROM gear_items WHERE id = ?`, id)
	created, err := scanGearItem(row)
	if err != nil {
		return nil, fmt.Errorf("get gear item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// GetByID returns the item only when it belongs to listID.
func (s *GearItemStore) GetByID(ctx context.Context, listID, id string) (*model.GearItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gearItemCols+` FROM gear_items WHERE id = ? AND list_id = ?`, id, listID)
	g, err := scanGearItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gear item: %w", err)
	}
	return g, nil
}

// ListByList returns a list's items ordered by sort_order, ties broken by id.
func (s *GearItemStore) ListByList(ctx context.Context, listID string) ([]model.GearItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gearItemCols+` FROM gear_items WHERE list_id = ? ORDER BY sort_order ASC, id ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("list gear items: %w", err)
	}
	defer rows.Close()

	items := []model.GearItem{}
	for rows.Next() {
		g, err := scanGearItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gear item: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}

// ListAll is the cross-list gear feed: newest list first, then each list's
// own item order.
func (s *GearItemStore) ListAll(ctx context.Context) ([]model.GearListEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.list_id, g.name, g.category, g.weight_grams, g.quantity, g.kind, g.notes, g.sort_order, l.title
		 FROM gear_items g
		 JOIN packing_lists l ON l.id = g.list_id
		 ORDER BY l.created_at DESC, l.rowid DESC, g.sort_order ASC, g.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all gear items: %w", err)
	}
	defer rows.Close()

	entries := []model.GearListEntry{}
	for rows.Next() {
		var e model.GearListEntry
		var category, kind string
		err := rows.Scan(
			&e.ID, &e.ListID, &e.Name, &category, &e.WeightGrams,
			&e.Quantity, &kind, &e.Notes, &e.SortOrder, &e.ListTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("scan gear entry: %w", err)
		}
		e.Category = model.Category(category)
		e.Kind = model.Kind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Update replaces the mutable fields of an item in listID. sort_order is
// left unchanged. It returns nil, nil when no such item exists in the list.
func (s *GearItemStore) Update(ctx context.Context, listID, id string, item model.GearItem) (*model.GearItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE gear_items SET name = ?, category = ?, weight_grams = ?, quantity = ?, kind = ?, notes = ?
		 WHERE id = ? AND list_id = ?`,
		item.Name, item.Category, item.WeightGrams, item.Quantity, item.Kind, item.Notes, id, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("update gear item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	if _, err := touchList(ctx, tx, listID, now()); err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx, `SELECT `+gearItemCols+` FROM gear_items WHERE id = ?`, id)
	updated, err := scanGearItem(row)
	if err != nil {
		return nil, fmt.Errorf("get gear item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// Delete removes an item from listID and reports whether it existed there.
func (s *GearItemStore) Delete(ctx context.Context, listID, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM gear_items WHERE id = ? AND list_id = ?`, id, listID)
	if err != nil {
		return false, fmt.Errorf("delete gear item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if _, err := touchList(ctx, tx, listID, now()); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// Reorder sets each item's sort_order to its position in ids. Items of the
// list not named in ids keep their current position. It reports false and
// changes nothing if the list is missing or any id belongs elsewhere.
func (s *GearItemStore) Reorder(ctx context.Context, listID string, ids []string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ok, err := touchList(ctx, tx, listID, now())
	if err != nil || !ok {
		return false, err
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE gear_items SET sort_order = ? WHERE id = ? AND list_id = ?`)
	if err != nil {
		return false, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		res, err := stmt.ExecContext(ctx, i, id, listID)
		if err != nil {
			return false, fmt.Errorf("update sort order for %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return false, nil
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}
