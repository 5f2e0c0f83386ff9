package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/ulpack/internal/apperror"
	"github.com/dukerupert/ulpack/internal/model"
	"github.com/dukerupert/ulpack/internal/share"
)

type PackingListStore struct {
	db *sql.DB
}

func NewPackingListStore(db *sql.DB) *PackingListStore {
	return &PackingListStore{db: db}
}

func scanPackingList(scanner interface{ Scan(...any) error }) (*model.PackingList, error) {
	var l model.PackingList
	var unit string
	var isShared, isInventory int

	err := scanner.Scan(
		&l.ID, &l.Title, &l.Description, &unit, &l.ShareToken,
		&isShared, &isInventory, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Unit = model.Unit(unit)
	l.IsShared = isShared != 0
	l.IsInventory = isInventory != 0
	return &l, nil
}

const packingListCols = `id, title, description, unit, share_token, is_shared, is_inventory, created_at, updated_at`

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Create inserts a shared list in grams with a fresh share token. The input
// must already be normalized and validated.
func (s *PackingListStore) Create(ctx context.Context, in model.ListInput) (*model.PackingList, error) {
	token, err := share.NewToken()
	if err != nil {
		return nil, err
	}

	id := newID()
	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO packing_lists (id, title, description, unit, share_token, is_shared, is_inventory, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, 0, ?, ?)`,
		id, in.Title, in.Description, model.UnitGram, token, ts, ts,
	)
	if isUniqueViolation(err) {
		return nil, apperror.Conflict("share token collision, retry the request")
	}
	if err != nil {
		return nil, fmt.Errorf("insert packing list: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PackingListStore) GetByID(ctx context.Context, id string) (*model.PackingList, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+packingListCols+` FROM packing_lists WHERE id = ?`, id)
	l, err := scanPackingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get packing list: %w", err)
	}
	return l, nil
}

// GetShared returns the list behind a share token, or nil when the token is
// unknown or the list is not shared.
func (s *PackingListStore) GetShared(ctx context.Context, token string) (*model.PackingList, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+packingListCols+` FROM packing_lists WHERE share_token = ? AND is_shared = 1`, token)
	l, err := scanPackingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shared packing list: %w", err)
	}
	return l, nil
}

// List returns every list, newest first.
func (s *PackingListStore) List(ctx context.Context) ([]model.PackingList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+packingListCols+` FROM packing_lists ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list packing lists: %w", err)
	}
	defer rows.Close()

	lists := []model.PackingList{}
	for rows.Next() {
		l, err := scanPackingList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan packing list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

// exec runs a single-row update and re-reads the list. A missing list
// yields nil, nil.
func (s *PackingListStore) exec(ctx context.Context, id, op, query string, args ...any) (*model.PackingList, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

func (s *PackingListStore) Update(ctx context.Context, id string, in model.ListInput) (*model.PackingList, error) {
	return s.exec(ctx, id, "update packing list",
		`UPDATE packing_lists SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		in.Title, in.Description, now(), id)
}

func (s *PackingListStore) SetUnit(ctx context.Context, id string, unit model.Unit) (*model.PackingList, error) {
	return s.exec(ctx, id, "set unit",
		`UPDATE packing_lists SET unit = ?, updated_at = ? WHERE id = ?`,
		unit, now(), id)
}

func (s *PackingListStore) SetShared(ctx context.Context, id string, shared bool) (*model.PackingList, error) {
	return s.exec(ctx, id, "set shared",
		`UPDATE packing_lists SET is_shared = ?, updated_at = ? WHERE id = ?`,
		boolInt(shared), now(), id)
}

// RegenerateShareToken swaps in a new token in a single statement. The old
// token stops resolving as soon as it commits.
func (s *PackingListStore) RegenerateShareToken(ctx context.Context, id string) (*model.PackingList, error) {
	token, err := share.NewToken()
	if err != nil {
		return nil, err
	}
	l, err := s.exec(ctx, id, "regenerate share token",
		`UPDATE packing_lists SET share_token = ?, updated_at = ? WHERE id = ?`,
		token, now(), id)
	if isUniqueViolation(err) {
		return nil, apperror.Conflict("share token collision, retry the request")
	}
	return l, err
}

// Delete removes a list and, through the foreign key cascade, its items.
// It reports whether a list was deleted.
func (s *PackingListStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM packing_lists WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete packing list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
