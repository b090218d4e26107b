package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"mipastel-pos/internal/order"
)

// Repository persists the cart as one full snapshot per kind, keyed the
// same way the cart has always been stored: two independent entries, each
// holding the whole ordered list for its kind.
type Repository interface {
	Save(ctx context.Context, kind order.Kind, drafts []order.Draft) error
	Load(ctx context.Context) (map[order.Kind][]order.Draft, error)
	Purge(ctx context.Context) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, kind order.Kind, drafts []order.Draft) error {
	if drafts == nil {
		drafts = []order.Draft{}
	}
	items, err := json.Marshal(drafts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (kind, items, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (kind) DO UPDATE
		SET items = EXCLUDED.items, updated_at = NOW()
	`, string(kind), items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}
	return nil
}

func (r *repository) Load(ctx context.Context) (map[order.Kind][]order.Draft, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, items FROM cart_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}
	defer rows.Close()

	snapshots := map[order.Kind][]order.Draft{}
	for rows.Next() {
		var kind string
		var items []byte
		if err := rows.Scan(&kind, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
		}

		var drafts []order.Draft
		if err := json.Unmarshal(items, &drafts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
		}
		snapshots[order.Kind(kind)] = drafts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}

	return snapshots, nil
}

func (r *repository) Purge(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_snapshots`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedPurgeCart, err)
	}
	return nil
}
