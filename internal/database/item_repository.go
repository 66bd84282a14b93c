package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/recall/pkg/models"
)

// ItemRepository handles database operations for learning items.
// Item content is authored outside the engine; the engine only needs
// existence checks and basic reads.
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new repository instance.
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetByID returns an item by id, or ErrNotFound.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := r.db.GetContext(ctx, &item, `
		SELECT id, prompt, answer, topic, created_at
		FROM items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// Exists reports whether the item id is known, using the caller's
// transaction when given one.
func (r *ItemRepository) Exists(ctx context.Context, ext sqlx.ExtContext, id int64) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, ext, &one, `SELECT 1 FROM items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check item: %w", err)
	}
	return true, nil
}

// Create inserts an item and fills in its id.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	const cols = `
		INSERT INTO items (prompt, answer, topic)
		VALUES ($1, $2, $3)`

	if r.db.Postgres() {
		err := r.db.QueryRowxContext(ctx, cols+" RETURNING id",
			item.Prompt, item.Answer, item.Topic,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, cols, item.Prompt, item.Answer, item.Topic)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	item.ID = id
	return nil
}
