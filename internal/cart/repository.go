package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository is the sole writer of carts and cart_items. Every mutation that
// could race across requests is a single SQL statement, so the database is
// the concurrency guard and the rollback boundary.
type Repository interface {
	GetOrCreateCart(ctx context.Context, userID string) (*Cart, error)
	ListItems(ctx context.Context, cartID string) ([]Item, error)
	UpsertItem(ctx context.Context, cartID, productID string, quantity int) (*Item, bool, error)
	GetItemWithOwner(ctx context.Context, itemID string) (*Item, string, error)
	SetItemQuantity(ctx context.Context, itemID string, quantity int) (*Item, error)
	DeleteItem(ctx context.Context, itemID string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

// GetOrCreateCart returns the user's cart, creating it on first access.
// The unique index on carts.user_id decides races: the loser's insert turns
// into a no-op update and RETURNING hands back the winner's row, so every
// concurrent caller converges on the same cart id.
func (r *repo) GetOrCreateCart(ctx context.Context, userID string) (*Cart, error) {
	const query = `
INSERT INTO carts (id, user_id, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE
SET updated_at = NOW()
RETURNING id, user_id, created_at, updated_at
`
	var c Cart
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	return &c, nil
}

func (r *repo) ListItems(ctx context.Context, cartID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cart_id, product_id, quantity, updated_at
         FROM cart_items WHERE cart_id = $1 ORDER BY updated_at`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

// UpsertItem merges quantity into the existing (cart_id, product_id) row or
// inserts a new one. The increment happens inside the conflict clause, never
// as a separate read-modify-write, so concurrent adds cannot lose updates.
// The boolean reports whether the row was newly inserted; xmax = 0 only
// holds for rows the inserting transaction created itself.
func (r *repo) UpsertItem(ctx context.Context, cartID, productID string, quantity int) (*Item, bool, error) {
	const query = `
INSERT INTO cart_items (id, cart_id, product_id, quantity, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity,
    updated_at = NOW()
RETURNING id, cart_id, product_id, quantity, updated_at, (xmax = 0) AS inserted
`
	var (
		it       Item
		inserted bool
	)
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), cartID, productID, quantity).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("upsert cart_item: %w", err)
	}
	return &it, inserted, nil
}

// GetItemWithOwner loads an item together with the user id owning its cart,
// for the caller's ownership check.
func (r *repo) GetItemWithOwner(ctx context.Context, itemID string) (*Item, string, error) {
	const query = `
SELECT i.id, i.cart_id, i.product_id, i.quantity, i.updated_at, c.user_id
FROM cart_items i
JOIN carts c ON c.id = i.cart_id
WHERE i.id = $1
`
	var (
		it      Item
		ownerID string
	)
	err := r.db.QueryRowContext(ctx, query, itemID).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UpdatedAt, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrItemNotFound
		}
		return nil, "", fmt.Errorf("select cart_item: %w", err)
	}
	return &it, ownerID, nil
}

// SetItemQuantity replaces the quantity with an absolute value.
func (r *repo) SetItemQuantity(ctx context.Context, itemID string, quantity int) (*Item, error) {
	const query = `
UPDATE cart_items
SET quantity = $2, updated_at = NOW()
WHERE id = $1
RETURNING id, cart_id, product_id, quantity, updated_at
`
	var it Item
	err := r.db.QueryRowContext(ctx, query, itemID, quantity).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Removed between the ownership check and the update.
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("update cart_item: %w", err)
	}
	return &it, nil
}

func (r *repo) DeleteItem(ctx context.Context, itemID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart_item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}
