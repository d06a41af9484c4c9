package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/zinchenko-maksym/zinware-backend/internal/catalog"
)

// ProductCatalog is the subset of the catalog repository the cart needs.
type ProductCatalog interface {
	Get(ctx context.Context, productID string) (*catalog.Product, error)
}

// Service owns cart lifecycle and item merge/update logic. It holds no
// per-request state; all shared state lives behind the repository.
type Service struct {
	repo    Repository
	catalog ProductCatalog
}

func NewService(repo Repository, catalog ProductCatalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// GetCart returns the user's cart with its items, creating the cart on first
// access. Repeated calls for the same user always yield the same cart id.
func (s *Service) GetCart(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

// AddItem merges quantity into the (cart, product) row or creates it. The
// returned boolean is true on first insertion so the HTTP layer can answer
// 201 vs 200.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*Item, bool, error) {
	if quantity <= 0 {
		return nil, false, ErrInvalidQuantity
	}

	if _, err := s.catalog.Get(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, false, ErrProductNotFound
		}
		return nil, false, fmt.Errorf("resolve product: %w", err)
	}

	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	return s.repo.UpsertItem(ctx, c.ID, productID, quantity)
}

// UpdateItemQuantity sets the quantity to the absolute value supplied. The
// item must belong to a cart owned by userID.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := s.checkOwnership(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.repo.SetItemQuantity(ctx, itemID, quantity)
}

// RemoveItem deletes the item permanently, under the same ownership rules as
// UpdateItemQuantity.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	if err := s.checkOwnership(ctx, userID, itemID); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, itemID)
}

// checkOwnership compares the item's cart owner against the calling user.
// Carts never change owner, so the check cannot be invalidated by a
// concurrent write.
func (s *Service) checkOwnership(ctx context.Context, userID, itemID string) error {
	_, ownerID, err := s.repo.GetItemWithOwner(ctx, itemID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	return nil
}
