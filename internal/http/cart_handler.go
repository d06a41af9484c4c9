package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zinchenko-maksym/zinware-backend/internal/cart"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*cart.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*cart.Item, bool, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*cart.Item, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
}

type CartEventsPublisher interface {
	PublishCartItemAdded(ctx context.Context, userID string, item *cart.Item, created bool) error
}

type CartHandler struct {
	svc       CartService
	publisher CartEventsPublisher
	logger    *log.Logger
}

func NewCartHandler(svc CartService, publisher CartEventsPublisher, logger *log.Logger) *CartHandler {
	return &CartHandler{svc: svc, publisher: publisher, logger: logger}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.svc.GetCart(ctx, GetUserID(ctx))
	if err != nil {
		h.logger.Printf("get cart: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	userID := GetUserID(ctx)
	item, created, err := h.svc.AddItem(ctx, userID, body.ProductID, body.Quantity)
	if err != nil {
		h.writeCartError(w, err, "failed to add item")
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishCartItemAdded(ctx, userID, item, created); err != nil {
			h.logger.Printf("publish CartItemAdded: %v", err)
		}
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, item)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	var body updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	item, err := h.svc.UpdateItemQuantity(ctx, GetUserID(ctx), itemID, body.Quantity)
	if err != nil {
		h.writeCartError(w, err, "failed to update item")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.RemoveItem(ctx, GetUserID(ctx), itemID); err != nil {
		h.writeCartError(w, err, "failed to remove item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeCartError maps the cart error taxonomy onto status codes. Anything
// outside the taxonomy is a collaborator failure and stays opaque.
func (h *CartHandler) writeCartError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrProductNotFound), errors.Is(err, cart.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Printf("cart: %v", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
