package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/zinchenko-maksym/zinware-backend/internal/auth"
	"github.com/zinchenko-maksym/zinware-backend/internal/user"
)

type AuthService interface {
	Register(ctx context.Context, email, rawPassword string) (*user.User, error)
	Login(ctx context.Context, email, rawPassword string) (string, error)
}

type UserEventsPublisher interface {
	PublishUserRegistered(ctx context.Context, u *user.User) error
}

type AuthHandler struct {
	svc       AuthService
	publisher UserEventsPublisher
	logger    *log.Logger
}

func NewAuthHandler(svc AuthService, publisher UserEventsPublisher, logger *log.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, publisher: publisher, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.Register(ctx, body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrInvalidPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrEmailExists):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Printf("register: %v", err)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishUserRegistered(ctx, u); err != nil {
			h.logger.Printf("publish UserRegistered: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	token, err := h.svc.Login(ctx, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		h.logger.Printf("login: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
