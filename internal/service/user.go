package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/oauth"
	"github.com/meowv/blog/internal/repository"
)

// UserStore is the persistence UserService needs; *repository.Queries
// satisfies it.
type UserStore interface {
	UpsertOAuthUser(ctx context.Context, arg repository.UpsertOAuthUserParams) (repository.User, error)
}

type UserService struct {
	store  UserStore
	logger *slog.Logger
}

func NewUserService(store UserStore, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

type UserResponse struct {
	ID         string `json:"id"`
	Provider   string `json:"provider"`
	ExternalID string `json:"external_id"`
	Login      string `json:"login"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AvatarURL  string `json:"avatar_url"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func userToResponse(u repository.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Provider:   u.Provider,
		ExternalID: u.ExternalID,
		Login:      u.Login,
		Name:       u.Name,
		Email:      u.Email,
		AvatarURL:  u.AvatarUrl,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.Format(time.RFC3339),
	}
}

// Upsert stores identity keyed by (provider, external id). Logging in twice
// with the same identity refreshes the profile fields of one row.
func (s *UserService) Upsert(ctx context.Context, identity oauth.Identity) (UserResponse, error) {
	if identity.Provider == "" {
		return UserResponse{}, model.NewFieldError(model.ErrInvalidInput, "provider", "provider is required")
	}
	if identity.ExternalID == "" {
		return UserResponse{}, model.NewFieldError(model.ErrInvalidInput, "external_id", "external id is required")
	}

	user, err := s.store.UpsertOAuthUser(ctx, repository.UpsertOAuthUserParams{
		ID:         uuid.New(),
		Provider:   identity.Provider,
		ExternalID: identity.ExternalID,
		Login:      identity.Login,
		Name:       identity.Name,
		Email:      identity.Email,
		AvatarUrl:  identity.AvatarURL,
	})
	if err != nil {
		return UserResponse{}, fmt.Errorf("upserting user: %w", err)
	}

	s.logger.Debug("oauth user stored", "user_id", user.ID, "provider", user.Provider)
	return userToResponse(user), nil
}

// RecordLogin implements IdentityRecorder.
func (s *UserService) RecordLogin(ctx context.Context, identity oauth.Identity) error {
	_, err := s.Upsert(ctx, identity)
	return err
}
