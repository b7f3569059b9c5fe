package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/meowv/blog/internal/config"
	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/oauth"
	"github.com/meowv/blog/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// MsgCredentialMismatch is returned for any account login failure, whichever
// field was wrong.
const MsgCredentialMismatch = "The username or password entered is incorrect."

// IdentityRecorder persists a provider identity after a successful login.
type IdentityRecorder interface {
	RecordLogin(ctx context.Context, identity oauth.Identity) error
}

// AuthorizeService drives the OAuth login: it issues state for the authorize
// redirect, consumes it on callback, trades the code for a profile and mints
// the session token. It also handles the static account login.
type AuthorizeService struct {
	states   oauth.StateStore
	registry *oauth.Registry
	issuer   *token.Issuer
	account  config.AccountConfig
	users    IdentityRecorder
	logger   *slog.Logger
}

func NewAuthorizeService(
	states oauth.StateStore,
	registry *oauth.Registry,
	issuer *token.Issuer,
	account config.AccountConfig,
	logger *slog.Logger,
) *AuthorizeService {
	return &AuthorizeService{
		states:   states,
		registry: registry,
		issuer:   issuer,
		account:  account,
		logger:   logger,
	}
}

func (s *AuthorizeService) SetIdentityRecorder(r IdentityRecorder) {
	s.users = r
}

// GetAuthorizeURL issues a fresh state and returns the provider's authorize
// URL carrying it.
func (s *AuthorizeService) GetAuthorizeURL(ctx context.Context, providerType string) (string, error) {
	provider, err := s.registry.Get(providerType)
	if err != nil {
		return "", err
	}

	state, err := s.states.Issue(ctx)
	if err != nil {
		return "", fmt.Errorf("issuing oauth state: %w", err)
	}

	return provider.AuthorizeURL(state.Value), nil
}

// CompleteOAuthLogin validates state, exchanges code and returns a signed
// token for the provider identity. The state is consumed even when a later
// step fails.
func (s *AuthorizeService) CompleteOAuthLogin(ctx context.Context, providerType, code, state string) (string, error) {
	provider, err := s.registry.Get(providerType)
	if err != nil {
		return "", err
	}

	if !s.states.Validate(ctx, state) {
		s.logger.Warn("oauth state rejected", "provider", provider.Name())
		return "", model.NewDomainError(model.ErrStateValidation, model.MsgRequestFailed)
	}

	accessToken, err := provider.ExchangeCode(ctx, code, state)
	if err != nil {
		s.logger.Error("oauth code exchange failed", "provider", provider.Name(), "error", err)
		return "", model.NewDomainError(model.ErrProviderExchange, model.MsgRequestFailed)
	}

	identity, err := provider.FetchProfile(ctx, accessToken)
	if err != nil {
		s.logger.Error("oauth profile fetch failed", "provider", provider.Name(), "error", err)
		return "", model.NewDomainError(model.ErrProviderProfile, model.MsgRequestFailed)
	}

	if s.users != nil {
		if err := s.users.RecordLogin(ctx, identity); err != nil {
			s.logger.Error("failed to record oauth user",
				"provider", identity.Provider,
				"external_id", identity.ExternalID,
				"error", err,
			)
		}
	}

	issued, err := s.issuer.Issue(identity.ExternalID, identity.Name, identity.Email)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("oauth login", "provider", provider.Name(), "subject", issued.Subject)
	return issued.Token, nil
}

// CompleteAccountLogin checks username and password against the configured
// account and returns a token whose subject is the username.
func (s *AuthorizeService) CompleteAccountLogin(ctx context.Context, username, password string) (string, error) {
	if !s.accountMatches(username, password) {
		s.logger.Warn("account login rejected", "username", username)
		return "", model.NewDomainError(model.ErrCredentialMismatch, MsgCredentialMismatch)
	}

	issued, err := s.issuer.IssueForAccount(username)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("account login", "subject", issued.Subject)
	return issued.Token, nil
}

// accountMatches compares both fields without short-circuiting so a wrong
// username costs the same as a wrong password.
func (s *AuthorizeService) accountMatches(username, password string) bool {
	if s.account.Username == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.account.Username)) == 1

	var passOK bool
	switch {
	case s.account.PasswordHash != "":
		passOK = bcrypt.CompareHashAndPassword([]byte(s.account.PasswordHash), []byte(password)) == nil
	case s.account.Password != "":
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.account.Password)) == 1
	}

	return userOK && passOK
}
