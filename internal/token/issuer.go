// Package token mints and verifies the signed session tokens handed out
// after a successful login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/meowv/blog/internal/config"
	"github.com/meowv/blog/internal/model"
)

// minKeyLength is the HS256 key floor: the key must be at least as long as
// the hash output.
const minKeyLength = 32

// Claims are the JWT claims carried by every issued token.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IssuedToken is a signed token plus the values it encodes.
type IssuedToken struct {
	Token     string
	Subject   string
	Name      string
	Email     string
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs tokens with a symmetric key. It holds the key material
// read-only; one Issuer is safe for concurrent use.
type Issuer struct {
	issuer   string
	audience string
	key      []byte
	expires  time.Duration

	defaultSubject string
	defaultName    string
	defaultEmail   string

	now func() time.Time
}

// NewIssuer validates cfg and returns an Issuer. Any missing or unusable
// setting yields an ErrSigningConfiguration domain error; callers treat it as
// fatal at boot.
func NewIssuer(cfg config.JWTConfig) (*Issuer, error) {
	switch {
	case cfg.Issuer == "":
		return nil, model.NewFieldError(model.ErrSigningConfiguration, "JWT_ISSUER", "JWT_ISSUER is required")
	case cfg.Audience == "":
		return nil, model.NewFieldError(model.ErrSigningConfiguration, "JWT_AUDIENCE", "JWT_AUDIENCE is required")
	case cfg.SigningKey == "":
		return nil, model.NewFieldError(model.ErrSigningConfiguration, "JWT_SIGNING_KEY", "JWT_SIGNING_KEY is required")
	case len(cfg.SigningKey) < minKeyLength:
		return nil, model.NewFieldError(model.ErrSigningConfiguration, "JWT_SIGNING_KEY",
			fmt.Sprintf("JWT_SIGNING_KEY must be at least %d bytes", minKeyLength))
	case cfg.Expires < time.Second:
		return nil, model.NewFieldError(model.ErrSigningConfiguration, "JWT_EXPIRES", "JWT_EXPIRES must be at least one second")
	}

	return &Issuer{
		issuer:         cfg.Issuer,
		audience:       cfg.Audience,
		key:            []byte(cfg.SigningKey),
		expires:        cfg.Expires.Truncate(time.Second),
		defaultSubject: cfg.DefaultSubject,
		defaultName:    cfg.DefaultName,
		defaultEmail:   cfg.DefaultEmail,
		now:            time.Now,
	}, nil
}

// Issue mints a token for subject. Empty arguments are replaced with the
// configured placeholder identity.
func (i *Issuer) Issue(subject, name, email string) (IssuedToken, error) {
	subject = orDefault(subject, i.defaultSubject)
	name = orDefault(name, i.defaultName)
	email = orDefault(email, i.defaultEmail)

	issuedAt := i.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.expires)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:  name,
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("signing token: %w", err)
	}

	return IssuedToken{
		Token:     signed,
		Subject:   subject,
		Name:      name,
		Email:     email,
		Issuer:    i.issuer,
		Audience:  i.audience,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// IssueForAccount mints a token for the static account; name and email take
// the defaults.
func (i *Issuer) IssueForAccount(username string) (IssuedToken, error) {
	return i.Issue(username, "", "")
}

// Verify parses tokenString with the issuer's key and checks signature,
// algorithm, issuer, audience and time bounds.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.NewDomainError(model.ErrUnauthorized, "token expired")
		}
		return nil, model.NewDomainError(model.ErrUnauthorized, "invalid token")
	}
	return &claims, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
