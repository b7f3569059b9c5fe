package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/meowv/blog/internal/model"
	"golang.org/x/oauth2"
)

// Identity is the provider profile normalized to one shape. Empty fields are
// left empty here; the token issuer substitutes defaults.
type Identity struct {
	Provider   string
	ExternalID string
	Name       string
	Email      string
	Login      string
	AvatarURL  string
}

// Provider is one OAuth identity provider. Variants differ only in endpoint
// URLs, field mapping and how the access token is presented.
type Provider interface {
	// Name is the discriminator used in the URL, e.g. "github".
	Name() string

	// AuthorizeURL builds the provider consent URL with state embedded.
	AuthorizeURL(state string) string

	// ExchangeCode trades an authorization code for an access token.
	// Failures wrap model.ErrProviderExchange.
	ExchangeCode(ctx context.Context, code, state string) (string, error)

	// FetchProfile loads the user behind accessToken.
	// Failures wrap model.ErrProviderProfile.
	FetchProfile(ctx context.Context, accessToken string) (Identity, error)
}

// oauthClient holds what every provider variant shares: the oauth2 config,
// the profile endpoint, and the HTTP client used for both calls.
type oauthClient struct {
	name        string
	config      *oauth2.Config
	userinfoURL string
	httpClient  *http.Client
}

func (c *oauthClient) Name() string { return c.name }

func (c *oauthClient) AuthorizeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

func (c *oauthClient) ExchangeCode(ctx context.Context, code, state string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: %s: empty authorization code", model.ErrProviderExchange, c.name)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.config.Exchange(ctx, code, oauth2.SetAuthURLParam("state", state))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", model.ErrProviderExchange, c.name, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: %s: no access token in response", model.ErrProviderExchange, c.name)
	}
	return tok.AccessToken, nil
}

// getJSON performs req and decodes a 2xx JSON body into dst. Errors wrap
// model.ErrProviderProfile.
func (c *oauthClient) getJSON(req *http.Request, dst any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: userinfo request failed: %v", model.ErrProviderProfile, c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1MB limit
	if err != nil {
		return fmt.Errorf("%w: %s: reading userinfo response: %v", model.ErrProviderProfile, c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: userinfo returned status %d", model.ErrProviderProfile, c.name, resp.StatusCode)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %s: parsing userinfo response: %v", model.ErrProviderProfile, c.name, err)
	}
	return nil
}

// endpointOr returns override when set, otherwise fallback.
func endpointOr(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}
