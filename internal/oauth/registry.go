package oauth

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/meowv/blog/internal/config"
	"github.com/meowv/blog/internal/model"
)

// Registry maps discriminators to providers. It performs no auth logic itself.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers the given providers by name. A later provider with
// the same name replaces an earlier one.
func NewRegistry(list ...Provider) *Registry {
	m := make(map[string]Provider, len(list))
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider for name or an ErrUnsupportedProvider domain error.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, model.NewDomainError(model.ErrUnsupportedProvider, fmt.Sprintf("Not implemented: %s", name))
	}
	return p, nil
}

// Names lists the registered discriminators in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProvidersFromConfig builds every provider whose section has credentials.
// Providers without credentials are left out so that requests for them fail
// with ErrUnsupportedProvider instead of reaching a half-configured client.
func ProvidersFromConfig(cfg config.AuthorizeConfig, baseURL string, httpClient *http.Client) []Provider {
	var providers []Provider
	if cfg.GitHub.Enabled() {
		providers = append(providers, NewGitHubProvider(withRedirect(cfg.GitHub, baseURL, "github"), httpClient))
	}
	if cfg.Gitee.Enabled() {
		providers = append(providers, NewGiteeProvider(withRedirect(cfg.Gitee, baseURL, "gitee"), httpClient))
	}
	return providers
}

// withRedirect fills in the frontend callback route when no redirect URL is
// configured. The frontend page forwards code and state to the token endpoint.
func withRedirect(cfg config.ProviderConfig, baseURL, name string) config.ProviderConfig {
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = fmt.Sprintf("%s/oauth/%s/callback", strings.TrimRight(baseURL, "/"), url.PathEscape(name))
	}
	return cfg
}
