package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/meowv/blog/internal/config"
	"github.com/meowv/blog/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubUserinfoURL = "https://api.github.com/user"

// GitHubProvider implements Provider for GitHub OAuth Apps.
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubProvider struct {
	oauthClient
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"` // empty if hidden in GitHub settings
	AvatarURL string `json:"avatar_url"`
}

func NewGitHubProvider(cfg config.ProviderConfig, httpClient *http.Client) *GitHubProvider {
	endpoint := github.Endpoint
	endpoint.AuthURL = endpointOr(cfg.AuthorizeURL, endpoint.AuthURL)
	endpoint.TokenURL = endpointOr(cfg.TokenURL, endpoint.TokenURL)

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"read:user", "user:email"}
	}

	return &GitHubProvider{oauthClient{
		name: "github",
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		userinfoURL: endpointOr(cfg.UserinfoURL, githubUserinfoURL),
		httpClient:  clientOrDefault(httpClient),
	}}
}

func (p *GitHubProvider) FetchProfile(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: github: creating userinfo request: %v", model.ErrProviderProfile, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", "meowv-blog")

	var u githubUser
	if err := p.getJSON(req, &u); err != nil {
		return Identity{}, err
	}
	if u.ID == 0 {
		return Identity{}, fmt.Errorf("%w: github: profile has no user id", model.ErrProviderProfile)
	}

	return Identity{
		Provider:   p.name,
		ExternalID: strconv.FormatInt(u.ID, 10),
		Name:       u.Name,
		Email:      u.Email,
		Login:      u.Login,
		AvatarURL:  u.AvatarURL,
	}, nil
}
