package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// DefaultGitHubAPIURL is the base of the GitHub REST API.
const DefaultGitHubAPIURL = "https://api.github.com"

// GitHubUser is the portion of the GitHub /user API response we care about.
//
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubUser struct {
	ID    int64  `json:"id"`    // stable numeric ID
	Login string `json:"login"` // GitHub username
	Email string `json:"email"` // empty if hidden in GitHub settings
}

// GitHubConfig configures GitHub sign-in. AuthURL, TokenURL and APIURL
// default to GitHub's public endpoints when empty.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	AuthURL      string
	TokenURL     string
	APIURL       string
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code flow.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. We redirect the user to GitHub with our ClientID, scopes and a state value.
//  2. The user approves on GitHub.
//  3. GitHub redirects back to CallbackURL with a short-lived "code".
//  4. We exchange the code for an access token (server-to-server, with ClientSecret).
//  5. We call the GitHub API with that token to learn who the user is.
//
// The GitHub access token never reaches the client; it only ever sees our own
// bearer token.
type GitHubProvider struct {
	config *oauth2.Config
	apiURL string
}

// NewGitHubProvider creates a GitHubProvider from cfg.
//
// Scopes requested:
//   - "read:user"  → public profile (ID, login)
//   - "user:email" → email addresses
func NewGitHubProvider(cfg GitHubConfig) *GitHubProvider {
	endpoint := github.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultGitHubAPIURL
	}

	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     endpoint,
		},
		apiURL: strings.TrimRight(apiURL, "/"),
	}
}

// AuthURL returns the GitHub authorization URL carrying state.
//
// The state is a random value the handler also stores in a short-lived
// cookie; the callback rejects any request whose state does not match, which
// stops an attacker from completing a flow on someone else's behalf.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the GitHub profile of the user
// who approved it.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// config.Client adds "Authorization: Bearer <github token>" to every request.
	client := resty.NewWithClient(p.config.Client(ctx, oauthToken)).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/vnd.github+json")

	var ghUser GitHubUser
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&ghUser).
		Get(p.apiURL + "/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode())
	}

	if ghUser.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return &ghUser, nil
}
