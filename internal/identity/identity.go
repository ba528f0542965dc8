// Package identity signs a user in with an OAuth provider and returns the
// profile fields oryo keeps: display name, avatar and a handle.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/ekene/oryo/internal/config"
)

// ErrNotConfigured means no OAuth client id is set.
var ErrNotConfigured = errors.New("oauth login not configured: set oauth.client_id")

// Profile is the subset of the provider's userinfo response oryo uses.
type Profile struct {
	ID     string
	Name   string
	Email  string
	Avatar string
	Handle string
}

type userInfo struct {
	ID       string `json:"id"`
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Username string `json:"preferred_username"`
}

// Provider wraps an oauth2 client config and the provider's userinfo endpoint.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewProvider builds a provider from the oauth config section. secret is the
// client secret, read by the caller from the environment.
func NewProvider(c config.OAuthConfig, secret string) (*Provider, error) {
	if strings.TrimSpace(c.ClientID) == "" {
		return nil, ErrNotConfigured
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.AuthURL,
				TokenURL: c.TokenURL,
			},
			RedirectURL: c.RedirectURL,
			Scopes:      c.Scopes,
		},
		userInfoURL: c.UserInfoURL,
	}, nil
}

// AuthURL is the consent page for state.
func (p *Provider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades an authorization code for a token.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}
	return tok, nil
}

// Profile fetches and decodes the userinfo document for tok.
func (p *Provider) Profile(ctx context.Context, tok *oauth2.Token) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Profile{}, fmt.Errorf("userinfo: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var u userInfo
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	id := u.ID
	if id == "" {
		id = u.Sub
	}
	return Profile{
		ID:     id,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Picture,
		Handle: handleFor(u),
	}, nil
}

// handleFor prefers the provider's username, then the email local part.
func handleFor(u userInfo) string {
	h := u.Username
	if h == "" {
		h, _, _ = strings.Cut(u.Email, "@")
	}
	h = strings.ToLower(strings.TrimSpace(h))
	if h == "" {
		return ""
	}
	return "@" + strings.TrimPrefix(h, "@")
}
