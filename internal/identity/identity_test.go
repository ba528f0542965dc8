package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ekene/oryo/internal/config"
)

func fakeProvider(t *testing.T) (*httptest.Server, config.OAuthConfig) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":      "u-1",
			"name":    "Ngozi Okafor",
			"email":   "Ngozi.O@example.com",
			"picture": "https://example.com/ngozi.png",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, config.OAuthConfig{
		ClientID:    "client",
		AuthURL:     srv.URL + "/auth",
		TokenURL:    srv.URL + "/token",
		UserInfoURL: srv.URL + "/userinfo",
		RedirectURL: "http://127.0.0.1:0/callback",
		Scopes:      []string{"profile"},
	}
}

func TestNewProviderRequiresClientID(t *testing.T) {
	_, err := NewProvider(config.OAuthConfig{}, "")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestAuthURLCarriesState(t *testing.T) {
	_, cfg := fakeProvider(t)
	p, err := NewProvider(cfg, "secret")
	require.NoError(t, err)
	u, err := url.Parse(p.AuthURL("xyz"))
	require.NoError(t, err)
	require.Equal(t, "xyz", u.Query().Get("state"))
	require.Equal(t, "client", u.Query().Get("client_id"))
	require.Equal(t, "code", u.Query().Get("response_type"))
}

func TestExchangeAndProfile(t *testing.T) {
	_, cfg := fakeProvider(t)
	p, err := NewProvider(cfg, "secret")
	require.NoError(t, err)
	ctx := context.Background()

	tok, err := p.Exchange(ctx, "good-code")
	require.NoError(t, err)
	prof, err := p.Profile(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, Profile{
		ID:     "u-1",
		Name:   "Ngozi Okafor",
		Email:  "Ngozi.O@example.com",
		Avatar: "https://example.com/ngozi.png",
		Handle: "@ngozi.o",
	}, prof)

	_, err = p.Exchange(ctx, "bad-code")
	require.Error(t, err)
}

// browser follows the consent URL straight back to the redirect URI.
func browser(code string, tamper bool) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		state := q.Get("state")
		if tamper {
			state = "forged"
		}
		back := q.Get("redirect_uri") + "?" + url.Values{"code": {code}, "state": {state}}.Encode()
		resp, err := http.Get(back)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}

func TestLoginLoopback(t *testing.T) {
	_, cfg := fakeProvider(t)
	p, err := NewProvider(cfg, "secret")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prof, err := p.Login(ctx, browser("good-code", false))
	require.NoError(t, err)
	require.Equal(t, "Ngozi Okafor", prof.Name)
	require.Equal(t, "@ngozi.o", prof.Handle)
}

func TestLoginRejectsForgedState(t *testing.T) {
	_, cfg := fakeProvider(t)
	p, err := NewProvider(cfg, "secret")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = p.Login(ctx, browser("good-code", true))
	require.ErrorIs(t, err, ErrStateMismatch)
}

func TestLoginCancelled(t *testing.T) {
	_, cfg := fakeProvider(t)
	p, err := NewProvider(cfg, "secret")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())

	_, err = p.Login(ctx, func(string) error { cancel(); return nil })
	require.True(t, errors.Is(err, context.Canceled))
}
