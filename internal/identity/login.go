package identity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ErrStateMismatch means the callback did not carry the state we issued.
var ErrStateMismatch = errors.New("oauth callback state mismatch")

type callback struct {
	code string
	err  error
}

// Login runs the loopback authorization-code flow: it serves the redirect
// URL locally, hands the consent URL to open, and waits for the browser to
// come back. A redirect URL with port 0 is bound to a free port.
func (p *Provider) Login(ctx context.Context, open func(authURL string) error) (Profile, error) {
	redirect, err := url.Parse(p.oauth.RedirectURL)
	if err != nil {
		return Profile{}, fmt.Errorf("redirect url: %w", err)
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", redirect.Host)
	if err != nil {
		return Profile{}, fmt.Errorf("listen %s: %w", redirect.Host, err)
	}
	redirect.Host = ln.Addr().String()
	flow := *p
	oc := *p.oauth
	oc.RedirectURL = redirect.String()
	flow.oauth = &oc

	path := redirect.Path
	if path == "" {
		path = "/"
	}
	state := uuid.NewString()
	done := make(chan callback, 1)

	r := chi.NewRouter()
	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var cb callback
		switch {
		case q.Get("state") != state:
			cb.err = ErrStateMismatch
		case q.Get("error") != "":
			cb.err = fmt.Errorf("provider denied login: %s", q.Get("error"))
		case q.Get("code") == "":
			cb.err = errors.New("oauth callback without code")
		default:
			cb.code = q.Get("code")
		}
		if cb.err != nil {
			http.Error(w, cb.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Signed in to oryo. You can close this tab.")
		}
		select {
		case done <- cb:
		default:
		}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	if err := open(flow.AuthURL(state)); err != nil {
		return Profile{}, fmt.Errorf("open browser: %w", err)
	}

	var cb callback
	select {
	case <-ctx.Done():
		return Profile{}, ctx.Err()
	case cb = <-done:
	}
	if cb.err != nil {
		return Profile{}, cb.err
	}
	tok, err := flow.Exchange(ctx, cb.code)
	if err != nil {
		return Profile{}, err
	}
	return flow.Profile(ctx, tok)
}
