package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pkordes/travel-guide/internal/domain"
)

const (
	callbackPath          = "/callback"
	defaultConsentTimeout = 3 * time.Minute
)

// GoogleConsent runs the OAuth2 authorization-code flow with PKCE against
// Google in the user's browser and returns the resulting Google ID token.
// Only one consent may be pending; starting another cancels the first.
type GoogleConsent struct {
	base    oauth2.Config
	open    func(url string) error
	timeout time.Duration
	log     *slog.Logger

	mu      sync.Mutex
	pending context.CancelCauseFunc
}

// ConsentOption customises a GoogleConsent.
type ConsentOption func(*GoogleConsent)

// WithEndpoint replaces the Google OAuth2 endpoint.
func WithEndpoint(ep oauth2.Endpoint) ConsentOption {
	return func(g *GoogleConsent) { g.base.Endpoint = ep }
}

// WithBrowser replaces the function that opens the consent page.
func WithBrowser(open func(url string) error) ConsentOption {
	return func(g *GoogleConsent) { g.open = open }
}

// WithConsentTimeout bounds how long the user has to finish consent.
func WithConsentTimeout(d time.Duration) ConsentOption {
	return func(g *GoogleConsent) { g.timeout = d }
}

// NewGoogleConsent constructs a GoogleConsent for the given OAuth client.
func NewGoogleConsent(clientID, clientSecret string, log *slog.Logger, opts ...ConsentOption) *GoogleConsent {
	g := &GoogleConsent{
		base: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		open:    browser.OpenURL,
		timeout: defaultConsentTimeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var errSuperseded = errors.New("consent superseded by a newer request")

type callbackResult struct {
	code string
	err  error
}

// Authorize opens the consent page and waits for the redirect.
func (g *GoogleConsent) Authorize(ctx context.Context) (string, error) {
	if g.base.ClientID == "" {
		return "", &domain.AuthError{Kind: domain.AuthProviderDisabled, Message: "google sign-in is not configured"}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	g.replacePending(cancel)
	ctx, stop := context.WithTimeout(ctx, g.timeout)
	defer stop()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("identity.GoogleConsent.Authorize: listen: %w", err)
	}
	cfg := g.base
	cfg.RedirectURL = fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	if err := g.open(authURL); err != nil {
		g.log.Warn("open consent page", "error", err)
		return "", &domain.AuthError{Kind: domain.AuthPopupBlocked, Message: "could not open the sign-in page", Err: err}
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		if errors.Is(context.Cause(ctx), errSuperseded) {
			return "", &domain.AuthError{Kind: domain.AuthPopupCancelled, Message: "sign-in superseded", Err: errSuperseded}
		}
		return "", &domain.AuthError{Kind: domain.AuthPopupClosed, Message: "sign-in was not completed", Err: ctx.Err()}
	}
	if res.err != nil {
		return "", res.err
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return "", &domain.AuthError{Kind: domain.AuthUnknown, Message: "token exchange failed: " + re.ErrorCode, Err: err}
		}
		return "", transportError(err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", &domain.AuthError{Kind: domain.AuthUnknown, Message: "token response has no id_token"}
	}
	return idToken, nil
}

func (g *GoogleConsent) replacePending(cancel context.CancelCauseFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending != nil {
		g.pending(errSuperseded)
	}
	g.pending = cancel
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "invalid state", http.StatusBadRequest)
			return
		case q.Get("error") == "access_denied":
			res.err = &domain.AuthError{Kind: domain.AuthPopupCancelled, Message: "sign-in was cancelled"}
		case q.Get("error") != "":
			res.err = &domain.AuthError{Kind: domain.AuthUnknown, Message: q.Get("error")}
		case q.Get("code") == "":
			res.err = &domain.AuthError{Kind: domain.AuthUnknown, Message: "missing authorization code"}
		default:
			res.code = q.Get("code")
		}
		select {
		case results <- res:
		default:
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, "You can close this window and return to the app.")
	})
	return mux
}
