// Package identity is the client for the hosted identity service (the
// identity toolkit REST API). It signs users in and out, persists the
// refresh credential between runs, and reports every change of the
// signed-in identity to a Publisher.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/travel-guide/internal/domain"
)

const (
	DefaultAuthBaseURL  = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenBaseURL = "https://securetoken.googleapis.com/v1"

	requestTimeout = 20 * time.Second
	// refreshSkew renews ID tokens slightly before they expire.
	refreshSkew = time.Minute
	maxBody     = 1 << 20
)

// Publisher receives identity changes.
type Publisher interface {
	Publish(next *domain.Session)
}

// CredentialStore persists the refresh credential.
type CredentialStore interface {
	Load() (Credential, error)
	Save(c Credential) error
	Delete() error
}

// Consent obtains a Google ID token from the user.
type Consent interface {
	Authorize(ctx context.Context) (string, error)
}

// Config holds the endpoints and key of the identity project.
type Config struct {
	APIKey       string
	AuthBaseURL  string
	TokenBaseURL string
}

// Client implements the identity provider operations.
type Client struct {
	cfg     Config
	http    *http.Client
	pub     Publisher
	creds   CredentialStore
	consent Consent
	log     *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	user    *domain.Session
	idToken string
	refresh string
	expiry  time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithConsent sets the Google consent flow. Without it federated sign-in
// reports the provider as disabled.
func WithConsent(consent Consent) Option {
	return func(c *Client) { c.consent = consent }
}

// NewClient constructs a Client. creds may be nil to keep sessions in
// memory only.
func NewClient(cfg Config, pub Publisher, creds CredentialStore, log *slog.Logger, opts ...Option) *Client {
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = DefaultAuthBaseURL
	}
	if cfg.TokenBaseURL == "" {
		cfg.TokenBaseURL = DefaultTokenBaseURL
	}
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")
	cfg.TokenBaseURL = strings.TrimRight(cfg.TokenBaseURL, "/")
	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: requestTimeout},
		pub:   pub,
		creds: creds,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---- wire types -------------------------------------------------------------

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type oobRequest struct {
	RequestType string `json:"requestType"`
	Email       string `json:"email"`
}

type idpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
}

type idpResponse struct {
	tokenResponse
	IsNewUser        bool `json:"isNewUser"`
	NeedConfirmation bool `json:"needConfirmation"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
	} `json:"users"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	ExpiresIn    string `json:"expires_in"`
}

// ---- operations --------------------------------------------------------------

// SignIn signs in with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	var resp tokenResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.call(ctx, "accounts:signInWithPassword", req, &resp); err != nil {
		return domain.Session{}, fmt.Errorf("identity.Client.SignIn: %w", err)
	}
	return c.signedIn(resp), nil
}

// SignUp creates a new email/password identity and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	var resp tokenResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.call(ctx, "accounts:signUp", req, &resp); err != nil {
		return domain.Session{}, fmt.Errorf("identity.Client.SignUp: %w", err)
	}
	return c.signedIn(resp), nil
}

// UpdateDisplayName renames the signed-in identity.
func (c *Client) UpdateDisplayName(ctx context.Context, name string) error {
	idToken, err := c.IDToken(ctx)
	if err != nil {
		return fmt.Errorf("identity.Client.UpdateDisplayName: %w", err)
	}
	var resp tokenResponse
	req := updateRequest{IDToken: idToken, DisplayName: name, ReturnSecureToken: true}
	if err := c.call(ctx, "accounts:update", req, &resp); err != nil {
		return fmt.Errorf("identity.Client.UpdateDisplayName: %w", err)
	}

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return fmt.Errorf("identity.Client.UpdateDisplayName: %w", domain.ErrNoSession)
	}
	c.user.DisplayName = name
	if resp.IDToken != "" {
		c.setTokensLocked(resp.IDToken, resp.RefreshToken, resp.ExpiresIn)
	}
	sess := *c.user
	c.mu.Unlock()

	c.pub.Publish(&sess)
	return nil
}

// SendPasswordReset asks the service to email a password reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	req := oobRequest{RequestType: "PASSWORD_RESET", Email: email}
	if err := c.call(ctx, "accounts:sendOobCode", req, nil); err != nil {
		return fmt.Errorf("identity.Client.SendPasswordReset: %w", err)
	}
	return nil
}

// SignInWithProvider runs Google consent and exchanges the Google ID token
// for a session.
func (c *Client) SignInWithProvider(ctx context.Context) (domain.FederatedSignIn, error) {
	if c.consent == nil {
		return domain.FederatedSignIn{}, &domain.AuthError{Kind: domain.AuthProviderDisabled, Message: "OPERATION_NOT_ALLOWED"}
	}
	googleToken, err := c.consent.Authorize(ctx)
	if err != nil {
		return domain.FederatedSignIn{}, fmt.Errorf("identity.Client.SignInWithProvider: %w", err)
	}

	post := url.Values{}
	post.Set("id_token", googleToken)
	post.Set("providerId", "google.com")
	req := idpRequest{
		PostBody:            post.Encode(),
		RequestURI:          "http://localhost",
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}
	var resp idpResponse
	if err := c.call(ctx, "accounts:signInWithIdp", req, &resp); err != nil {
		return domain.FederatedSignIn{}, fmt.Errorf("identity.Client.SignInWithProvider: %w", err)
	}
	if resp.NeedConfirmation || resp.IDToken == "" {
		return domain.FederatedSignIn{}, &domain.AuthError{Kind: domain.AuthAccountConflict, Message: "account exists with different credential"}
	}

	sess := c.signedIn(resp.tokenResponse)
	return domain.FederatedSignIn{Session: sess, IsNewUser: resp.IsNewUser}, nil
}

// SignOut forgets the session locally and on disk. The session ends even
// when the stored credential cannot be removed; that failure is only logged.
func (c *Client) SignOut(context.Context) error {
	c.mu.Lock()
	var userID string
	if c.user != nil {
		userID = c.user.ID
	}
	c.user = nil
	c.idToken, c.refresh = "", ""
	c.expiry = time.Time{}
	c.mu.Unlock()

	if c.creds != nil {
		if err := c.creds.Delete(); err != nil {
			c.log.Error("sign out: delete stored credential", "user_id", userID, "error", err)
		}
	}
	c.pub.Publish(nil)
	return nil
}

// Restore signs back in with the stored credential, if any. It always
// publishes exactly one notification: the restored session or none.
func (c *Client) Restore(ctx context.Context) error {
	if c.creds == nil {
		c.pub.Publish(nil)
		return nil
	}
	cred, err := c.creds.Load()
	if err != nil {
		c.pub.Publish(nil)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("identity.Client.Restore: %w", err)
	}

	sess, err := c.restore(ctx, cred)
	if err != nil {
		c.log.Warn("restore session", "user_id", cred.UserID, "error", err)
		var ae *domain.AuthError
		if errors.As(err, &ae) && ae.Kind != domain.AuthNetwork {
			// credential revoked or expired
			_ = c.creds.Delete()
		}
		c.pub.Publish(nil)
		return fmt.Errorf("identity.Client.Restore: %w", err)
	}
	c.log.Info("session restored", "user_id", sess.ID)
	c.pub.Publish(&sess)
	return nil
}

func (c *Client) restore(ctx context.Context, cred Credential) (domain.Session, error) {
	c.mu.Lock()
	c.refresh = cred.RefreshToken
	c.mu.Unlock()

	idToken, err := c.refreshToken(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	var resp lookupResponse
	if err := c.call(ctx, "accounts:lookup", lookupRequest{IDToken: idToken}, &resp); err != nil {
		return domain.Session{}, err
	}
	if len(resp.Users) == 0 {
		return domain.Session{}, &domain.AuthError{Kind: domain.AuthUserNotFound, Message: "USER_NOT_FOUND"}
	}
	u := resp.Users[0]
	sess := domain.Session{ID: u.LocalID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL, Email: u.Email}

	c.mu.Lock()
	c.user = &sess
	c.mu.Unlock()
	return sess, nil
}

// IDToken returns a current ID token, refreshing it when it is about to
// expire.
func (c *Client) IDToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok, exp, refresh := c.idToken, c.expiry, c.refresh
	c.mu.Unlock()

	if tok != "" && c.now().Add(refreshSkew).Before(exp) {
		return tok, nil
	}
	if refresh == "" {
		return "", domain.ErrNoSession
	}
	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	refresh := c.refresh
	c.mu.Unlock()

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refresh)
	endpoint := c.cfg.TokenBaseURL + "/token?key=" + url.QueryEscape(c.cfg.APIKey)

	var resp refreshResponse
	if err := c.send(ctx, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &resp); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.setTokensLocked(resp.IDToken, resp.RefreshToken, resp.ExpiresIn)
	userID := resp.UserID
	c.mu.Unlock()
	c.saveCredential(userID, resp.RefreshToken)
	return resp.IDToken, nil
}

// signedIn records a fresh token response and publishes the session.
func (c *Client) signedIn(resp tokenResponse) domain.Session {
	sess := domain.Session{
		ID:          resp.LocalID,
		DisplayName: resp.DisplayName,
		PhotoURL:    resp.PhotoURL,
		Email:       resp.Email,
	}
	c.mu.Lock()
	c.user = &sess
	c.setTokensLocked(resp.IDToken, resp.RefreshToken, resp.ExpiresIn)
	c.mu.Unlock()

	c.saveCredential(resp.LocalID, resp.RefreshToken)
	published := sess
	c.pub.Publish(&published)
	return sess
}

// setTokensLocked stores tokens. Callers hold mu.
func (c *Client) setTokensLocked(idToken, refresh, expiresIn string) {
	c.idToken = idToken
	if refresh != "" {
		c.refresh = refresh
	}
	fallback := c.now()
	if secs, err := strconv.Atoi(expiresIn); err == nil {
		fallback = fallback.Add(time.Duration(secs) * time.Second)
	}
	c.expiry = tokenExpiry(idToken, fallback)
}

func (c *Client) saveCredential(userID, refresh string) {
	if c.creds == nil || refresh == "" {
		return
	}
	if err := c.creds.Save(Credential{UserID: userID, RefreshToken: refresh}); err != nil {
		c.log.Warn("persist credential", "user_id", userID, "error", err)
	}
}

// call POSTs a JSON request to an accounts method.
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	endpoint := c.cfg.AuthBaseURL + "/" + method + "?key=" + url.QueryEscape(c.cfg.APIKey)
	return c.send(ctx, endpoint, "application/json", bytes.NewReader(body), out)
}

func (c *Client) send(ctx context.Context, endpoint, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromBody(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
