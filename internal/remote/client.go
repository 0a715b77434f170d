// Package remote is the client for the travel guide backend API: place
// search, translation and guide generation.
package remote

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
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"

	"github.com/pkordes/travel-guide/internal/domain"
)

const (
	searchPath    = "/search_places"
	translatePath = "/translate"
	guidePath     = "/api/generate-travel-guide"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: status %d", e.Status)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Status, e.Message)
}

// PublicMessage returns the message the server meant for the user, if any.
func (e *APIError) PublicMessage() string { return e.Message }

// Client talks to the backend. Requests are paced by a shared limiter.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit caps outgoing requests at rps per second with the given
// burst. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New constructs a Client for the API rooted at baseURL.
func New(baseURL string, log *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote.New: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote.New: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchParams struct {
	Location string `url:"location"`
	Type     string `url:"type"`
}

// place is a search result as the backend encodes it.
type place struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Address        string        `json:"address"`
	Location       domain.LatLng `json:"location"`
	Rating         *float64      `json:"rating"`
	Description    string        `json:"description"`
	Types          []string      `json:"types"`
	PhotoReference string        `json:"photo_reference"`
}

func (p place) toDomain() domain.Place {
	return domain.Place{
		Name:        p.Name,
		Address:     p.Address,
		Location:    p.Location,
		Rating:      p.Rating,
		Description: p.Description,
		PlaceID:     p.ID,
		Types:       p.Types,
		Photo:       p.PhotoReference,
	}
}

// SearchPlaces calls GET /search_places.
func (c *Client) SearchPlaces(ctx context.Context, location, placeType string) ([]domain.Place, error) {
	var body struct {
		Places []place `json:"places"`
	}
	if err := c.get(ctx, searchPath, searchParams{Location: location, Type: placeType}, &body); err != nil {
		return nil, fmt.Errorf("remote.Client.SearchPlaces: %w", err)
	}
	out := make([]domain.Place, len(body.Places))
	for i, p := range body.Places {
		out[i] = p.toDomain()
	}
	return out, nil
}

type translateParams struct {
	Text       string `url:"text"`
	TargetLang string `url:"target_lang"`
}

// Translate calls GET /translate. An empty result means the backend had no
// translation.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	var body struct {
		TranslatedText string `json:"translated_text"`
	}
	if err := c.get(ctx, translatePath, translateParams{Text: text, TargetLang: targetLang}, &body); err != nil {
		return "", fmt.Errorf("remote.Client.Translate: %w", err)
	}
	return body.TranslatedText, nil
}

// GenerateGuide calls POST /api/generate-travel-guide. Delivery of the
// generated guide is the backend's job; only success is reported here.
func (c *Client) GenerateGuide(ctx context.Context, req domain.GuideRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("remote.Client.GenerateGuide: encode: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, c.endpoint(guidePath, ""), bytes.NewReader(payload), nil); err != nil {
		return fmt.Errorf("remote.Client.GenerateGuide: %w", err)
	}
	return nil
}

func (c *Client) endpoint(path, rawQuery string) string {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = rawQuery
	return u.String()
}

func (c *Client) get(ctx context.Context, path string, params any, out any) error {
	v, err := query.Values(params)
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	return c.do(ctx, http.MethodGet, c.endpoint(path, v.Encode()), nil, out)
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("remote request",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError reads the backend's {"message": ...} body if it has one.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}
