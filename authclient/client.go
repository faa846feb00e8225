// Package authclient is the client-side session facade for the auth API. It
// owns a single auth state machine, persists the bearer token, attaches it
// to every request, and reacts to expiry.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State is the facade's position in its lifecycle.
//
//	Uninitialized -> Loading       persisted token found on Init
//	Uninitialized -> Anonymous     no persisted token
//	Loading       -> Authenticated profile fetch confirmed the token
//	Loading       -> Anonymous     token rejected; it is discarded
//	Authenticated -> Anonymous     Logout, or a protected call returned 401
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// User mirrors the profile shape the API returns.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIError carries the server's message for a failed action.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

const defaultCallbackPath = "/dashboard"

type Option func(*Client)

// WithTokenStore replaces the default in-memory token persistence.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTransport sets the underlying transport for all requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

type Client struct {
	baseURL string // API root, e.g. http://localhost:5000/api
	tokens  TokenStore
	base    http.RoundTripper
	http    *http.Client

	group singleflight.Group

	mu     sync.Mutex
	state  State
	user   *User
	token  string
	errMsg string
	gen    uint64 // bumped on every transition; stale fetches check it
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  NewMemoryTokenStore(),
		base:    http.DefaultTransport,
		state:   StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = &http.Client{
		Transport: &bearerTransport{
			base:           c.base,
			token:          c.currentToken,
			onUnauthorized: c.invalidate,
		},
	}
	return c
}

// Init restores a persisted session. With no stored token the client lands
// in Anonymous immediately; otherwise it passes through Loading while the
// token is confirmed against the profile endpoint. A rejected token is
// discarded, not kept for retry.
func (c *Client) Init(ctx context.Context) error {
	stored, err := c.tokens.Load()
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}

	c.mu.Lock()
	if stored == "" {
		c.state = StateAnonymous
		c.gen++
		c.mu.Unlock()
		return nil
	}
	c.state = StateLoading
	c.token = stored
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	user, err := c.fetchProfile(ctx, stored)
	if err != nil {
		c.discardSession(gen)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// A newer transition superseded this fetch; drop the result.
		return nil
	}
	c.user = user
	c.state = StateAuthenticated
	return nil
}

// Login exchanges credentials for a session. A rejected login records the
// server's message and leaves the auth state untouched.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.submit(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and logs straight into it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	return c.submit(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Logout drops the session. Local state and storage only; tokens are
// stateless so there is nothing to tell the server.
func (c *Client) Logout() {
	_ = c.tokens.Clear()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.token = ""
	c.state = StateAnonymous
	c.gen++
}

// AuthURL builds the OAuth initiation URL for a provider ("google" or
// "github"). The redirect intent is percent-encoded exactly once here; the
// server re-encodes it into the provider's state parameter.
func (c *Client) AuthURL(provider, redirectPath string) string {
	q := url.Values{}
	if redirectPath != "" {
		q.Set("redirect", redirectPath)
	}
	u := c.baseURL + "/auth/" + provider
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// HandleCallback consumes the final hop of the OAuth dance: the callback
// URL the server redirected the browser to. It stores the token, confirms
// it with a profile fetch, and returns the path to navigate to.
func (c *Client) HandleCallback(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse callback url: %w", err)
	}

	query := parsed.Query() // decodes each parameter exactly once
	tok := query.Get("token")
	if tok == "" {
		return "", &APIError{Status: http.StatusUnauthorized, Message: "callback is missing a token"}
	}

	redirectPath := query.Get("redirect")
	if redirectPath == "" {
		redirectPath = defaultCallbackPath
	}

	c.mu.Lock()
	c.token = tok
	c.state = StateLoading
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	user, err := c.fetchProfile(ctx, tok)
	if err != nil {
		c.discardSession(gen)
		return "", err
	}

	if err := c.tokens.Save(tok); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.user = user
		c.state = StateAuthenticated
		c.errMsg = ""
	}
	return redirectPath, nil
}

// Profile fetches the current user's profile with the attached token.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	c.mu.Lock()
	tok := c.token
	c.mu.Unlock()
	return c.fetchProfile(ctx, tok)
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Client) Token() string {
	return c.currentToken()
}

// Err returns the message of the last failed explicit action, if any.
func (c *Client) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Client) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
}

// submit posts a credentials form and establishes the session on success.
func (c *Client) submit(ctx context.Context, path string, form map[string]string) (*User, error) {
	body, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(markCredentialCall(ctx), http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := decodeError(resp)
		c.mu.Lock()
		c.errMsg = apiErr.Message
		c.mu.Unlock()
		return nil, apiErr
	}

	var payload struct {
		User
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if err := c.tokens.Save(payload.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &payload.User
	c.token = payload.Token
	c.state = StateAuthenticated
	c.errMsg = ""
	c.gen++

	u := payload.User
	return &u, nil
}

// fetchProfile is deduplicated per token: rapid concurrent callers share one
// network round trip.
func (c *Client) fetchProfile(ctx context.Context, tok string) (*User, error) {
	v, err, _ := c.group.Do(tok, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/profile", nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, decodeError(resp)
		}

		var user User
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*User), nil
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// invalidate is the transport's 401 hook: the server no longer accepts the
// token, so the session ends now rather than on the next restart.
func (c *Client) invalidate() {
	_ = c.tokens.Clear()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.token = ""
	c.state = StateAnonymous
	c.gen++
}

// discardSession clears a token that failed verification, unless a newer
// transition already took over.
func (c *Client) discardSession(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.user = nil
	c.token = ""
	c.state = StateAnonymous
	c.gen++
	c.mu.Unlock()

	_ = c.tokens.Clear()
}

func decodeError(resp *http.Response) *APIError {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}
