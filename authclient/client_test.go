package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI mimics the auth endpoints the facade talks to. The accepted token
// is mutable so a test can revoke a session mid-flight.
type fakeAPI struct {
	mu           sync.Mutex
	validToken   string
	profileCalls int
	profileDelay time.Duration
}

func (f *fakeAPI) accepts(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validToken != "" && r.Header.Get("Authorization") == "Bearer "+f.validToken
}

func (f *fakeAPI) revoke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validToken = ""
}

func (f *fakeAPI) slowProfile(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileDelay = d
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileCalls
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var adaProfile = map[string]string{
	"id":        "6a0f8f0e-0000-0000-0000-000000000001",
	"name":      "Ada",
	"email":     "ada@x.com",
	"avatarUrl": "",
}

func newFakeServer(t *testing.T) (*fakeAPI, *Client, *MemoryTokenStore) {
	t.Helper()

	api := &fakeAPI{validToken: "good-token"}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var form map[string]string
		_ = json.NewDecoder(r.Body).Decode(&form)
		if form["email"] != "ada@x.com" || form["password"] != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Incorrect email or password."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"id":    adaProfile["id"],
			"name":  adaProfile["name"],
			"email": adaProfile["email"],
			"token": "good-token",
		})
	})

	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var form map[string]string
		_ = json.NewDecoder(r.Body).Decode(&form)
		if form["name"] == "" || form["email"] == "" || form["password"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Please provide all fields"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":    adaProfile["id"],
			"name":  form["name"],
			"email": form["email"],
			"token": "good-token",
		})
	})

	mux.HandleFunc("/api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.profileCalls++
		delay := api.profileDelay
		api.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		if !api.accepts(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized, token failed"})
			return
		}
		writeJSON(w, http.StatusOK, adaProfile)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tokens := NewMemoryTokenStore()
	client := New(srv.URL+"/api", WithTokenStore(tokens))
	return api, client, tokens
}

func TestInitWithoutToken(t *testing.T) {
	_, client, _ := newFakeServer(t)

	assert.Equal(t, StateUninitialized, client.State())
	require.NoError(t, client.Init(context.Background()))
	assert.Equal(t, StateAnonymous, client.State())
	assert.Nil(t, client.CurrentUser())
}

func TestInitRestoresSession(t *testing.T) {
	_, client, tokens := newFakeServer(t)
	require.NoError(t, tokens.Save("good-token"))

	require.NoError(t, client.Init(context.Background()))

	assert.Equal(t, StateAuthenticated, client.State())
	require.NotNil(t, client.CurrentUser())
	assert.Equal(t, "ada@x.com", client.CurrentUser().Email)
	assert.Equal(t, "good-token", client.Token())
}

func TestInitDiscardsRejectedToken(t *testing.T) {
	_, client, tokens := newFakeServer(t)
	require.NoError(t, tokens.Save("stale-token"))

	require.NoError(t, client.Init(context.Background()))

	assert.Equal(t, StateAnonymous, client.State())
	assert.Empty(t, client.Token())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLoginEstablishesSession(t *testing.T) {
	_, client, tokens := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))

	user, err := client.Login(context.Background(), "ada@x.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, StateAuthenticated, client.State())
	assert.Empty(t, client.Err())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "good-token", stored)
}

func TestLoginFailureRecordsMessage(t *testing.T) {
	_, client, _ := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))

	_, err := client.Login(context.Background(), "ada@x.com", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect email or password.", apiErr.Message)

	// The failed attempt did not touch the auth state.
	assert.Equal(t, StateAnonymous, client.State())
	assert.Equal(t, "Incorrect email or password.", client.Err())

	client.ClearError()
	assert.Empty(t, client.Err())
}

func TestFailedLoginKeepsSession(t *testing.T) {
	_, client, tokens := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))
	_, err := client.Login(context.Background(), "ada@x.com", "secret123")
	require.NoError(t, err)

	// A rejected re-login rejects the submitted credentials, not the
	// bearer token the session holds.
	_, err = client.Login(context.Background(), "ada@x.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.Equal(t, StateAuthenticated, client.State())
	require.NotNil(t, client.CurrentUser())
	assert.Equal(t, "good-token", client.Token())
	assert.Equal(t, "Incorrect email or password.", client.Err())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "good-token", stored)
}

func TestConcurrentProfileFetchesShareOneRequest(t *testing.T) {
	api, client, tokens := newFakeServer(t)
	require.NoError(t, tokens.Save("good-token"))
	require.NoError(t, client.Init(context.Background()))

	api.slowProfile(200 * time.Millisecond)
	before := api.calls()

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			user, err := client.Profile(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, user)
		}()
	}
	close(start)
	wg.Wait()

	// All five callers rode the same in-flight request.
	assert.Equal(t, 1, api.calls()-before)
}

func TestRegisterEstablishesSession(t *testing.T) {
	_, client, _ := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))

	user, err := client.Register(context.Background(), "Ada", "ada@x.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "ada@x.com", user.Email)
	assert.Equal(t, StateAuthenticated, client.State())
}

func TestLogout(t *testing.T) {
	_, client, tokens := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))
	_, err := client.Login(context.Background(), "ada@x.com", "secret123")
	require.NoError(t, err)

	client.Logout()

	assert.Equal(t, StateAnonymous, client.State())
	assert.Nil(t, client.CurrentUser())
	assert.Empty(t, client.Token())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestUnauthorizedResponseEndsSession(t *testing.T) {
	api, client, tokens := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))
	_, err := client.Login(context.Background(), "ada@x.com", "secret123")
	require.NoError(t, err)

	// The server stops honoring the token, as it would on expiry.
	api.revoke()

	_, err = client.Profile(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.Equal(t, StateAnonymous, client.State())
	assert.Nil(t, client.CurrentUser())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestAuthURL(t *testing.T) {
	client := New("http://localhost:5000/api")

	assert.Equal(t,
		"http://localhost:5000/api/auth/google?redirect=%2Fsettings",
		client.AuthURL("google", "/settings"))

	assert.Equal(t,
		"http://localhost:5000/api/auth/github",
		client.AuthURL("github", ""))
}

func TestHandleCallback(t *testing.T) {
	_, client, tokens := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))

	path, err := client.HandleCallback(context.Background(),
		"http://localhost:5173/auth/callback?redirect=%2Fsettings&token=good-token")
	require.NoError(t, err)

	assert.Equal(t, "/settings", path)
	assert.Equal(t, StateAuthenticated, client.State())
	require.NotNil(t, client.CurrentUser())
	assert.Equal(t, "ada@x.com", client.CurrentUser().Email)

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "good-token", stored)
}

func TestHandleCallbackDefaultsRedirect(t *testing.T) {
	_, client, _ := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))

	path, err := client.HandleCallback(context.Background(),
		"http://localhost:5173/auth/callback?token=good-token")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", path)
}

func TestHandleCallbackWithoutToken(t *testing.T) {
	_, client, _ := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))

	_, err := client.HandleCallback(context.Background(),
		"http://localhost:5173/auth/callback?redirect=%2Fsettings")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StateAnonymous, client.State())
}

func TestHandleCallbackRejectedToken(t *testing.T) {
	_, client, tokens := newFakeServer(t)
	require.NoError(t, client.Init(context.Background()))

	_, err := client.HandleCallback(context.Background(),
		"http://localhost:5173/auth/callback?token=forged-token")
	require.Error(t, err)

	assert.Equal(t, StateAnonymous, client.State())
	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}
