package authclient

import (
	"context"
	"net/http"
)

// credentialCallKey marks requests that submit credentials for verification.
// A 401 on such a request rejects the submitted credentials, not the attached
// bearer token, so it must not end the session.
type credentialCallKey struct{}

func markCredentialCall(ctx context.Context) context.Context {
	return context.WithValue(ctx, credentialCallKey{}, true)
}

func isCredentialCall(r *http.Request) bool {
	v, _ := r.Context().Value(credentialCallKey{}).(bool)
	return v
}

// bearerTransport attaches the current token to every outgoing request so
// callers never add the header per call. Modeled on oauth2.Transport.
type bearerTransport struct {
	base           http.RoundTripper
	token          func() string
	onUnauthorized func()
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.token()

	if tok != "" {
		// RoundTrippers must not mutate the caller's request.
		clone := req.Clone(req.Context())
		clone.Header.Set("Authorization", "Bearer "+tok)
		req = clone
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// The server rejected the token we attached to a protected call: the
	// session is over. Credential submissions are exempt.
	if resp.StatusCode == http.StatusUnauthorized && tok != "" &&
		t.onUnauthorized != nil && !isCredentialCall(req) {
		t.onUnauthorized()
	}

	return resp, nil
}
