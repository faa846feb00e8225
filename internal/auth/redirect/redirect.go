// Package redirect carries the caller's post-login destination through the
// OAuth dance. The path is percent-encoded into the provider's opaque state
// parameter on the way out and decoded exactly once on the way back; every
// other hop must treat the value as opaque.
package redirect

import (
	"net/url"
	"strings"
)

const DefaultPath = "/"

type Carrier struct {
	fallback string
}

func NewCarrier(fallback string) *Carrier {
	if fallback == "" {
		fallback = DefaultPath
	}
	return &Carrier{fallback: fallback}
}

// Encode turns an in-app path into an opaque state value. Empty or non-path
// inputs encode the fallback so the round trip always lands somewhere safe.
func (c *Carrier) Encode(path string) string {
	if !validPath(path) {
		path = c.fallback
	}
	return url.QueryEscape(path)
}

// Decode reverses Encode. A stripped, mangled, or absolute-URL state value
// degrades to the fallback path rather than failing the login.
func (c *Carrier) Decode(state string) string {
	if state == "" {
		return c.fallback
	}

	path, err := url.QueryUnescape(state)
	if err != nil || !validPath(path) {
		return c.fallback
	}
	return path
}

// validPath accepts absolute in-app paths only. Scheme-relative values
// ("//evil.example") would escape the application, so they are rejected.
func validPath(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	if strings.HasPrefix(path, "//") {
		return false
	}
	return true
}
