package auth

// Assertion is a normalized identity claim returned by an OAuth provider
// after a verified handshake. It contains facts only, no decisions: the
// resolver decides which local user it maps to.
type Assertion struct {
	Provider  Provider
	Subject   string // provider-scoped unique user identifier
	Email     string // may be empty (GitHub without a usable email)
	Name      string
	AvatarURL string
}
