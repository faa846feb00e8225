package auth

import (
	"time"

	"github.com/google/uuid"
)

// Provider names external identity providers.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// User is the single identity record. Email is the natural key across all
// login methods; the nullable columns record which proofs of identity have
// been linked. At least one of PasswordHash, GoogleID, GitHubID is set.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string // stored lowercased
	PasswordHash string // empty for OAuth-only accounts
	GoogleID     string
	GitHubID     string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProviderID returns the linked subject id for the given provider.
func (u *User) ProviderID(p Provider) string {
	switch p {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderGitHub:
		return u.GitHubID
	}
	return ""
}

// SetProviderID links a provider subject id onto the record.
func (u *User) SetProviderID(p Provider, id string) {
	switch p {
	case ProviderGoogle:
		u.GoogleID = id
	case ProviderGitHub:
		u.GitHubID = id
	}
}
