package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/provider"
)

const defaultAPIBaseURL = "https://api.github.com"

// Provider implements the GitHub OAuth flow. GitHub is plain OAuth2 (no ID
// token), so the profile comes from its REST API after the code exchange.
type Provider struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
}

var _ provider.OAuthProvider = (*Provider)(nil)

func New(clientID, clientSecret, redirectURL string) (*Provider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	return &Provider{
		apiBaseURL: defaultAPIBaseURL,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     githuboauth.Endpoint,
			Scopes:       []string{"user:email"},
		},
	}, nil
}

func (p *Provider) Name() auth.Provider {
	return auth.ProviderGitHub
}

func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) Exchange(ctx context.Context, code string, codeVerifier string) (*auth.Assertion, error) {
	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.VerifierOption(codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	client := p.oauthConfig.Client(ctx, token)

	profile, err := p.fetchProfile(ctx, client)
	if err != nil {
		return nil, err
	}

	email := profile.Email
	if email == "" {
		// The public profile email is optional on GitHub; fall back to the
		// primary verified address from the emails endpoint. An empty
		// result propagates and the resolver rejects the login.
		email, err = p.fetchPrimaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	return &auth.Assertion{
		Provider:  auth.ProviderGitHub,
		Subject:   strconv.FormatInt(profile.ID, 10),
		Email:     email,
		Name:      name,
		AvatarURL: profile.AvatarURL,
	}, nil
}

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (p *Provider) fetchProfile(ctx context.Context, client *http.Client) (*githubProfile, error) {
	var profile githubProfile
	if err := p.getJSON(ctx, client, "/user", &profile); err != nil {
		return nil, fmt.Errorf("github user request failed: %w", err)
	}
	if profile.ID == 0 {
		return nil, errors.New("github profile missing id")
	}
	return &profile, nil
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *Provider) fetchPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []githubEmail
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return "", fmt.Errorf("github emails request failed: %w", err)
	}
	return pickEmail(emails), nil
}

// pickEmail prefers the primary verified address, then any verified one.
// Unverified addresses never drive account linking.
func pickEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}

func (p *Provider) getJSON(ctx context.Context, client *http.Client, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
