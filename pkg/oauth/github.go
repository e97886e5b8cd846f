package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIURL = "https://api.github.com"

var githubScopes = []string{"read:user", "user:email"}

// GitHub is the GitHub OAuth provider. GitHub does not expose email
// verification on the user endpoint, so the profile email comes from
// /user/emails: the primary verified address, or any verified one.
type GitHub struct {
	base

	apiURL string
}

// NewGitHub creates a GitHub provider. Scopes default to read:user and
// user:email when the config leaves them empty.
func NewGitHub(cfg Config, opts ...Option) (*GitHub, error) {
	b, err := newBase(cfg, github.Endpoint, githubScopes, opts...)
	if err != nil {
		return nil, err
	}
	apiURL := githubAPIURL
	if b.baseURL != "" {
		apiURL = b.baseURL
	}
	return &GitHub{base: b, apiURL: apiURL}, nil
}

func (p *GitHub) Name() string { return "github" }

func (p *GitHub) Profile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := p.client(ctx, token)

	var user struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		ID        int64  `json:"id"`
	}
	if err := p.getJSON(client, p.apiURL+"/user", &user); err != nil {
		return nil, err
	}

	email, err := p.verifiedEmail(client)
	if err != nil {
		return nil, err
	}

	return &Profile{
		ID:        strconv.FormatInt(user.ID, 10),
		Email:     email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}, nil
}

func (p *GitHub) verifiedEmail(client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := p.getJSON(client, p.apiURL+"/user/emails", &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", ErrEmailNotVerified
}

func (p *GitHub) getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s status %d", ErrFetchFailed, url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return nil
}
