package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var googleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// Google is the Google OAuth provider.
type Google struct {
	base

	userInfoURL string
}

// NewGoogle creates a Google provider. Scopes default to email and
// profile when the config leaves them empty.
func NewGoogle(cfg Config, opts ...Option) (*Google, error) {
	b, err := newBase(cfg, google.Endpoint, googleScopes, opts...)
	if err != nil {
		return nil, err
	}
	userInfoURL := googleUserInfoURL
	if b.baseURL != "" {
		userInfoURL = b.baseURL + "/oauth2/v2/userinfo"
	}
	return &Google{base: b, userInfoURL: userInfoURL}, nil
}

func (p *Google) Name() string { return "google" }

func (p *Google) Profile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	resp, err := p.client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", ErrFetchFailed, resp.StatusCode)
	}

	var user struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	if !user.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	return &Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.Picture,
	}, nil
}
