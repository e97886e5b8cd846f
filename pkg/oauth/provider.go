// Package oauth implements OAuth 2.0 login flows against Google and
// GitHub. Providers normalize the userinfo responses into a Profile
// and reject accounts without a verified email.
package oauth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Profile is the provider-agnostic identity of an authenticated user.
type Profile struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// Provider is one configured OAuth 2.0 identity provider.
type Provider interface {
	// Name identifies the provider ("google", "github").
	Name() string

	// AuthCodeURL builds the authorization redirect URL for the flow.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades the authorization code for a token. A non-empty
	// redirectURI overrides the configured one for this exchange.
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// Profile fetches the user's identity with the token. Accounts
	// without a verified email yield ErrEmailNotVerified.
	Profile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// Config holds provider credentials. Embed one per provider in the app
// config with the matching env prefix.
type Config struct {
	ClientID     string   `yaml:"client_id" env:"CLIENT_ID,required"`
	ClientSecret string   `yaml:"client_secret" env:"CLIENT_SECRET,required"`
	RedirectURL  string   `yaml:"redirect_url" env:"REDIRECT_URL"`
	Scopes       []string `yaml:"scopes" env:"SCOPES" envSeparator:","`
}

// Option customizes a provider.
type Option func(*settings)

type settings struct {
	httpClient *http.Client
	baseURL    string
}

// WithHTTPClient routes all provider traffic through the given client.
// Intended for tests and custom transports.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) { s.httpClient = client }
}

// WithBaseURL points the provider's API calls at a different host,
// such as a GitHub Enterprise instance or a test server.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// base carries the pieces shared by all providers.
type base struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

func newBase(cfg Config, endpoint oauth2.Endpoint, defaultScopes []string, opts ...Option) (base, error) {
	if cfg.ClientID == "" {
		return base{}, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return base{}, ErrMissingClientSecret
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	return base{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: s.httpClient,
		baseURL:    s.baseURL,
	}, nil
}

func (b base) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return b.oauth.AuthCodeURL(state, opts...)
}

func (b base) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := b.oauth
	if redirectURI != "" {
		override := *b.oauth
		override.RedirectURL = redirectURI
		cfg = &override
	}
	return cfg.Exchange(b.withHTTPClient(ctx), code)
}

// client returns an http client that attaches the token and refreshes
// it when needed.
func (b base) client(ctx context.Context, token *oauth2.Token) *http.Client {
	return b.oauth.Client(b.withHTTPClient(ctx), token)
}

func (b base) withHTTPClient(ctx context.Context) context.Context {
	if b.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
	}
	return ctx
}
