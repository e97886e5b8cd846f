package middlewares

import (
	"errors"

	"github.com/albertogferrario/ferro/internal"
	"github.com/albertogferrario/ferro/pkg/jwt"
)

// jwtClaimsKey stores parsed JWT claims in the context.
type jwtClaimsKey struct{}

// JWTConfig configures the JWT middleware.
type JWTConfig struct {
	Extractor    internal.Extractor
	extractorSet bool
}

// JWTOption configures JWTConfig.
type JWTOption func(*JWTConfig)

// WithJWTExtractor sets a custom token extractor chain.
func WithJWTExtractor(ext internal.Extractor) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// JWT returns middleware that extracts a token from the request,
// verifies it with svc, and stores the parsed claims in the context. T
// is the claims type (jwt.StandardClaims or a custom struct). The
// default extractor reads the Authorization Bearer header.
func JWT[T any](svc *jwt.Service, opts ...JWTOption) internal.Middleware {
	cfg := &JWTConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(
			internal.FromBearerToken(),
		)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			token, ok := cfg.Extractor.Extract(c)
			if !ok || token == "" {
				return internal.ErrUnauthorized("missing authentication token")
			}

			var claims T
			if err := svc.Parse(token, &claims); err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					return internal.ErrUnauthorized("token expired")
				}
				return internal.ErrUnauthorized("invalid token")
			}

			c.Set(jwtClaimsKey{}, &claims)

			return next(c)
		}
	}
}

// GetJWTClaims extracts parsed JWT claims from the context. Returns nil
// when the JWT middleware did not run or the type does not match.
func GetJWTClaims[T any](c internal.Context) *T {
	v, ok := c.Get(jwtClaimsKey{}).(*T)
	if !ok {
		return nil
	}
	return v
}
