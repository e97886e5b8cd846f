package internal

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/albertogferrario/ferro/pkg/cookie"
	"github.com/albertogferrario/ferro/pkg/id"
	"github.com/albertogferrario/ferro/pkg/logger"
	"github.com/albertogferrario/ferro/pkg/session"
)

const (
	defaultSessionCookieName = "__sid"
	defaultSessionMaxAge     = 86400 * 30 // 30 days
)

// FingerprintMode selects which request attributes feed the session
// fingerprint used for hijack detection.
type FingerprintMode int

const (
	// FingerprintDisabled turns fingerprinting off.
	FingerprintDisabled FingerprintMode = iota
	// FingerprintCookie hashes User-Agent and Accept-Language. Stable
	// across IP changes, so it suits most web apps.
	FingerprintCookie
	// FingerprintStrict additionally binds the client IP. Expect false
	// positives for mobile and VPN users.
	FingerprintStrict
)

// FingerprintStrictness decides what happens on a fingerprint mismatch.
type FingerprintStrictness int

const (
	// FingerprintWarn logs the mismatch and keeps the session alive.
	FingerprintWarn FingerprintStrictness = iota
	// FingerprintReject invalidates the session on mismatch.
	FingerprintReject
)

// SessionManager drives the session lifecycle: the signed cookie that
// carries the token, loading and creating sessions in the store, token
// rotation on auth changes, and fingerprint validation.
type SessionManager struct {
	store                 session.Store
	jar                   *cookie.Jar
	logger                *slog.Logger
	cookieName            string
	maxAge                int
	fingerprintMode       FingerprintMode
	fingerprintStrictness FingerprintStrictness
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a SessionManager. The jar signs the session
// cookie so a tampered token never reaches the store.
func NewSessionManager(store session.Store, jar *cookie.Jar, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		jar:        jar,
		logger:     logger.NewDiscard(),
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName overrides the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

// WithSessionFingerprint enables hijack detection. Mode picks the
// request attributes to bind; strictness picks warn-only or reject.
func WithSessionFingerprint(mode FingerprintMode, strictness FingerprintStrictness) SessionOption {
	return func(sm *SessionManager) {
		sm.fingerprintMode = mode
		sm.fingerprintStrictness = strictness
	}
}

// SetLogger replaces the logger. The app calls this once it has built
// its own.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// LoadSession resolves the session referenced by the request cookie.
// A missing or tampered cookie yields (nil, nil); the caller creates a
// fresh session lazily. Store errors (ErrNotFound, ErrExpired) pass
// through, and a fingerprint mismatch under FingerprintReject yields
// session.ErrFingerprintMismatch.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.jar.GetSigned(r, sm.cookieName)
	if err != nil || token == "" {
		return nil, nil
	}

	sess, err := sm.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if sm.fingerprintMode != FingerprintDisabled && sess.Fingerprint != "" {
		if !sm.matchFingerprint(r, sess.Fingerprint) {
			if sm.fingerprintStrictness == FingerprintReject {
				return nil, session.ErrFingerprintMismatch
			}
			sm.logger.WarnContext(ctx, "session fingerprint mismatch",
				slog.String("session_id", sess.ID),
				slog.String("ip", clientIP(r)),
				slog.String("user_agent", r.UserAgent()),
			)
		}
	}

	return sess, nil
}

// CreateSession persists a fresh anonymous session stamped with the
// request's IP, user agent, and fingerprint.
func (sm *SessionManager) CreateSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	sess := session.New(id.NewULID(), token, time.Now().Add(time.Duration(sm.maxAge)*time.Second))
	sess.IP = clientIP(r)
	sess.UserAgent = r.UserAgent()
	sess.Fingerprint = sm.fingerprint(r)

	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	sess.MarkPersisted()
	sess.MarkClean()

	return sess, nil
}

// SaveSession writes the signed session cookie.
func (sm *SessionManager) SaveSession(w http.ResponseWriter, sess *session.Session) error {
	return sm.jar.SetSigned(w, sm.cookieName, sess.Token, sm.maxAge)
}

// RotateToken swaps the session token in place. Called on auth state
// changes to kill fixation: the pre-auth token stops resolving.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return err
	}

	sess.Token = newToken
	sess.MarkDirty()
	if err := sm.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	return nil
}

// DeleteSession removes the session from the store and clears the cookie.
func (sm *SessionManager) DeleteSession(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	sm.jar.Delete(w, sm.cookieName)
	if sess == nil {
		return nil
	}
	return sm.store.Delete(ctx, sess.ID)
}

// Touch bumps the session's activity timestamp in the store.
func (sm *SessionManager) Touch(ctx context.Context, sess *session.Session) error {
	now := time.Now()
	sess.LastActiveAt = now
	return sm.store.Touch(ctx, sess.ID, now)
}

// Store exposes the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// generateToken returns 32 bytes of crypto randomness, URL-safe encoded.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (sm *SessionManager) fingerprint(r *http.Request) string {
	switch sm.fingerprintMode {
	case FingerprintCookie:
		return hashFingerprint(r.UserAgent(), r.Header.Get("Accept-Language"))
	case FingerprintStrict:
		return hashFingerprint(r.UserAgent(), r.Header.Get("Accept-Language"), clientIP(r))
	default:
		return ""
	}
}

func (sm *SessionManager) matchFingerprint(r *http.Request, stored string) bool {
	current := sm.fingerprint(r)
	return subtle.ConstantTimeCompare([]byte(current), []byte(stored)) == 1
}

func hashFingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// clientIP extracts the originating client address, preferring proxy
// headers over the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		return strings.TrimSpace(xrip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
