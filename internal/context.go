package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albertogferrario/ferro/pkg/binder"
	"github.com/albertogferrario/ferro/pkg/broadcast"
	"github.com/albertogferrario/ferro/pkg/cookie"
	"github.com/albertogferrario/ferro/pkg/hostrouter"
	"github.com/albertogferrario/ferro/pkg/queue"
	"github.com/albertogferrario/ferro/pkg/sanitizer"
	"github.com/albertogferrario/ferro/pkg/session"
	"github.com/albertogferrario/ferro/pkg/storage"
	"github.com/albertogferrario/ferro/pkg/validator"
)

// ValidationErrors is re-exported so handlers can inspect field errors
// without importing the validator package.
type ValidationErrors = validator.ValidationErrors

// RequestIDKey is the context key under which the request ID middleware
// stores the ID. Context.RequestID reads it back.
type RequestIDKey struct{}

// Renderer is anything that can write itself to a response. It matches
// templ.Component, so templ views render directly; html/template users
// wrap their templates in a small adapter.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context carries one request through a handler. It implements
// context.Context by delegating to the request's context, so it can be
// passed straight into store and client calls.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the response writer.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns the URL parameter by name, or "".
	Param(name string) string

	// Query returns the query parameter by name, or "".
	Query(name string) string

	// QueryDefault returns the query parameter or def when absent.
	QueryDefault(name, def string) string

	// Form returns the form field by name, parsing the form on first use.
	Form(name string) string

	// FormFile returns the first uploaded file under the given field.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// Header returns a request header value.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Set stores a value in the request context.
	Set(key, value any)

	// Get reads a value from the request context, or nil.
	Get(key any) any

	// RequestID returns the ID assigned by the request ID middleware,
	// or "" when the middleware is not installed.
	RequestID() string

	// Domain returns the request host, normalized: lowercased, port
	// stripped.
	Domain() string

	// Subdomain returns the subdomain relative to the app's base domain,
	// or "" when no base domain is configured or the host doesn't match.
	Subdomain() string

	// Bind decodes the request body into v based on Content-Type (JSON
	// or form), then sanitizes and validates. Validation failures come
	// back as ValidationErrors with a nil error; the error is reserved
	// for malformed input and system failures.
	Bind(v any) (ValidationErrors, error)

	// BindForm decodes form data into v, then sanitizes and validates.
	BindForm(v any) (ValidationErrors, error)

	// BindQuery decodes query parameters into v, then sanitizes and
	// validates.
	BindQuery(v any) (ValidationErrors, error)

	// BindJSON decodes the JSON body into v, then sanitizes and
	// validates.
	BindJSON(v any) (ValidationErrors, error)

	// JSON writes v as a JSON response with the given status.
	JSON(code int, v any) error

	// String writes a plain-text response with the given status.
	String(code int, s string) error

	// NoContent writes a bodyless response with the given status.
	NoContent(code int) error

	// Redirect sends an HTTP redirect.
	Redirect(code int, url string) error

	// Render writes the renderer's output as an HTML response.
	Render(code int, r Renderer) error

	// Error builds an HTTPError to return from the handler. It does not
	// write anything; the error handler renders it.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether the response header has been sent.
	Written() bool

	// ResponseWriter exposes the wrapped writer for middleware that
	// needs status or size after the handler ran.
	ResponseWriter() *ResponseWriter

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a plain cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string)

	// CookieSigned reads a tamper-proof cookie. Requires a cookie secret.
	CookieSigned(name string) (string, error)

	// SetCookieSigned writes a tamper-proof cookie. Requires a cookie
	// secret.
	SetCookieSigned(name, value string, maxAge int) error

	// CookieEncrypted reads an encrypted cookie. Requires a cookie
	// secret.
	CookieEncrypted(name string) (string, error)

	// SetCookieEncrypted writes an encrypted cookie. Requires a cookie
	// secret.
	SetCookieEncrypted(name, value string, maxAge int) error

	// Flash reads and consumes a one-shot message set by SetFlash.
	Flash(key string, dest any) error

	// SetFlash stores a one-shot message delivered to the next request.
	SetFlash(key string, value any) error

	// Session returns the request's session, creating one when the
	// request carries none. Returns session.ErrNotConfigured when
	// sessions are not set up.
	Session() (*session.Session, error)

	// SessionGet reads a session value. Missing keys yield (nil, nil).
	SessionGet(key string) (any, error)

	// SessionSet stores a session value; it is persisted before the
	// response goes out.
	SessionSet(key string, val any) error

	// SessionDelete removes a session value.
	SessionDelete(key string) error

	// Auth binds the user to the session and rotates the session token
	// so a pre-login token can't be replayed.
	Auth(userID string) error

	// Logout deletes the session and clears its cookie.
	Logout() error

	// UserID returns the authenticated user's ID, or "" for anonymous
	// requests. It never creates a session.
	UserID() string

	// IsAuthenticated reports whether a user is bound to the session.
	IsAuthenticated() bool

	// Enqueue pushes a background task. Returns queue.ErrNotConfigured
	// when no queue is set up.
	Enqueue(name string, payload any, opts ...queue.EnqueueOption) error

	// Broadcast publishes an event to a realtime channel. Returns
	// broadcast.ErrNotConfigured when no broadcaster is set up.
	Broadcast(channel, event string, payload any, opts ...broadcast.PublishOption) error

	// Storage returns the configured file storage. Returns
	// storage.ErrNotConfigured when none is set up.
	Storage() (storage.Storage, error)

	// Upload stores a file and returns its descriptor.
	Upload(r io.Reader, size int64, opts ...storage.PutOption) (*storage.File, error)

	// Download streams a stored file.
	Download(key string) (io.ReadCloser, error)

	// DeleteFile removes a stored file.
	DeleteFile(key string) error

	// FileURL builds a URL for a stored file.
	FileURL(key string, opts ...storage.URLOption) (string, error)

	// Logger returns the request-scoped logger.
	Logger() *slog.Logger

	// LogDebug logs at debug level with the request context attached.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs at info level with the request context attached.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs at warn level with the request context attached.
	LogWarn(msg string, attrs ...any)

	// LogError logs at error level with the request context attached.
	LogError(msg string, attrs ...any)
}

type requestContext struct {
	request        *http.Request
	response       http.ResponseWriter
	responseWriter *ResponseWriter
	logger         *slog.Logger
	cookies        *cookie.Jar

	sessionManager *SessionManager
	session        *session.Session

	jobs        JobEnqueuer
	broadcaster *broadcast.Broadcaster
	storage     storage.Storage

	baseDomain string

	sessionLoaded         bool
	sessionHookRegistered bool
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw := NewResponseWriter(w)
	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
		cookies:        app.cookies,
		sessionManager: app.sessionManager,
		jobs:           app.jobs,
		broadcaster:    app.broadcaster,
		storage:        app.storage,
		baseDomain:     app.baseDomain,
	}
}

func (c *requestContext) Request() *http.Request        { return c.request }
func (c *requestContext) Response() http.ResponseWriter { return c.response }
func (c *requestContext) Context() context.Context      { return c.request.Context() }

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *requestContext) Err() error                  { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, def string) string {
	if v := c.request.URL.Query().Get(name); v != "" {
		return v
	}
	return def
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) RequestID() string {
	if v, ok := c.Get(RequestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func (c *requestContext) Domain() string {
	return hostrouter.Domain(c.request)
}

func (c *requestContext) Subdomain() string {
	if c.baseDomain == "" {
		return ""
	}
	return hostrouter.Subdomain(c.request, c.baseDomain)
}

func (c *requestContext) Bind(v any) (ValidationErrors, error) {
	ct := c.request.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		return c.BindJSON(v)
	}
	return c.BindForm(v)
}

func (c *requestContext) BindForm(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.Form(), v, "bind form")
}

func (c *requestContext) BindQuery(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.Query(), v, "bind query")
}

func (c *requestContext) BindJSON(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.JSON(), v, "bind json")
}

// bindAndValidate is the shared bind pipeline: decode, sanitize,
// validate. Field-level failures are data, not errors.
func (c *requestContext) bindAndValidate(bind func(*http.Request, any) error, v any, label string) (ValidationErrors, error) {
	if err := bind(c.request, v); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if err := sanitizer.SanitizeStruct(v); err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	if err := validator.ValidateStruct(v); err != nil {
		if validator.IsValidationError(err) {
			return validator.ExtractValidationErrors(err), nil
		}
		return nil, fmt.Errorf("validate: %w", err)
	}
	return nil, nil
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Render(code int, r Renderer) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return r.Render(c.request.Context(), c.response)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookies.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.cookies.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.cookies.Delete(c.response, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.cookies.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.cookies.SetSigned(c.response, name, value, maxAge)
}

func (c *requestContext) CookieEncrypted(name string) (string, error) {
	return c.cookies.GetEncrypted(c.request, name)
}

func (c *requestContext) SetCookieEncrypted(name, value string, maxAge int) error {
	return c.cookies.SetEncrypted(c.response, name, value, maxAge)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.cookies.Flash(c.response, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.cookies.SetFlash(c.response, key, value)
}

// registerSessionHook arranges for a dirty session to be written back
// right before the first response byte. Write-back failures are logged,
// not surfaced; the response is already committed at that point.
func (c *requestContext) registerSessionHook() {
	if c.sessionHookRegistered || c.sessionManager == nil {
		return
	}
	c.sessionHookRegistered = true
	c.responseWriter.OnBeforeWrite(func() {
		if c.session == nil || !c.session.IsDirty() {
			return
		}
		if err := c.sessionManager.Store().Update(c.Context(), c.session); err != nil {
			c.logger.ErrorContext(c.Context(), "session write-back failed",
				slog.String("session_id", c.session.ID),
				slog.Any("error", err),
			)
			return
		}
		c.session.MarkClean()
	})
}

// loadSession resolves the request's session without creating one.
func (c *requestContext) loadSession() (*session.Session, error) {
	if c.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}
	c.registerSessionHook()

	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := c.sessionManager.LoadSession(c.Context(), c.request)
	if err != nil {
		return nil, err
	}
	c.session = sess
	c.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) Session() (*session.Session, error) {
	sess, err := c.loadSession()
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}

	sess, err = c.sessionManager.CreateSession(c.Context(), c.request)
	if err != nil {
		return nil, err
	}
	if err := c.sessionManager.SaveSession(c.response, sess); err != nil {
		return nil, err
	}
	c.session = sess
	c.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) SessionGet(key string) (any, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	val, _ := sess.Get(key)
	return val, nil
}

func (c *requestContext) SessionSet(key string, val any) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.Set(key, val)
	return nil
}

func (c *requestContext) SessionDelete(key string) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.Delete(key)
	return nil
}

func (c *requestContext) Auth(userID string) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}

	sess.UserID = &userID
	sess.MarkDirty()

	// Rotation invalidates the pre-auth token so it can't be fixated.
	if err := c.sessionManager.RotateToken(c.Context(), sess); err != nil {
		return err
	}
	return c.sessionManager.SaveSession(c.response, sess)
}

func (c *requestContext) Logout() error {
	sess, err := c.loadSession()
	if err != nil {
		return err
	}

	if err := c.sessionManager.DeleteSession(c.Context(), c.response, sess); err != nil {
		return err
	}
	c.session = nil
	c.sessionLoaded = true
	return nil
}

func (c *requestContext) UserID() string {
	sess, err := c.loadSession()
	if err != nil || sess == nil || sess.UserID == nil {
		return ""
	}
	return *sess.UserID
}

func (c *requestContext) IsAuthenticated() bool {
	return c.UserID() != ""
}

func (c *requestContext) Enqueue(name string, payload any, opts ...queue.EnqueueOption) error {
	if c.jobs == nil {
		return queue.ErrNotConfigured
	}
	return c.jobs.Enqueue(c.Context(), name, payload, opts...)
}

func (c *requestContext) Broadcast(channel, event string, payload any, opts ...broadcast.PublishOption) error {
	if c.broadcaster == nil {
		return broadcast.ErrNotConfigured
	}
	return c.broadcaster.Broadcast(c.Context(), channel, event, payload, opts...)
}

func (c *requestContext) Storage() (storage.Storage, error) {
	if c.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.storage, nil
}

func (c *requestContext) Upload(r io.Reader, size int64, opts ...storage.PutOption) (*storage.File, error) {
	if c.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.storage.Put(c.Context(), r, size, opts...)
}

func (c *requestContext) Download(key string) (io.ReadCloser, error) {
	if c.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.storage.Get(c.Context(), key)
}

func (c *requestContext) DeleteFile(key string) error {
	if c.storage == nil {
		return storage.ErrNotConfigured
	}
	return c.storage.Delete(c.Context(), key)
}

func (c *requestContext) FileURL(key string, opts ...storage.URLOption) (string, error) {
	if c.storage == nil {
		return "", storage.ErrNotConfigured
	}
	return c.storage.URL(c.Context(), key, opts...)
}

func (c *requestContext) Logger() *slog.Logger { return c.logger }

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}
