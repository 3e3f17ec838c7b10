// Package transport is the sole outbound path for AssetVerse API calls. The
// dispatcher attaches the current bearer token to every request and watches
// every response for authorization failure, so no page-level code can end up
// with a stale session or its own logout policy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	session "github.com/assetverse/go-session"
)

const (
	headerAuthorization = "Authorization"
	headerClientID      = "X-Client-Id"

	defaultTimeout = 15 * time.Second
)

// Option customizes dispatcher construction.
type Option func(*Dispatcher)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithOnUnauthorized wires the forced-invalidation hook, invoked exactly once
// per call that the backend rejects with a 401. Callers still see the
// original error.
func WithOnUnauthorized(fn func()) Option {
	return func(d *Dispatcher) {
		d.onUnauthorized = fn
	}
}

// WithLogger overrides the logger.
func WithLogger(logger session.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClientID overrides the per-install client id header value.
func WithClientID(id string) Option {
	return func(d *Dispatcher) {
		if id != "" {
			d.clientID = id
		}
	}
}

// Dispatcher issues JSON requests against the backend, attaching
// `Authorization: Bearer <token>` whenever the credential store holds one.
type Dispatcher struct {
	base           string
	httpClient     *http.Client
	store          session.CredentialStore
	onUnauthorized func()
	logger         session.Logger
	clientID       string
}

// New builds a dispatcher rooted at baseURL. The store is read on every
// request so token changes apply immediately.
func New(baseURL string, store session.CredentialStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		base:       strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
		logger:     discardLogger{},
		clientID:   uuid.NewString(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Get issues a GET with optional query parameters, decoding the JSON response
// into out.
func (d *Dispatcher) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return d.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (d *Dispatcher) Post(ctx context.Context, path string, body, out any) error {
	return d.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (d *Dispatcher) Put(ctx context.Context, path string, body, out any) error {
	return d.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH with a JSON body.
func (d *Dispatcher) Patch(ctx context.Context, path string, body, out any) error {
	return d.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE.
func (d *Dispatcher) Delete(ctx context.Context, path string, out any) error {
	return d.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do performs one request. Transport failures map to NetworkError, 401 to
// AuthorizationError (after firing the invalidation hook once), 4xx with
// field detail to ValidationError, and any other failing status to a backend
// error. A nil out discards the response body.
func (d *Dispatcher) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return wrapNetwork(err, method, path, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.base+path, reader)
	if err != nil {
		return wrapNetwork(err, method, path, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerClientID, d.clientID)
	if token := d.store.Get(); token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return wrapNetwork(err, method, path, "backend unreachable")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapNetwork(err, method, path, "failed to read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return d.failureError(method, path, resp.StatusCode, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return wrapNetwork(err, method, path, "failed to decode response")
	}

	return nil
}

// errorEnvelope matches the backend's failure body.
type errorEnvelope struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

func (e errorEnvelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (d *Dispatcher) failureError(method, path string, status int, payload []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(payload, &envelope)

	meta := map[string]any{
		"method": method,
		"path":   path,
		"status": status,
	}
	if msg := envelope.message(); msg != "" {
		meta["message"] = msg
	}

	switch {
	case status == http.StatusUnauthorized:
		// The single choke point for authorization-failure detection: the
		// session is invalidated as a side effect, then the caller sees a
		// normal failure.
		d.logger.Warn("unauthorized response on %s %s, invalidating session", method, path)
		if d.onUnauthorized != nil {
			d.onUnauthorized()
		}
		return session.ErrUnauthorized.Clone().WithMetadata(meta)

	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if len(envelope.Errors) > 0 {
			meta["fields"] = envelope.Errors
		}
		return session.ErrValidation.Clone().WithMetadata(meta)

	default:
		return session.ErrBackend.Clone().WithMetadata(meta)
	}
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}

func wrapNetwork(err error, method, path, msg string) error {
	clone := session.ErrNetwork.Clone()
	if clone == nil {
		return err
	}

	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"method": method,
		"path":   path,
		"cause":  err.Error(),
		"detail": msg,
	})
}
