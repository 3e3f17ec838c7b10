package session

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore is a single named slot holding the bearer token. Reads are
// synchronous and must be available before any network call. The token is
// opaque to this layer.
type CredentialStore interface {
	// Get returns the stored token, or "" when the slot is empty.
	Get() string
	Set(token string) error
	Clear() error
}

// Credentials is the {token, user} envelope returned by the backend auth
// endpoints.
type Credentials struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// AuthAPI is the backend auth surface the Coordinator drives. rest.AuthClient
// implements it over the transport dispatcher.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	RegisterEmployee(ctx context.Context, payload RegisterEmployeePayload) (*Credentials, error)
	RegisterHR(ctx context.Context, payload RegisterHRPayload) (*Credentials, error)
	Me(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, patch ProfilePatch) (*User, error)
}

// ProviderSession is the identity provider's own view of its session. It is
// auxiliary state: it never populates the backend-authoritative user.
type ProviderSession struct {
	UID         string
	Email       string
	DisplayName string
	Picture     string
	IDToken     string
	ExpiresAt   time.Time
}

// ProviderListener receives provider session changes. A nil session means the
// provider considers itself signed out.
type ProviderListener func(*ProviderSession)

// IdentityProvider wraps a federated auth provider. Failures are opaque to
// the Coordinator: logged, never parsed.
type IdentityProvider interface {
	// SignInWithPassword mirrors a backend login into the provider for
	// cross-surface persistence. Best effort only.
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)

	// SignInInteractive runs the provider's interactive flow (the popup
	// equivalent: an OAuth redirect through a local listener).
	SignInInteractive(ctx context.Context) (*ProviderSession, error)

	SignOut(ctx context.Context) error

	// OnSessionChange registers a listener invoked asynchronously whenever
	// the provider's notion of session changes, including once at startup
	// with the current state. Returns an unsubscribe handle.
	OnSessionChange(fn ProviderListener) (unsubscribe func())
}

// DefaultLogger returns the fallback printf logger used when no Logger is
// configured.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
