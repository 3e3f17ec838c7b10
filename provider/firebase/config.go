package firebase

import (
	"net/http"
	"strings"
	"time"

	session "github.com/assetverse/go-session"
)

const (
	defaultSignInURL      = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	defaultSignInWithIdp  = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithIdp"
	defaultGoogleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultGoogleTokenURL = "https://oauth2.googleapis.com/token"
	defaultJWKSURL        = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	defaultCallbackAddr   = "127.0.0.1:53682"
)

// Config holds Firebase project configuration.
type Config struct {
	// APIKey is the Firebase web API key. Required.
	APIKey string

	// ProjectID is the Firebase project id, used as the expected
	// issuer/audience when validating ID tokens.
	ProjectID string

	// GoogleClientID and GoogleClientSecret enable the interactive Google
	// sign-in flow. Optional; SignInInteractive fails without them.
	GoogleClientID     string
	GoogleClientSecret string

	// CallbackAddr is the local address the interactive flow listens on for
	// the OAuth redirect. Default: "127.0.0.1:53682".
	CallbackAddr string

	// Scopes requested during interactive sign-in.
	// Default: openid, email, profile.
	Scopes []string

	// Cache persists the provider session across restarts (optional). The
	// serialized session is kept in its own slot, separate from the bearer
	// token slot.
	Cache session.CredentialStore

	// SignInURL, SignInWithIdpURL, AuthURL, TokenURL and JWKSURL override
	// the Google endpoints (tests).
	SignInURL        string
	SignInWithIdpURL string
	AuthURL          string
	TokenURL         string
	JWKSURL          string

	// JWKSRefreshInterval is how often cached signing keys are refreshed.
	// Default: 1 hour.
	JWKSRefreshInterval time.Duration

	HTTPClient *http.Client
	Logger     session.Logger
}

// DefaultScopes returns the scopes requested during interactive sign-in.
func DefaultScopes() []string {
	return []string{"openid", "email", "profile"}
}

func (c Config) issuer() string {
	return "https://securetoken.google.com/" + strings.TrimSpace(c.ProjectID)
}
