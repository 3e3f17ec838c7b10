package firebase

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims are the Firebase ID token claims this module cares about.
type IDTokenClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	UserID        string `json:"user_id"`
}

// TokenValidator validates Firebase-issued ID tokens against the secure
// token JWKS.
type TokenValidator struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience string
}

// NewTokenValidator fetches the signing keys and returns a validator bound
// to cfg.ProjectID. Keys refresh in the background until Close is called.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firebase: project id is required")
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = defaultJWKSURL
	}

	refresh := cfg.JWKSRefreshInterval
	if refresh == 0 {
		refresh = time.Hour
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   refresh,
		RefreshRateLimit:  time.Minute,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, providerError("jwks", 0, "jwks_fetch", "cannot fetch signing keys", err)
	}

	return &TokenValidator{
		jwks:     jwks,
		issuer:   cfg.issuer(),
		audience: cfg.ProjectID,
	}, nil
}

// Validate parses and verifies an ID token, returning its claims.
func (v *TokenValidator) Validate(tokenString string) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return nil, normalizeValidationError(err)
	}

	return claims, nil
}

// Close stops the background JWKS refresh.
func (v *TokenValidator) Close() {
	v.jwks.EndBackground()
}

func normalizeValidationError(err error) error {
	code := "token_invalid"
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		code = "token_expired"
	}
	return providerError("validate", 0, code, "id token rejected", err)
}
