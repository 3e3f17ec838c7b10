package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/assetverse/go-session"
	"github.com/assetverse/go-session/store"
)

func TestSignInWithPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jordan@example.com", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])

		_, _ = w.Write([]byte(`{
			"idToken": "firebase-id-token",
			"email": "jordan@example.com",
			"displayName": "Jordan Reyes",
			"localId": "uid-1",
			"expiresIn": "3600"
		}`))
	}))
	t.Cleanup(server.Close)

	cache := store.NewMemory()
	p, err := New(Config{
		APIKey:    "test-key",
		SignInURL: server.URL,
		Cache:     cache,
	})
	require.NoError(t, err)

	notified := make(chan *session.ProviderSession, 2)
	unsub := p.OnSessionChange(func(ps *session.ProviderSession) {
		notified <- ps
	})
	defer unsub()

	// Initial async fire carries the signed-out state.
	initial := <-notified
	assert.Nil(t, initial)

	sess, err := p.SignInWithPassword(context.Background(), "jordan@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", sess.UID)
	assert.Equal(t, "firebase-id-token", sess.IDToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

	changed := <-notified
	require.NotNil(t, changed)
	assert.Equal(t, "uid-1", changed.UID)

	assert.NotEmpty(t, cache.Get(), "session is serialized into the cache")
	assert.Equal(t, "uid-1", p.Current().UID)
}

func TestSignInWithPasswordRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_PASSWORD","status":"INVALID_ARGUMENT"}}`))
	}))
	t.Cleanup(server.Close)

	p, err := New(Config{APIKey: "test-key", SignInURL: server.URL})
	require.NoError(t, err)

	_, err = p.SignInWithPassword(context.Background(), "jordan@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, session.IsProviderError(err))

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, "firebase", rich.Metadata["provider"])
	assert.Equal(t, "INVALID_PASSWORD", rich.Metadata["code"])
	assert.Nil(t, p.Current())
}

func TestSignOutClearsCacheAndNotifies(t *testing.T) {
	cache := store.NewMemory()
	require.NoError(t, cache.Set(`{"UID":"uid-1","Email":"jordan@example.com"}`))

	p, err := New(Config{APIKey: "test-key", Cache: cache})
	require.NoError(t, err)
	require.NotNil(t, p.Current(), "cached session restored at construction")

	notified := make(chan *session.ProviderSession, 2)
	unsub := p.OnSessionChange(func(ps *session.ProviderSession) {
		notified <- ps
	})
	defer unsub()

	initial := <-notified
	require.NotNil(t, initial)
	assert.Equal(t, "uid-1", initial.UID)

	require.NoError(t, p.SignOut(context.Background()))

	signedOut := <-notified
	assert.Nil(t, signedOut)
	assert.Empty(t, cache.Get())
	assert.Nil(t, p.Current())
}

func TestRestoreDiscardsExpiredSession(t *testing.T) {
	expired := session.ProviderSession{
		UID:       "uid-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	raw, err := json.Marshal(expired)
	require.NoError(t, err)

	cache := store.NewMemory()
	require.NoError(t, cache.Set(string(raw)))

	p, err := New(Config{APIKey: "test-key", Cache: cache})
	require.NoError(t, err)

	assert.Nil(t, p.Current())
	assert.Empty(t, cache.Get(), "expired session is evicted")
}

func TestRestoreDiscardsUnreadableCache(t *testing.T) {
	cache := store.NewMemory()
	require.NoError(t, cache.Set("not json"))

	p, err := New(Config{APIKey: "test-key", Cache: cache})
	require.NoError(t, err)

	assert.Nil(t, p.Current())
	assert.Empty(t, cache.Get())
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestSignInInteractiveRequiresGoogleCredentials(t *testing.T) {
	p, err := New(Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = p.SignInInteractive(context.Background())
	require.Error(t, err)
	assert.True(t, session.IsProviderError(err))
}

func TestSignInWithIdpVerifiesIDToken(t *testing.T) {
	privateKey, jwksJSON, kid := newTestJWKS(t)
	jwksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(jwksJSON)
	}))
	t.Cleanup(jwksServer.Close)

	now := time.Now().UTC()
	goodToken := signToken(t, privateKey, kid, jwt.MapClaims{
		"iss":     "https://securetoken.google.com/" + testProject,
		"aud":     testProject,
		"sub":     "uid-1",
		"user_id": "uid-1",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	})
	expiredToken := signToken(t, privateKey, kid, jwt.MapClaims{
		"iss": "https://securetoken.google.com/" + testProject,
		"aud": testProject,
		"sub": "uid-1",
		"iat": now.Add(-2 * time.Hour).Unix(),
		"exp": now.Add(-time.Hour).Unix(),
	})

	idToken := goodToken
	idpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{
			"idToken":   idToken,
			"email":     "jordan@example.com",
			"localId":   "uid-1",
			"expiresIn": "3600",
		}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	t.Cleanup(idpServer.Close)

	p, err := New(Config{
		APIKey:           "test-key",
		ProjectID:        testProject,
		JWKSURL:          jwksServer.URL,
		SignInWithIdpURL: idpServer.URL,
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)

	sess, err := p.signInWithIdp(context.Background(), "google-id-token", "http://127.0.0.1/callback")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", sess.UID)

	idToken = expiredToken
	_, err = p.signInWithIdp(context.Background(), "google-id-token", "http://127.0.0.1/callback")
	require.Error(t, err)
	assert.True(t, session.IsProviderError(err))
	assert.Equal(t, "uid-1", p.Current().UID, "rejected token never replaces the session")
}

func TestRestoreRejectsUnverifiableIDToken(t *testing.T) {
	_, jwksJSON, _ := newTestJWKS(t)
	jwksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(jwksJSON)
	}))
	t.Cleanup(jwksServer.Close)

	cached := session.ProviderSession{UID: "uid-1", IDToken: "forged.id.token"}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	cache := store.NewMemory()
	require.NoError(t, cache.Set(string(raw)))

	p, err := New(Config{
		APIKey:    "test-key",
		ProjectID: testProject,
		JWKSURL:   jwksServer.URL,
		Cache:     cache,
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)

	assert.Nil(t, p.Current())
	assert.Empty(t, cache.Get(), "unverifiable session is evicted")
}

func TestExpiryFrom(t *testing.T) {
	assert.True(t, expiryFrom("").IsZero())
	assert.True(t, expiryFrom("garbage").IsZero())
	assert.True(t, expiryFrom("-5").IsZero())
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiryFrom("3600"), 5*time.Second)
}
