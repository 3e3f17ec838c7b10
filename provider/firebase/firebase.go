package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	session "github.com/assetverse/go-session"
	"github.com/google/uuid"
)

// Provider implements session.IdentityProvider against the Firebase Auth
// REST API. Session change notifications are delivered asynchronously; a
// newly registered listener always receives the current state, which mirrors
// how Firebase client SDKs report the initial auth state.
type Provider struct {
	config     Config
	httpClient *http.Client
	logger     session.Logger
	validator  *TokenValidator

	mu        sync.Mutex
	current   *session.ProviderSession
	listeners map[int]session.ProviderListener
	nextID    int
}

// New creates a Firebase provider. When cfg.ProjectID is set, every ID token
// the provider adopts is verified against the securetoken JWKS first. When
// cfg.Cache holds a previously serialized session that still verifies, it
// becomes the initial state announced to listeners.
func New(cfg Config, opts ...Option) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("firebase: API key is required")
	}

	if cfg.SignInURL == "" {
		cfg.SignInURL = defaultSignInURL
	}
	if cfg.SignInWithIdpURL == "" {
		cfg.SignInWithIdpURL = defaultSignInWithIdp
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultGoogleAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultGoogleTokenURL
	}
	if cfg.CallbackAddr == "" {
		cfg.CallbackAddr = defaultCallbackAddr
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	p := &Provider{
		config:     cfg,
		httpClient: client,
		logger:     cfg.Logger,
		listeners:  map[int]session.ProviderListener{},
	}

	if p.logger == nil {
		p.logger = session.DefaultLogger()
	}

	for _, opt := range opts {
		opt(p)
	}

	if cfg.ProjectID != "" {
		validator, err := NewTokenValidator(cfg)
		if err != nil {
			return nil, err
		}
		p.validator = validator
	}

	p.current = p.restore()

	return p, nil
}

// Close stops the validator's background JWKS refresh.
func (p *Provider) Close() {
	if p.validator != nil {
		p.validator.Close()
	}
}

// verifyIDToken checks the token against the securetoken JWKS. A provider
// without a ProjectID runs unverified.
func (p *Provider) verifyIDToken(token string) error {
	if p.validator == nil {
		return nil
	}
	_, err := p.validator.Validate(token)
	return err
}

// Option configures the provider.
type Option func(*Provider)

// WithLogger overrides the provider logger.
func WithLogger(logger session.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// SignInWithPassword exchanges an email/password pair for a Firebase session.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*session.ProviderSession, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var resp struct {
		IDToken     string `json:"idToken"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		LocalID     string `json:"localId"`
		ExpiresIn   string `json:"expiresIn"`
	}

	if err := p.post(ctx, "sign_in_with_password", p.config.SignInURL, body, &resp); err != nil {
		return nil, err
	}

	if err := p.verifyIDToken(resp.IDToken); err != nil {
		return nil, err
	}

	sess := &session.ProviderSession{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		IDToken:     resp.IDToken,
		ExpiresAt:   expiryFrom(resp.ExpiresIn),
	}

	p.setSession(sess)

	return sess, nil
}

// SignInInteractive runs the Google OAuth code flow. It listens on the
// configured local callback address, logs the authorization URL for the
// operator to open, exchanges the returned code for a Google ID token and
// trades that for a Firebase session via signInWithIdp.
func (p *Provider) SignInInteractive(ctx context.Context) (*session.ProviderSession, error) {
	if p.config.GoogleClientID == "" || p.config.GoogleClientSecret == "" {
		return nil, providerError("sign_in_interactive", 0, "not_configured",
			"google client credentials are not configured", nil)
	}

	listener, err := net.Listen("tcp", p.config.CallbackAddr)
	if err != nil {
		return nil, providerError("sign_in_interactive", 0, "callback_listen",
			"cannot listen on callback address", err)
	}
	defer listener.Close()

	redirectURI := "http://" + listener.Addr().String() + "/callback"
	state := uuid.NewString()

	type callbackResult struct {
		code string
		err  error
	}
	results := make(chan callbackResult, 1)

	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}

		query := r.URL.Query()
		if query.Get("state") != state {
			results <- callbackResult{err: providerError("sign_in_interactive", 0,
				"state_mismatch", "oauth state mismatch", nil)}
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if cause := query.Get("error"); cause != "" {
			results <- callbackResult{err: providerError("sign_in_interactive", 0,
				cause, query.Get("error_description"), nil)}
			http.Error(w, "sign-in failed", http.StatusBadRequest)
			return
		}

		results <- callbackResult{code: query.Get("code")}
		fmt.Fprintln(w, "Signed in. You can close this window.")
	})}

	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			results <- callbackResult{err: providerError("sign_in_interactive", 0,
				"callback_serve", "callback server failed", serveErr)}
		}
	}()
	defer server.Close()

	p.logger.Info("open this URL in your browser to sign in: %s", p.authCodeURL(state, redirectURI))

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, providerError("sign_in_interactive", 0, "canceled",
			"interactive sign-in canceled", ctx.Err())
	}
	if result.err != nil {
		return nil, result.err
	}
	if result.code == "" {
		return nil, providerError("sign_in_interactive", 0, "missing_code",
			"callback carried no authorization code", nil)
	}

	idToken, err := p.exchangeCode(ctx, result.code, redirectURI)
	if err != nil {
		return nil, err
	}

	return p.signInWithIdp(ctx, idToken, redirectURI)
}

// SignOut drops the provider session and announces the signed-out state.
// Only local state is touched; Firebase REST sessions have no server-side
// revocation call.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	fns := p.snapshotListenersLocked()
	p.mu.Unlock()

	var err error
	if p.config.Cache != nil {
		err = p.config.Cache.Clear()
	}

	for _, fn := range fns {
		fn(nil)
	}

	if err != nil {
		return providerError("sign_out", 0, "cache_clear", "cannot clear cached session", err)
	}
	return nil
}

// OnSessionChange registers fn and asynchronously delivers the current
// session state to it. The returned function unsubscribes.
func (p *Provider) OnSessionChange(fn session.ProviderListener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	current := p.current
	p.mu.Unlock()

	go fn(current)

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Current returns the last known provider session, nil when signed out.
func (p *Provider) Current() *session.ProviderSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Provider) authCodeURL(state, redirectURI string) string {
	params := url.Values{
		"client_id":     {p.config.GoogleClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(p.config.Scopes, " ")},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

func (p *Provider) exchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	data := url.Values{
		"client_id":     {p.config.GoogleClientID},
		"client_secret": {p.config.GoogleClientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", providerError("exchange", 0, "", "cannot build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", providerError("exchange", 0, "", "token request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerError("exchange", resp.StatusCode, "", "cannot read token response", err)
	}

	var tokenResp struct {
		IDToken   string `json:"id_token"`
		Error     string `json:"error"`
		ErrorDesc string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", providerError("exchange", resp.StatusCode, "invalid_response",
			"cannot decode token response", err)
	}

	if resp.StatusCode != http.StatusOK || tokenResp.Error != "" {
		return "", providerError("exchange", resp.StatusCode, tokenResp.Error, tokenResp.ErrorDesc, nil)
	}
	if tokenResp.IDToken == "" {
		return "", providerError("exchange", resp.StatusCode, "missing_id_token",
			"token response carried no id_token", nil)
	}

	return tokenResp.IDToken, nil
}

func (p *Provider) signInWithIdp(ctx context.Context, googleIDToken, redirectURI string) (*session.ProviderSession, error) {
	body := map[string]any{
		"postBody":            "id_token=" + googleIDToken + "&providerId=google.com",
		"requestUri":          redirectURI,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}

	var resp struct {
		IDToken     string `json:"idToken"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
		LocalID     string `json:"localId"`
		ExpiresIn   string `json:"expiresIn"`
	}

	if err := p.post(ctx, "sign_in_with_idp", p.config.SignInWithIdpURL, body, &resp); err != nil {
		return nil, err
	}

	if err := p.verifyIDToken(resp.IDToken); err != nil {
		return nil, err
	}

	sess := &session.ProviderSession{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Picture:     resp.PhotoURL,
		IDToken:     resp.IDToken,
		ExpiresAt:   expiryFrom(resp.ExpiresIn),
	}

	p.setSession(sess)

	return sess, nil
}

func (p *Provider) post(ctx context.Context, operation, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return providerError(operation, 0, "", "cannot encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(p.config.APIKey), bytes.NewReader(payload))
	if err != nil {
		return providerError(operation, 0, "", "cannot build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return providerError(operation, 0, "", "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providerError(operation, resp.StatusCode, "", "cannot read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr firebaseErrorResponse
		_ = json.Unmarshal(raw, &apiErr)
		return providerError(operation, resp.StatusCode, apiErr.Error.Message, humanizeCode(apiErr.Error.Message), nil)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return providerError(operation, resp.StatusCode, "invalid_response", "cannot decode response", err)
		}
	}

	return nil
}

func (p *Provider) setSession(sess *session.ProviderSession) {
	p.mu.Lock()
	p.current = sess
	fns := p.snapshotListenersLocked()
	p.mu.Unlock()

	p.persist(sess)

	for _, fn := range fns {
		fn(sess)
	}
}

func (p *Provider) snapshotListenersLocked() []session.ProviderListener {
	fns := make([]session.ProviderListener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func (p *Provider) persist(sess *session.ProviderSession) {
	if p.config.Cache == nil {
		return
	}

	if sess == nil {
		if err := p.config.Cache.Clear(); err != nil {
			p.logger.Warn("cannot clear cached provider session: %v", err)
		}
		return
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		p.logger.Warn("cannot serialize provider session: %v", err)
		return
	}
	if err := p.config.Cache.Set(string(raw)); err != nil {
		p.logger.Warn("cannot cache provider session: %v", err)
	}
}

func (p *Provider) restore() *session.ProviderSession {
	if p.config.Cache == nil {
		return nil
	}

	raw := p.config.Cache.Get()
	if raw == "" {
		return nil
	}

	var sess session.ProviderSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		p.logger.Warn("discarding unreadable cached provider session: %v", err)
		_ = p.config.Cache.Clear()
		return nil
	}

	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		p.logger.Debug("cached provider session expired at %s", sess.ExpiresAt.Format(time.RFC3339))
		_ = p.config.Cache.Clear()
		return nil
	}

	if err := p.verifyIDToken(sess.IDToken); err != nil {
		p.logger.Warn("discarding cached provider session with unverifiable token: %v", err)
		_ = p.config.Cache.Clear()
		return nil
	}

	return &sess
}

// expiryFrom converts the API's expiresIn seconds string into an absolute
// deadline; zero time when the field is absent or malformed.
func expiryFrom(expiresIn string) time.Time {
	if expiresIn == "" {
		return time.Time{}
	}
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(seconds) * time.Second)
}

// humanizeCode turns identitytoolkit codes like EMAIL_NOT_FOUND into a
// readable message.
func humanizeCode(code string) string {
	if code == "" {
		return "firebase request failed"
	}
	msg := strings.ToLower(strings.ReplaceAll(code, "_", " "))
	return "firebase: " + msg
}
