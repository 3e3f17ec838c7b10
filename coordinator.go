package session

import (
	"context"
	"sync"
)

// CoordinatorOption customizes Coordinator construction.
type CoordinatorOption func(*Coordinator)

// WithLogger overrides the logger used for reconciliation and mirror noise.
func WithLogger(logger Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIdentityProvider attaches the federated provider mirror. Without one
// the provider trigger is considered fired immediately.
func WithIdentityProvider(provider IdentityProvider) CoordinatorOption {
	return func(c *Coordinator) {
		c.provider = provider
	}
}

// Coordinator owns the canonical {user, token, loading} state and is its only
// writer. It reconciles the credential store, the dispatcher's unauthorized
// signal and the identity provider's notifications into one lifecycle:
//
//	INITIALIZING -> {AUTHENTICATED, ANONYMOUS}
//	AUTHENTICATED -> ANONYMOUS on logout or forced invalidation
//
// There is no transition out of ANONYMOUS except an explicit login or
// registration. Each mutation is a single atomic state change; in-flight work
// from a superseded generation is discarded, never applied.
type Coordinator struct {
	store    CredentialStore
	api      AuthAPI
	provider IdentityProvider
	logger   Logger

	mu      sync.Mutex
	user    *User
	token   string
	loading bool

	// gen tags each reconciliation attempt; logout and forced invalidation
	// bump it so a late rehydration result cannot resurrect the user.
	gen uint64

	providerFired    bool
	rehydrateSettled bool
	loadingDone      bool
	started          bool

	ready chan struct{}

	subs    map[int]func(Snapshot)
	nextSub int

	lastState State

	unsubProvider func()
}

// NewCoordinator builds a Coordinator over the store and backend auth
// surface. The session starts empty: user=nil, token=<store value>,
// loading=true. Call Start to run the startup reconciliation.
func NewCoordinator(store CredentialStore, api AuthAPI, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:     store,
		api:       api,
		logger:    defLogger{},
		loading:   true,
		ready:     make(chan struct{}),
		subs:      map[int]func(Snapshot){},
		lastState: StateInitializing,
	}

	if store != nil {
		c.token = store.Get()
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Start runs the startup reconciliation once. Trigger A: a stored token is
// rehydrated through GET /api/auth/me. Trigger B: the provider fires its
// first session notification. The two may complete in either order; loading
// closes exactly once, after the provider has fired at least once AND the
// rehydration has settled (or there was nothing to rehydrate).
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	token := c.token
	gen := c.gen
	c.mu.Unlock()

	if c.provider != nil {
		c.unsubProvider = c.provider.OnSessionChange(func(ps *ProviderSession) {
			c.onProviderSession(ps)
		})
	} else {
		c.mu.Lock()
		c.providerFired = true
		c.maybeFinishLoadingLocked()
		c.mu.Unlock()
		c.notify()
	}

	if token == "" {
		c.mu.Lock()
		c.rehydrateSettled = true
		c.maybeFinishLoadingLocked()
		c.mu.Unlock()
		c.notify()
		return
	}

	go c.rehydrate(ctx, gen)
}

// Close unregisters the provider listener. It does not touch session state.
func (c *Coordinator) Close() {
	if c.unsubProvider != nil {
		c.unsubProvider()
		c.unsubProvider = nil
	}
}

func (c *Coordinator) rehydrate(ctx context.Context, gen uint64) {
	user, err := c.api.Me(ctx)

	c.mu.Lock()
	if gen != c.gen {
		// Logged out or invalidated while in flight. A late success must
		// not repopulate the user.
		c.mu.Unlock()
		c.logger.Debug("discarding rehydration result from superseded generation %d", gen)
		return
	}

	c.rehydrateSettled = true
	if err != nil {
		// A 401 already cleared the session through the dispatcher hook and
		// bumped the generation, so this branch only sees other failures:
		// the token stays for a later attempt, the user stays nil.
		c.logger.Warn("session rehydration failed: %v", err)
	} else {
		c.user = user.Clone()
	}
	c.maybeFinishLoadingLocked()
	c.mu.Unlock()

	c.notify()
}

func (c *Coordinator) onProviderSession(ps *ProviderSession) {
	c.mu.Lock()
	c.providerFired = true
	c.maybeFinishLoadingLocked()
	c.mu.Unlock()

	if ps != nil {
		c.logger.Debug("provider session changed: uid=%s", ps.UID)
	} else {
		c.logger.Debug("provider session changed: signed out")
	}
	c.notify()
}

// maybeFinishLoadingLocked closes the loading window once both startup
// triggers have reported. Runs at most once per application load.
func (c *Coordinator) maybeFinishLoadingLocked() {
	if c.loadingDone || !c.providerFired || !c.rehydrateSettled {
		return
	}
	c.loadingDone = true
	c.loading = false
	close(c.ready)
}

// Ready is closed when the initial reconciliation window ends. Guards block
// on it before evaluating the session.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// Snapshot returns the current session view.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		User:    c.user.Clone(),
		Token:   c.token,
		Loading: c.loading,
	}
}

// CurrentUser returns the authenticated user, or nil.
func (c *Coordinator) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user.Clone()
}

// Token returns the active bearer token, or "".
func (c *Coordinator) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Loading reports whether the startup reconciliation window is still open.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Subscribe registers a listener invoked after every session change with the
// new snapshot. Returns an unsubscribe handle.
func (c *Coordinator) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	snap := Snapshot{
		User:    c.user.Clone(),
		Token:   c.token,
		Loading: c.loading,
	}
	if state := snap.State(); state != c.lastState {
		if !CanTransition(c.lastState, state) {
			c.logger.Warn("unexpected session transition: %s -> %s", c.lastState, state)
		} else {
			c.logger.Debug("session transition: %s -> %s", c.lastState, state)
		}
		c.lastState = state
	}
	listeners := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// Login authenticates against the backend, persists the returned token and
// adopts the returned identity, then best-effort mirrors the credentials into
// the identity provider. A mirror failure is logged and swallowed: the
// backend session is already established and stays usable.
func (c *Coordinator) Login(ctx context.Context, email, password string) (*User, error) {
	payload := LoginPayload{Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	creds, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	c.adopt(creds)

	if c.provider != nil {
		if _, err := c.provider.SignInWithPassword(ctx, email, password); err != nil {
			c.logger.Warn("provider mirror sign-in failed: %v", err)
		}
	}

	return creds.User.Clone(), nil
}

// RegisterEmployee creates an employee account and adopts the returned
// credentials.
func (c *Coordinator) RegisterEmployee(ctx context.Context, payload RegisterEmployeePayload) (*User, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	creds, err := c.api.RegisterEmployee(ctx, payload)
	if err != nil {
		return nil, err
	}

	c.adopt(creds)
	return creds.User.Clone(), nil
}

// RegisterHR creates an HR manager account and adopts the returned
// credentials.
func (c *Coordinator) RegisterHR(ctx context.Context, payload RegisterHRPayload) (*User, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	creds, err := c.api.RegisterHR(ctx, payload)
	if err != nil {
		return nil, err
	}

	c.adopt(creds)
	return creds.User.Clone(), nil
}

// GoogleLogin delegates to the provider's interactive flow and returns the
// resulting provider identity. The backend REST surface has no endpoint to
// exchange a provider credential for a bearer token, so this path does NOT
// establish a backend session: the coordinator's user and token are left
// untouched and callers get the provider profile only.
func (c *Coordinator) GoogleLogin(ctx context.Context) (*ProviderSession, error) {
	if c.provider == nil {
		clone := ErrProvider.Clone()
		clone.Message = "no identity provider configured"
		return nil, clone.WithMetadata(map[string]any{
			"operation": "sign_in_interactive",
		})
	}

	ps, err := c.provider.SignInInteractive(ctx)
	if err != nil {
		return nil, WrapProvider(err, "sign_in_interactive")
	}

	return ps, nil
}

// Logout clears the credential store and the local session before awaiting
// the provider sign-out, so the client reflects "logged out" immediately even
// when the provider call is slow or fails. A provider failure is returned,
// but the local state is already anonymous.
func (c *Coordinator) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.invalidateLocked()
	c.mu.Unlock()
	c.notify()

	if c.provider == nil {
		return nil
	}

	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Warn("provider sign-out failed: %v", err)
		return WrapProvider(err, "sign_out")
	}

	return nil
}

// Refresh re-fetches the authenticated user from the backend.
func (c *Coordinator) Refresh(ctx context.Context) (*User, error) {
	c.mu.Lock()
	if c.token == "" {
		c.mu.Unlock()
		return nil, ErrUnauthorized.Clone()
	}
	gen := c.gen
	c.mu.Unlock()

	user, err := c.api.Me(ctx)
	if err != nil {
		return nil, err
	}

	c.applyUser(gen, user)
	return user.Clone(), nil
}

// UpdateProfile sends a partial update and replaces the user with the
// server's returned record verbatim. Client-held fields are never merged in,
// so server-computed values like currentEmployees cannot drift.
func (c *Coordinator) UpdateProfile(ctx context.Context, patch ProfilePatch) (*User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	user, err := c.api.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, err
	}

	c.applyUser(gen, user)
	return user.Clone(), nil
}

// Invalidate is the forced-invalidation path, wired to the dispatcher's 401
// signal. It performs logout's local-clear step only: no provider sign-out
// (the failure may stem from the provider never having had a session) and no
// navigation, which belongs to the route guards once the user turns nil.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	c.invalidateLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) invalidateLocked() {
	c.gen++
	c.user = nil
	c.token = ""
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.logger.Error("failed to clear credential store: %v", err)
		}
	}
	// Nothing left to rehydrate for this generation.
	c.rehydrateSettled = true
	c.maybeFinishLoadingLocked()
}

// adopt installs backend-issued credentials as the new session generation.
func (c *Coordinator) adopt(creds *Credentials) {
	c.mu.Lock()
	c.gen++
	c.token = creds.Token
	c.user = creds.User.Clone()
	if c.store != nil {
		if err := c.store.Set(creds.Token); err != nil {
			c.logger.Error("failed to persist credential: %v", err)
		}
	}
	c.rehydrateSettled = true
	c.maybeFinishLoadingLocked()
	c.mu.Unlock()

	c.notify()
}

// applyUser replaces the user record if the generation is still current;
// results from a superseded generation are discarded.
func (c *Coordinator) applyUser(gen uint64, user *User) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding user record from superseded generation %d", gen)
		return
	}
	c.user = user.Clone()
	c.mu.Unlock()

	c.notify()
}
