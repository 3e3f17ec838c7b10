package session_test

import (
	"context"
	"errors"
	"sync"

	session "github.com/assetverse/go-session"
)

type fakeStore struct {
	mu         sync.Mutex
	token      string
	setErr     error
	clearErr   error
	setCalls   int
	clearCalls int
}

func newFakeStore(token string) *fakeStore {
	return &fakeStore{token: token}
}

func (s *fakeStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.token = token
	return nil
}

func (s *fakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.token = ""
	return nil
}

type fakeAPI struct {
	loginFn            func(ctx context.Context, email, password string) (*session.Credentials, error)
	registerEmployeeFn func(ctx context.Context, payload session.RegisterEmployeePayload) (*session.Credentials, error)
	registerHRFn       func(ctx context.Context, payload session.RegisterHRPayload) (*session.Credentials, error)
	meFn               func(ctx context.Context) (*session.User, error)
	updateProfileFn    func(ctx context.Context, patch session.ProfilePatch) (*session.User, error)

	mu      sync.Mutex
	meCalls int
}

func (a *fakeAPI) Login(ctx context.Context, email, password string) (*session.Credentials, error) {
	if a.loginFn == nil {
		return nil, errors.New("unexpected Login call")
	}
	return a.loginFn(ctx, email, password)
}

func (a *fakeAPI) RegisterEmployee(ctx context.Context, payload session.RegisterEmployeePayload) (*session.Credentials, error) {
	if a.registerEmployeeFn == nil {
		return nil, errors.New("unexpected RegisterEmployee call")
	}
	return a.registerEmployeeFn(ctx, payload)
}

func (a *fakeAPI) RegisterHR(ctx context.Context, payload session.RegisterHRPayload) (*session.Credentials, error) {
	if a.registerHRFn == nil {
		return nil, errors.New("unexpected RegisterHR call")
	}
	return a.registerHRFn(ctx, payload)
}

func (a *fakeAPI) Me(ctx context.Context) (*session.User, error) {
	a.mu.Lock()
	a.meCalls++
	a.mu.Unlock()
	if a.meFn == nil {
		return nil, errors.New("unexpected Me call")
	}
	return a.meFn(ctx)
}

func (a *fakeAPI) UpdateProfile(ctx context.Context, patch session.ProfilePatch) (*session.User, error) {
	if a.updateProfileFn == nil {
		return nil, errors.New("unexpected UpdateProfile call")
	}
	return a.updateProfileFn(ctx, patch)
}

func (a *fakeAPI) meCallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.meCalls
}

type fakeProvider struct {
	mu        sync.Mutex
	listeners []session.ProviderListener

	signInFn      func(ctx context.Context, email, password string) (*session.ProviderSession, error)
	interactiveFn func(ctx context.Context) (*session.ProviderSession, error)
	signOutErr    error
	signOutCalls  int
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*session.ProviderSession, error) {
	if p.signInFn == nil {
		return &session.ProviderSession{UID: "uid-1", Email: email}, nil
	}
	return p.signInFn(ctx, email, password)
}

func (p *fakeProvider) SignInInteractive(ctx context.Context) (*session.ProviderSession, error) {
	if p.interactiveFn == nil {
		return nil, errors.New("unexpected SignInInteractive call")
	}
	return p.interactiveFn(ctx)
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutCalls++
	return p.signOutErr
}

func (p *fakeProvider) OnSessionChange(fn session.ProviderListener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
	return func() {}
}

// fire drives trigger B by hand so tests control the relative ordering of the
// startup triggers.
func (p *fakeProvider) fire(ps *session.ProviderSession) {
	p.mu.Lock()
	fns := append([]session.ProviderListener(nil), p.listeners...)
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ps)
	}
}

func (p *fakeProvider) signOutCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signOutCalls
}

func testUser(role session.UserRole) *session.User {
	return &session.User{
		ID:    "user-1",
		Name:  "Jordan Reyes",
		Email: "jordan@example.com",
		Role:  role,
	}
}
