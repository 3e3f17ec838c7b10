// Package rest provides typed clients for the AssetVerse backend. Every
// client goes through the transport dispatcher, so bearer attachment and
// 401 invalidation apply uniformly across the whole API surface.
package rest

import (
	"context"

	session "github.com/assetverse/go-session"
	"github.com/assetverse/go-session/transport"
)

// AuthClient implements session.AuthAPI over the dispatcher.
type AuthClient struct {
	d *transport.Dispatcher
}

var _ session.AuthAPI = (*AuthClient)(nil)

func NewAuthClient(d *transport.Dispatcher) *AuthClient {
	return &AuthClient{d: d}
}

type userEnvelope struct {
	User *session.User `json:"user"`
}

// Login calls POST /api/auth/login and returns the {token, user} envelope.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*session.Credentials, error) {
	body := session.LoginPayload{Email: email, Password: password}

	var creds session.Credentials
	if err := c.d.Post(ctx, "/api/auth/login", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// RegisterEmployee calls POST /api/auth/register-employee.
func (c *AuthClient) RegisterEmployee(ctx context.Context, payload session.RegisterEmployeePayload) (*session.Credentials, error) {
	var creds session.Credentials
	if err := c.d.Post(ctx, "/api/auth/register-employee", payload, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// RegisterHR calls POST /api/auth/register-hr.
func (c *AuthClient) RegisterHR(ctx context.Context, payload session.RegisterHRPayload) (*session.Credentials, error) {
	var creds session.Credentials
	if err := c.d.Post(ctx, "/api/auth/register-hr", payload, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Me calls GET /api/auth/me using the stored bearer token. The backend
// answers 401 for an invalid or expired token, which the dispatcher turns
// into forced invalidation.
func (c *AuthClient) Me(ctx context.Context) (*session.User, error) {
	var envelope userEnvelope
	if err := c.d.Get(ctx, "/api/auth/me", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.User, nil
}

// UpdateProfile calls PUT /api/auth/profile and returns the server's full
// user record.
func (c *AuthClient) UpdateProfile(ctx context.Context, patch session.ProfilePatch) (*session.User, error) {
	var envelope userEnvelope
	if err := c.d.Put(ctx, "/api/auth/profile", patch, &envelope); err != nil {
		return nil, err
	}
	return envelope.User, nil
}
