// Package firebase implements the session.IdentityProvider interface against
// the Firebase Auth REST API, with an optional local-listener Google OAuth
// flow for interactive sign-in and JWKS-backed ID token validation.
package firebase
