// Package session maintains the authenticated state of an AssetVerse client.
//
// The session is reconciled from two independent, asynchronously initializing
// sources: a locally persisted bearer token validated against the AssetVerse
// backend, and a federated identity provider with its own session listener.
// The Coordinator merges both into a single {user, loading} view that route
// guards and API clients consume.
//
// Lifecycle:
//   - At startup the Coordinator rehydrates the stored token through
//     GET /api/auth/me while the provider reports its own session state. The
//     backend identity is authoritative; the provider notification only
//     decides when the loading window may close.
//   - Every outbound call goes through transport.Dispatcher, which attaches
//     the bearer token and reports any 401 back to the Coordinator so the
//     whole session is invalidated, not left stale.
//   - Logout clears local state before the provider sign-out is awaited, so
//     the client reflects "logged out" even when the provider is slow.
//
// Subpackages provide the concrete pieces: store (credential persistence),
// transport (the dispatcher), rest (backend endpoint clients),
// provider/firebase (the federated provider), and middleware/guard (role
// guards for a fiber-served UI).
package session
