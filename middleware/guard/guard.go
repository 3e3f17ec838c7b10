// Package guard provides route protection over the session coordinator. The
// decision logic is pure; the Fiber middleware wraps it with redirect
// handling and a bounded wait for the initial reconciliation.
package guard

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	session "github.com/assetverse/go-session"
)

// Decision is the outcome of evaluating a route guard.
type Decision int

const (
	// Wait means reconciliation is still in flight; render nothing yet.
	Wait Decision = iota
	// Allow grants access.
	Allow
	// RedirectLogin sends an unauthenticated caller to the login surface,
	// preserving the intended destination.
	RedirectLogin
	// RedirectHome sends an authenticated caller with the wrong role to a
	// neutral page, never to login.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Evaluate applies the guard rules to a session snapshot. requiredRole ""
// means any authenticated user passes.
func Evaluate(user *session.User, loading bool, requiredRole session.UserRole) Decision {
	if loading {
		return Wait
	}
	if user == nil {
		return RedirectLogin
	}
	if requiredRole != "" && user.Role != requiredRole {
		return RedirectHome
	}
	return Allow
}

// SessionSource is the coordinator surface the middleware needs.
type SessionSource interface {
	Ready() <-chan struct{}
	Snapshot() session.Snapshot
}

// Config configures the guard middleware.
type Config struct {
	// Session is the coordinator backing the guard. Required.
	Session SessionSource

	// RequiredRole restricts the route to one role; "" allows any
	// authenticated user.
	RequiredRole session.UserRole

	// LoginPath receives unauthenticated callers. Default: "/login".
	LoginPath string

	// HomePath receives authenticated callers with the wrong role.
	// Default: "/".
	HomePath string

	// RedirectParam carries the intended destination on the login redirect.
	// Default: "from".
	RedirectParam string

	// WaitTimeout bounds how long a request blocks on the initial
	// reconciliation. On timeout the request is treated as still loading
	// and answered 503. Default: 10s.
	WaitTimeout time.Duration

	// Filter skips the guard when it returns true.
	Filter func(*fiber.Ctx) bool
}

func (c Config) withDefaults() Config {
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.HomePath == "" {
		c.HomePath = "/"
	}
	if c.RedirectParam == "" {
		c.RedirectParam = "from"
	}
	if c.WaitTimeout == 0 {
		c.WaitTimeout = 10 * time.Second
	}
	return c
}

// New returns a Fiber handler enforcing the guard rules. On Allow the
// snapshot user is stored in ctx locals under "user".
func New(config Config) fiber.Handler {
	cfg := config.withDefaults()

	return func(ctx *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(ctx) {
			return ctx.Next()
		}

		select {
		case <-cfg.Session.Ready():
		case <-time.After(cfg.WaitTimeout):
			return fiber.NewError(fiber.StatusServiceUnavailable, "session not ready")
		}

		snap := cfg.Session.Snapshot()

		switch Evaluate(snap.User, snap.Loading, cfg.RequiredRole) {
		case Allow:
			ctx.Locals("user", snap.User)
			return ctx.Next()
		case RedirectLogin:
			target := cfg.LoginPath + "?" + cfg.RedirectParam + "=" + url.QueryEscape(ctx.OriginalURL())
			return ctx.Redirect(target, fiber.StatusFound)
		case RedirectHome:
			return ctx.Redirect(cfg.HomePath, fiber.StatusFound)
		default:
			return fiber.NewError(fiber.StatusServiceUnavailable, "session not ready")
		}
	}
}

// RequireHR is shorthand for a guard restricted to HR managers.
func RequireHR(source SessionSource) fiber.Handler {
	return New(Config{Session: source, RequiredRole: session.RoleHR})
}

// RequireEmployee is shorthand for a guard restricted to employees.
func RequireEmployee(source SessionSource) fiber.Handler {
	return New(Config{Session: source, RequiredRole: session.RoleEmployee})
}
