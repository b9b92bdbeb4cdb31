// Package guard decides which pages a session may open and sends the user
// to the login page when the session is cleared by the server.
package guard

import (
	"github.com/rs/zerolog"

	"storefront/internal/client/session"
)

const (
	PathLogin = "/login"
	PathHome  = "/"
	PathAdmin = "/admin"
)

// Credentials is what the guards read from the session.
type Credentials interface {
	Authenticated() bool
	IsAdmin() bool
}

// Decision is the outcome of a guard. Redirect is empty when access is
// allowed.
type Decision struct {
	Allowed  bool
	Redirect string
}

func allow() Decision              { return Decision{Allowed: true} }
func redirect(path string) Decision { return Decision{Redirect: path} }

// RequireAuth lets any signed-in user through.
func RequireAuth(c Credentials) Decision {
	if !c.Authenticated() {
		return redirect(PathLogin)
	}
	return allow()
}

// RequireAdmin sends anonymous users to login and other users home.
func RequireAdmin(c Credentials) Decision {
	if !c.Authenticated() {
		return redirect(PathLogin)
	}
	if !c.IsAdmin() {
		return redirect(PathHome)
	}
	return allow()
}

// RequireGuest keeps signed-in users off the login and register pages.
func RequireGuest(c Credentials, role string) Decision {
	if c.Authenticated() {
		return redirect(HomeFor(role))
	}
	return allow()
}

// HomeFor is where a user lands after login.
func HomeFor(role string) string {
	if role == session.RoleAdmin {
		return PathAdmin
	}
	return PathHome
}

type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a func to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type Subscriber interface {
	Subscribe(fn session.Listener) (unsubscribe func())
}

// Coordinator is the one place that reacts to a session the server
// rejected. Only clears with ReasonUnauthorized navigate; a logout is
// followed by whatever page the caller chose.
type Coordinator struct {
	nav         Navigator
	logger      zerolog.Logger
	unsubscribe func()
}

func NewCoordinator(sub Subscriber, nav Navigator, logger zerolog.Logger) *Coordinator {
	c := &Coordinator{nav: nav, logger: logger.With().Str("component", "guard").Logger()}
	c.unsubscribe = sub.Subscribe(c.onClear)
	return c
}

func (c *Coordinator) onClear(reason session.Reason) {
	if reason != session.ReasonUnauthorized {
		return
	}
	c.logger.Info().Msg("session rejected, redirecting to login")
	c.nav.Navigate(PathLogin)
}

// Stop unsubscribes. It is safe to call more than once.
func (c *Coordinator) Stop() { c.unsubscribe() }
