// Package account signs users in and out of the storefront.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"storefront/internal/client/model"
	"storefront/internal/client/session"
)

var (
	ErrPasswordMismatch = errors.New("account: password confirmation does not match")
	ErrMissingToken     = errors.New("account: login response carried no token")
	ErrMissingFields    = errors.New("account: email and password are required")
)

type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

type Session interface {
	Token() string
	SetSession(ctx context.Context, token, role string) error
	ClearSession(ctx context.Context, reason session.Reason) error
}

type Client struct {
	api     Gateway
	session Session
	logger  zerolog.Logger
}

func New(api Gateway, sess Session, logger zerolog.Logger) *Client {
	return &Client{api: api, session: sess, logger: logger.With().Str("component", "account").Logger()}
}

type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

type registerResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// Login exchanges credentials for a token and stores it together with the
// user's role. A role the storefront does not know is stored as user.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.User{}, ErrMissingFields
	}
	var resp loginResponse
	if err := c.api.Post(ctx, "/login", map[string]string{"email": email, "password": password}, &resp); err != nil {
		return model.User{}, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return model.User{}, ErrMissingToken
	}
	var u model.User
	if resp.User != nil {
		u = *resp.User
	}
	role := u.Role
	if role != session.RoleAdmin {
		role = session.RoleUser
	}
	if err := c.session.SetSession(ctx, resp.Token, role); err != nil {
		return model.User{}, fmt.Errorf("login: %w", err)
	}
	c.logger.Info().Int64("user_id", u.ID).Str("role", role).Msg("logged in")
	return u, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Password != in.PasswordConfirmation {
		return model.User{}, ErrPasswordMismatch
	}
	var resp registerResponse
	if err := c.api.Post(ctx, "/register", in, &resp); err != nil {
		return model.User{}, fmt.Errorf("register: %w", err)
	}
	if resp.User == nil {
		return model.User{}, nil
	}
	return *resp.User, nil
}

// Logout revokes the token on the server and always clears the local
// session, returning the server error if there was one.
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Token() == "" {
		return nil
	}
	callErr := c.api.Post(ctx, "/logout", nil, nil)
	if callErr != nil {
		c.logger.Warn().Err(callErr).Msg("server logout failed")
	}
	clearErr := c.session.ClearSession(context.WithoutCancel(ctx), session.ReasonLogout)
	if callErr != nil {
		return fmt.Errorf("logout: %w", callErr)
	}
	if clearErr != nil {
		return fmt.Errorf("logout: %w", clearErr)
	}
	return nil
}

// Profile returns the signed-in user.
func (c *Client) Profile(ctx context.Context) (model.User, error) {
	var u model.User
	if err := c.api.Get(ctx, "/user", &u); err != nil {
		return model.User{}, fmt.Errorf("profile: %w", err)
	}
	return u, nil
}
