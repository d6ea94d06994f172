package clinicauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vet-appointments/internal/platform/httpclient"
	"vet-appointments/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("auth service not configured")
	ErrUnauthorized  = auth.ErrUnauthorized
	ErrRejected      = auth.ErrRejected
	ErrUpstream      = auth.ErrUpstream
)

// Config del cliente del servicio de autenticación.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implementa auth.Authenticator contra /auth/login y /auth/register.
type Client struct {
	http *httpclient.Client
}

var _ auth.Authenticator = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	NameUsers    string `json:"nameUsers"`
	PhoneUser    string `json:"phoneUser,omitempty"`
	EmailUser    string `json:"emailUser"`
	UserName     string `json:"userName"`
	PasswordUser string `json:"passwordUser"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		User struct {
			ID       flexibleID `json:"id"`
			Name     string     `json:"name"`
			Email    string     `json:"email"`
			Username string     `json:"username"`
		} `json:"user"`
		Token string `json:"token"`
	} `json:"data"`
}

// flexibleID acepta id numérico o string.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

func (c *Client) Login(ctx context.Context, in auth.Credentials) (auth.Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return auth.Session{}, ErrUnauthorized
	}
	return c.post(ctx, "/auth/login", loginRequest{Username: in.Username, Password: in.Password})
}

func (c *Client) Register(ctx context.Context, in auth.Registration) (auth.Session, error) {
	return c.post(ctx, "/auth/register", registerRequest{
		NameUsers:    strings.TrimSpace(in.Name),
		PhoneUser:    strings.TrimSpace(in.Phone),
		EmailUser:    strings.TrimSpace(in.Email),
		UserName:     strings.TrimSpace(in.Username),
		PasswordUser: in.Password,
	})
}

func (c *Client) post(ctx context.Context, path string, in any) (auth.Session, error) {
	if c == nil || c.http == nil {
		return auth.Session{}, ErrNotConfigured
	}

	var out authResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, path, nil, in, &out); err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) {
			switch {
			case he.StatusCode == http.StatusUnauthorized, he.StatusCode == http.StatusForbidden:
				return auth.Session{}, ErrUnauthorized
			case he.IsClientError():
				return auth.Session{}, fmt.Errorf("%w: %s", ErrRejected, he.Body)
			}
		}
		return auth.Session{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if !out.Success || out.Data == nil {
		return auth.Session{}, fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(out.Message))
	}
	if strings.TrimSpace(out.Data.Token) == "" {
		return auth.Session{}, fmt.Errorf("%w: response missing token", ErrUpstream)
	}

	u := out.Data.User
	return auth.Session{
		User: auth.User{
			ID:       strings.TrimSpace(string(u.ID)),
			Name:     strings.TrimSpace(u.Name),
			Email:    strings.TrimSpace(u.Email),
			Username: strings.TrimSpace(u.Username),
		},
		Token: out.Data.Token,
	}, nil
}
