package clinicclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"clinic-booking-be/internal/user"
)

type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone,omitempty"`
	Role           string `json:"role,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

type AuthResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        user.Profile `json:"user"`
}

func (a *AuthResult) Session() Session {
	return Session{Token: a.AccessToken}
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, nil, http.MethodPost, "/api/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}

	var out AuthResult
	if err := c.do(ctx, nil, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, sess Session) (*user.Profile, error) {
	var out user.Profile
	if err := c.do(ctx, &sess, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Specializations(ctx context.Context) ([]user.Specialization, error) {
	var out []user.Specialization
	if err := c.do(ctx, nil, http.MethodGet, "/api/specializations", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Doctors lists doctors, optionally narrowed to one specialization.
func (c *Client) Doctors(ctx context.Context, specialization string) ([]user.Doctor, error) {
	var q url.Values
	if specialization != "" {
		q = url.Values{"specialization": {specialization}}
	}

	var out []user.Doctor
	if err := c.do(ctx, nil, http.MethodGet, "/api/doctors", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Doctor(ctx context.Context, id int64) (*user.Doctor, error) {
	var out user.Doctor
	if err := c.do(ctx, nil, http.MethodGet, "/api/doctors/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
