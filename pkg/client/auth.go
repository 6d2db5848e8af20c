package client

import (
	"context"
	"net/http"

	"github.com/hmkim/ordertrack/pkg/models"
)

// SignInRequest is the login payload.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse carries the bearer credential and the authenticated user.
type SignInResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SignIn authenticates and returns the credential for the session layer to
// persist. The client itself does not store it; the TokenSource does.
func (c *Client) SignIn(ctx context.Context, username, password string) (*SignInResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", SignInRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	var result SignInResponse
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me fetches the identity behind the current credential.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := decodeResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut invalidates the credential server-side. Local clearing is the
// session layer's job.
func (c *Client) SignOut(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}
