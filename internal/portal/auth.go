package portal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
}

func (r loginResponse) bearer() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

func login(ctx context.Context, baseURL, path, user, password string, log zerolog.Logger) (string, error) {
	c := NewClient(baseURL, "", "", 0, log)
	payload := map[string]string{"email": user, "password": password}

	data, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := decodeObject(data, &resp); err != nil {
		return "", err
	}
	if resp.bearer() == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.bearer(), nil
}

// Login authenticates against the portal's local account endpoint and
// returns the bearer token.
func Login(ctx context.Context, baseURL, email, password string, log zerolog.Logger) (string, error) {
	return login(ctx, baseURL, "/api/auth/login", email, password, log)
}

// StaffLogin authenticates staff accounts through the separate Active
// Directory endpoint.
func StaffLogin(ctx context.Context, baseURL, username, password string, log zerolog.Logger) (string, error) {
	return login(ctx, baseURL, "/api/auth/staff-login", username, password, log)
}
