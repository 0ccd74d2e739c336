package users

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phermann/shopcore/pkg/config"
	pkgerrors "github.com/phermann/shopcore/pkg/errors"
)

// Identity is the credential identity returned by the auth provider.
type Identity struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
}

// AuthClient is the credential provider surface: password sign-in and
// account creation.
type AuthClient interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string) (Identity, error)
}

// IdentityClient talks to the Identity Toolkit REST API. Provider error
// codes (EMAIL_NOT_FOUND, INVALID_PASSWORD, ...) are preserved in the
// returned error message so they can be localized at the surface.
type IdentityClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// IdentityOption configures optional client behavior.
type IdentityOption func(*IdentityClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) IdentityOption {
	return func(c *IdentityClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewIdentityClient builds the auth client from configuration.
func NewIdentityClient(cfg config.AuthConfig, opts ...IdentityOption) (*IdentityClient, error) {
	if strings.TrimSpace(cfg.WebAPIKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth web api key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &IdentityClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.WebAPIKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type credentialRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn authenticates an existing account with email and password.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (Identity, error) {
	return c.credentialCall(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp creates a new credential identity.
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (Identity, error) {
	return c.credentialCall(ctx, "accounts:signUp", email, password)
}

func (c *IdentityClient) credentialCall(ctx context.Context, endpoint, email, password string) (Identity, error) {
	if email == "" || password == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeAuth, "MISSING_CREDENTIALS")
	}

	body, err := json.Marshal(credentialRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal credential request")
	}

	url := c.baseURL + "/" + endpoint + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid auth url")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "execute auth request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var provider providerError
		_ = json.Unmarshal(raw, &provider)
		message := provider.Error.Message
		if message == "" {
			message = strings.TrimSpace(string(raw))
		}
		return Identity{}, pkgerrors.New(pkgerrors.CodeAuth, message)
	}

	var payload credentialResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode auth response")
	}

	return Identity{
		UID:          payload.LocalID,
		Email:        payload.Email,
		IDToken:      payload.IDToken,
		RefreshToken: payload.RefreshToken,
	}, nil
}
