package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/evtimahovich/talentflow/internal/config"
	"github.com/evtimahovich/talentflow/internal/models"
)

// ErrNoSession means the token does not correspond to any session.
var ErrNoSession = errors.New("identity: no session")

// ErrProfileNotReady means the session is valid but the profile row has not
// been created yet. This happens in the window right after a first social
// sign-in; callers retry once after a fixed delay, then proceed without a
// profile.
var ErrProfileNotReady = errors.New("identity: profile not ready")

// package-level logger; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the identity package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Profile is what the remote identity provider knows about a user.
type Profile struct {
	UID       string      `json:"uid"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CompanyID string      `json:"company_id,omitempty"`
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	CompanyID *string `json:"company_id,omitempty"`
}

// Client talks to the remote identity/profile service.
type Client struct {
	cfg    config.IdentityConfig
	client *http.Client
}

// NewClient creates an identity client. httpClient may be nil.
func NewClient(cfg config.IdentityConfig, httpClient *http.Client) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, client: httpClient}, nil
}

// Resolve looks up the profile behind a session token. It distinguishes "no
// session" from "profile not created yet"; every other non-2xx response is a
// plain error.
func (c *Client) Resolve(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/profile", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrNoSession
	case http.StatusNotFound:
		return nil, ErrProfileNotReady
	default:
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// ResolveWithRetry applies the race-mitigation policy: when the profile is
// not ready it waits the configured delay and retries exactly once. If the
// profile is still absent the caller proceeds with a nil profile, degraded
// but non-fatal. Any other error is returned as-is.
func (c *Client) ResolveWithRetry(ctx context.Context, token string) (*Profile, error) {
	p, err := c.Resolve(ctx, token)
	if !errors.Is(err, ErrProfileNotReady) {
		return p, err
	}

	logger.Info("identity: profile not ready, retrying once",
		slog.Duration("delay", c.cfg.RetryDelay))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.cfg.RetryDelay):
	}

	p, err = c.Resolve(ctx, token)
	if errors.Is(err, ErrProfileNotReady) {
		logger.Warn("identity: profile still absent after retry, proceeding without profile")
		return nil, nil
	}
	return p, err
}

// UpdateProfile persists a partial profile change for uid. Callers apply the
// change to their local acting-user record only after this succeeds.
func (c *Client) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) error {
	b, err := json.Marshal(upd)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.cfg.BaseURL+"/v1/profiles/"+url.PathEscape(uid), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("identity update returned status %d", resp.StatusCode)
	}
	return nil
}
