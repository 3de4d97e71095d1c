// Package session owns the token/user lifecycle: login, registration,
// logout, and the forced logout triggered by a 401 anywhere in the API
// client. Views never touch the credential store directly; they observe the
// manager and subscribe to invalidation.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"taskpad-cli/internal/api"
	"taskpad-cli/internal/model"
	"taskpad-cli/internal/store"
)

// InvalidateReason distinguishes a user-requested logout from a server-side
// session expiry; views word their notice accordingly.
type InvalidateReason string

const (
	ReasonLogout  InvalidateReason = "logged out"
	ReasonExpired InvalidateReason = "session expired"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Manager struct {
	creds  store.Credentials
	client *api.Client
	log    *slog.Logger

	mu      sync.Mutex
	token   string
	user    model.UserProfile
	hasUser bool

	subscribers []func(InvalidateReason)
}

// NewManager wires the manager into the API client: the client reads the
// current token through the manager and reports 401s back into Invalidate.
func NewManager(creds store.Credentials, client *api.Client, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{creds: creds, client: client, log: log}
	client.SetTokenFunc(m.Token)
	client.SetUnauthorizedHook(func() { m.Invalidate(ReasonExpired) })
	return m
}

// Restore enters Authenticated from persisted credentials when both token
// and user are present. No server round-trip: a stale token surfaces on the
// first authenticated request via the 401 path.
func (m *Manager) Restore(ctx context.Context) error {
	token, okT, err := m.creds.Get(ctx, store.KeyToken)
	if err != nil {
		return err
	}
	userJSON, okU, err := m.creds.Get(ctx, store.KeyUser)
	if err != nil {
		return err
	}
	if !okT || !okU {
		return nil
	}
	user, err := model.DecodeProfileJSON(userJSON)
	if err != nil {
		// Corrupted profile: drop the half-session rather than carry it.
		m.log.Warn("stored profile is unreadable; clearing session", "err", err)
		return m.creds.ClearSession(ctx)
	}

	m.mu.Lock()
	m.token = token
	m.user = user
	m.hasUser = true
	m.mu.Unlock()
	return nil
}

func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) User() (model.UserProfile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.hasUser
}

// Claims decodes the current token's payload. Nil when anonymous or when the
// token does not parse as a JWT (it is still usable as a bearer credential).
func (m *Manager) Claims() *TokenClaims {
	token := m.Token()
	if token == "" {
		return nil
	}
	claims, err := DecodeClaims(token)
	if err != nil {
		m.log.Debug("token claims not decodable", "err", err)
		return nil
	}
	return claims
}

// OnInvalidated subscribes to forced and voluntary session teardown.
// Callbacks run synchronously on the invalidating call.
func (m *Manager) OnInvalidated(f func(InvalidateReason)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, f)
}

// Login authenticates, persists the token plus a minimal {username} profile,
// then best-effort enriches the profile from the server. Enrichment failure
// is logged and never reverts authentication.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, err := m.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	user := model.UserProfile{Username: username}
	m.mu.Lock()
	m.token = token
	m.user = user
	m.hasUser = true
	m.mu.Unlock()

	if err := m.persist(ctx); err != nil {
		return err
	}

	if full, err := m.client.UserInfo(ctx); err != nil {
		m.log.Warn("profile fetch after login failed", "err", err)
	} else {
		m.mu.Lock()
		m.user = m.user.Merge(full)
		m.mu.Unlock()
		if err := m.persist(ctx); err != nil {
			m.log.Warn("persisting enriched profile failed", "err", err)
		}
	}
	return nil
}

// Register creates a user and stays Anonymous; the caller directs the user
// to the login flow on success.
func (m *Manager) Register(ctx context.Context, draft model.RegisterDraft) error {
	if draft.Role == "" {
		draft.Role = model.RoleUser
	}
	draft.Active = true
	if err := validate.Struct(draft); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}
	return m.client.Register(ctx, draft)
}

// Logout clears the session on user request.
func (m *Manager) Logout(ctx context.Context) error {
	m.Invalidate(ReasonLogout)
	return nil
}

// Invalidate tears the session down: in-memory state first, then the
// credential store, then subscribers. Safe to call when already anonymous
// (repeat 401s from concurrent in-flight requests collapse to one event).
func (m *Manager) Invalidate(reason InvalidateReason) {
	m.mu.Lock()
	wasAuthenticated := m.token != ""
	m.token = ""
	m.user = model.UserProfile{}
	m.hasUser = false
	subs := m.subscribers
	m.mu.Unlock()

	if !wasAuthenticated {
		return
	}

	// The invalidation hook may fire from any in-flight request; use a
	// fresh context so teardown is not cancelled with the request.
	if err := m.creds.ClearSession(context.Background()); err != nil {
		m.log.Error("clearing stored credentials failed", "err", err)
	}
	for _, f := range subs {
		f(reason)
	}
}

// ChangePassword leaves the current token valid; there is no forced re-login.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return m.client.ChangePassword(ctx, oldPassword, newPassword)
}

// ChangePhone patches the stored profile on success.
func (m *Manager) ChangePhone(ctx context.Context, newPhone string) error {
	if err := m.client.ChangePhoneNumber(ctx, newPhone); err != nil {
		return err
	}
	m.mu.Lock()
	m.user.PhoneNumber = newPhone
	m.mu.Unlock()
	return m.persist(ctx)
}

// RefreshProfile re-fetches and merges the full profile.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	full, err := m.client.UserInfo(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.user = m.user.Merge(full)
	m.mu.Unlock()
	return m.persist(ctx)
}

func (m *Manager) persist(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	user := m.user
	m.mu.Unlock()

	userJSON, err := user.EncodeJSON()
	if err != nil {
		return err
	}
	if err := m.creds.Set(ctx, store.KeyToken, token); err != nil {
		return err
	}
	return m.creds.Set(ctx, store.KeyUser, userJSON)
}
