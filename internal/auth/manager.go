package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"sibubur/terminal/internal/domain"
	"sibubur/terminal/internal/session"
)

// State is the session lifecycle: Unknown until Restore has run, then
// Anonymous or Authenticated.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ErrNoToken is the hard login failure: the backend answered but did not
// include an access token. Nothing is persisted in that case.
var ErrNoToken = errors.New("no access token received")

// API is the slice of the backend the manager needs.
type API interface {
	Login(ctx context.Context, username string, password string) (domain.LoginResponse, error)
	Profile(ctx context.Context) (domain.Profile, error)
}

// PermissionCache is owned by the manager across the session boundary:
// refreshed after login/restore, cleared before any state-change signal.
type PermissionCache interface {
	Refresh(ctx context.Context, force bool) error
	Clear()
}

type Manager struct {
	store  session.Store
	api    API
	logger *slog.Logger

	mu    sync.RWMutex
	state State
	user  domain.User
	token string

	perms          PermissionCache
	onUnauthorized func()
}

func NewManager(store session.Store, api API, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		api:    api,
		logger: logger,
		state:  StateUnknown,
	}
}

// BindPermissions wires the permission cache after construction; the cache
// needs the manager's auth status, so the two are linked in main.
func (m *Manager) BindPermissions(perms PermissionCache) {
	m.mu.Lock()
	m.perms = perms
	m.mu.Unlock()
}

// SetOnUnauthorized registers the forced-logout subscriber. One subscriber;
// last registration wins.
func (m *Manager) SetOnUnauthorized(fn func()) {
	m.mu.Lock()
	m.onUnauthorized = fn
	m.mu.Unlock()
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

func (m *Manager) CurrentUser() (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.state == StateAuthenticated
}

// CurrentRoleName reports the role of the signed-in user, or "" when
// anonymous. Used by the permission cache for the Owner bypass.
func (m *Manager) CurrentRoleName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated {
		return ""
	}
	return m.user.RoleName()
}

// Token reports the bearer token for outbound requests. The token is
// installed before the login flow's profile fetch, so it is served while
// that flow is still in flight.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	m.mu.RLock()
	token := m.token
	state := m.state
	m.mu.RUnlock()
	if token != "" {
		return token, true
	}
	// Before Restore has run, fall back to the persisted token so early
	// requests are still authenticated.
	if state == StateUnknown {
		if sess, err := m.store.LoadSession(ctx); err == nil {
			return sess.Token, true
		}
	}
	return "", false
}

// Restore checks the session store at process start. A stored session moves
// the terminal straight to Authenticated with the cached user; the
// permission cache is then refreshed in the background, and a refresh
// failure does not revert the state.
func (m *Manager) Restore(ctx context.Context) {
	sess, err := m.store.LoadSession(ctx)
	if err != nil {
		m.mu.Lock()
		m.state = StateAnonymous
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.token = sess.Token
	m.user = sess.User
	perms := m.perms
	m.mu.Unlock()

	m.logger.Info("session restored", "user", sess.User.Username)

	if perms != nil {
		go func() {
			if err := perms.Refresh(context.Background(), false); err != nil {
				m.logger.Warn("permission refresh after restore failed", "error", err)
			}
		}()
	}
}

// Login runs the full flow: authenticate, decode the token for a
// provisional identity, overlay the profile when reachable, persist, then
// load permissions. A response without a token aborts before anything is
// persisted and the state is left unchanged.
func (m *Manager) Login(ctx context.Context, username string, password string) (domain.User, error) {
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		return domain.User{}, err
	}
	if resp.AccessToken == "" {
		return domain.User{}, ErrNoToken
	}

	// The profile fetch below goes through the same client, so the fresh
	// token must be visible to Token() before that call.
	m.mu.Lock()
	m.token = resp.AccessToken
	m.mu.Unlock()

	user := decodeIdentity(resp.AccessToken, username)

	if profile, err := m.api.Profile(ctx); err == nil {
		user = overlayProfile(user, profile)
	} else {
		// Expected when the profile endpoint is unavailable; the decoded
		// claims are good enough for display.
		m.logger.Debug("profile fetch failed, using token identity", "error", err)
	}

	if err := m.store.SaveSession(ctx, resp.AccessToken, user); err != nil {
		_ = m.store.ClearSession(ctx)
		m.mu.Lock()
		m.token = ""
		m.mu.Unlock()
		return domain.User{}, err
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.token = resp.AccessToken
	m.user = user
	perms := m.perms
	m.mu.Unlock()

	m.logger.Info("login succeeded", "user", user.Username, "role", user.RoleName())

	if perms != nil {
		if err := perms.Refresh(ctx, true); err != nil {
			// Fail-closed cache; the terminal just shows less until the
			// next refresh succeeds.
			m.logger.Warn("permission refresh after login failed", "error", err)
		}
	}
	return user, nil
}

// Logout clears the session store and permission cache, then flips to
// Anonymous. It always succeeds locally; no backend call is made.
func (m *Manager) Logout(ctx context.Context) {
	_ = m.store.ClearSession(ctx)

	m.mu.Lock()
	if m.perms != nil {
		m.perms.Clear()
	}
	m.state = StateAnonymous
	m.token = ""
	m.user = domain.User{}
	m.mu.Unlock()

	m.logger.Info("logged out")
}

// HandleUnauthorized is the forced-logout path, wired to the API client's
// 401 hook. State is cleared before the subscriber is signaled so an
// observer never reads stale authenticated state. Duplicate invocations
// from concurrent in-flight requests are harmless.
func (m *Manager) HandleUnauthorized() {
	_ = m.store.ClearSession(context.Background())

	m.mu.Lock()
	if m.perms != nil {
		m.perms.Clear()
	}
	m.state = StateAnonymous
	m.token = ""
	m.user = domain.User{}
	fn := m.onUnauthorized
	m.mu.Unlock()

	m.logger.Warn("session invalidated by backend")

	if fn != nil {
		fn()
	}
}

// SetLockPIN stores a bcrypt hash of the terminal lock PIN.
func (m *Manager) SetLockPIN(ctx context.Context, pin string) error {
	pin = strings.TrimSpace(pin)
	if len(pin) < 4 {
		return errors.New("lock PIN must be at least 4 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return m.store.SaveLockPIN(ctx, string(hash))
}

// VerifyLockPIN checks a PIN against the stored hash. Absence of a stored
// PIN means the lock screen is disabled, so verification fails.
func (m *Manager) VerifyLockPIN(ctx context.Context, pin string) bool {
	hash, err := m.store.LoadLockPIN(ctx)
	if err != nil || !isBcryptHash(hash) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(pin))) == nil
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

// decodeIdentity extracts a provisional identity from the token's claims
// without verifying the signature. The backend re-verifies the token on
// every request, so these claims are for display only and never drive an
// access-control decision. Any decode failure falls back to the typed-in
// username.
func decodeIdentity(token string, username string) domain.User {
	fallback := domain.User{ID: 0, Username: username, Name: username, RoleID: 0}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}

	user := domain.User{
		ID:       claimInt(claims, "sub"),
		Username: claimString(claims, "username", username),
		Name:     claimString(claims, "name", username),
		RoleID:   claimInt(claims, "roleId"),
	}
	if storeID := claimInt(claims, "storeId"); storeID != 0 {
		user.StoreID = &storeID
	}
	if user.RoleID != 0 {
		user.Role = &domain.Role{ID: user.RoleID, Name: claimString(claims, "roleName", "User")}
	}
	return user
}

// overlayProfile merges the authoritative profile over the provisional
// identity. A profile field wins only when present; an incomplete profile
// never erases a known-good claim.
func overlayProfile(base domain.User, profile domain.Profile) domain.User {
	user := base
	if profile.ID != nil {
		user.ID = *profile.ID
	}
	if profile.Username != nil {
		user.Username = *profile.Username
	}
	if profile.Name != nil {
		user.Name = *profile.Name
	}
	if profile.RoleID != nil {
		user.RoleID = *profile.RoleID
	}
	if profile.StoreID != nil {
		user.StoreID = profile.StoreID
	}
	if profile.Role != nil {
		user.Role = profile.Role
	} else if profile.RoleName != nil && user.RoleID != 0 {
		user.Role = &domain.Role{ID: user.RoleID, Name: *profile.RoleName}
	}
	return user
}

func claimInt(claims jwtlib.MapClaims, key string) int {
	switch v := claims[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func claimString(claims jwtlib.MapClaims, key string, fallback string) string {
	if v, ok := claims[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
