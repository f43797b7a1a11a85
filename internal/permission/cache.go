package permission

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TTL bounds how long a fetched permission set is trusted before the next
// check goes back to the backend.
const TTL = 5 * time.Minute

// SuperAdminSentinel marks a cache entry whose holder bypasses every
// permission check. It is never a real slug.
const SuperAdminSentinel = "superadmin:*"

// OwnerRoleName bypasses checks by role name alone, even when the backend
// reports no explicit permissions for the role.
const OwnerRoleName = "Owner"

// Source is the slice of the backend the cache reads from.
type Source interface {
	IsSuperAdmin(ctx context.Context) (bool, error)
	UserPermissions(ctx context.Context) ([]string, error)
}

// Cache holds the signed-in user's permission slugs with a freshness
// window. It fails closed: any fetch error empties the cache, so a check
// against a stale or unknown state denies.
type Cache struct {
	source        Source
	authenticated func() bool
	roleName      func() string
	logger        *slog.Logger
	now           func() time.Time

	mu    sync.RWMutex
	entry *entry
}

type entry struct {
	perms        map[string]struct{}
	isSuperAdmin bool
	fetchedAt    time.Time
}

func NewCache(source Source, authenticated func() bool, roleName func() string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:        source,
		authenticated: authenticated,
		roleName:      roleName,
		logger:        logger,
		now:           time.Now,
	}
}

// Refresh loads the permission set when the cache is empty or stale. With
// force it always refetches. A fetch error clears the cache and is
// returned; callers decide whether that is fatal.
func (c *Cache) Refresh(ctx context.Context, force bool) error {
	if !c.authenticated() {
		c.Clear()
		return nil
	}

	c.mu.RLock()
	fresh := c.entry != nil && c.now().Sub(c.entry.fetchedAt) < TTL
	c.mu.RUnlock()
	if fresh && !force {
		return nil
	}

	next, err := c.fetch(ctx)
	c.mu.Lock()
	if err != nil {
		c.entry = nil
	} else {
		c.entry = next
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("permission fetch failed, cache cleared", "error", err)
		return err
	}
	return nil
}

func (c *Cache) fetch(ctx context.Context) (*entry, error) {
	super, err := c.source.IsSuperAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if super {
		return &entry{
			perms:        map[string]struct{}{SuperAdminSentinel: {}},
			isSuperAdmin: true,
			fetchedAt:    c.now(),
		}, nil
	}

	slugs, err := c.source.UserPermissions(ctx)
	if err != nil {
		return nil, err
	}
	perms := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		perms[slug] = struct{}{}
	}
	return &entry{perms: perms, fetchedAt: c.now()}, nil
}

// Has reports whether the current user holds a permission slug.
// Superadmins and Owners pass every check; the Owner bypass is by role
// name alone and holds even when the cache is empty.
func (c *Cache) Has(slug string) bool {
	if c.roleName() == OwnerRoleName {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return false
	}
	if c.entry.isSuperAdmin {
		return true
	}
	_, ok := c.entry.perms[slug]
	return ok
}

// HasAny reports whether the user holds at least one of the slugs.
func (c *Cache) HasAny(slugs ...string) bool {
	for _, slug := range slugs {
		if c.Has(slug) {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports the cached superadmin flag. Empty cache means no.
func (c *Cache) IsSuperAdmin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry != nil && c.entry.isSuperAdmin
}

// Permissions returns the cached slugs, sorted order not guaranteed.
func (c *Cache) Permissions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return []string{}
	}
	out := make([]string, 0, len(c.entry.perms))
	for slug := range c.entry.perms {
		out = append(out, slug)
	}
	return out
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}
