package permission

import (
	"context"
	"errors"
	"testing"
	"time"

	"sibubur/terminal/internal/domain"
)

type sourceStub struct {
	super     bool
	superErr  error
	perms     []string
	permsErr  error
	superHits int
	permsHits int
}

func (s *sourceStub) IsSuperAdmin(_ context.Context) (bool, error) {
	s.superHits++
	return s.super, s.superErr
}

func (s *sourceStub) UserPermissions(_ context.Context) ([]string, error) {
	s.permsHits++
	return s.perms, s.permsErr
}

func newTestCache(source *sourceStub, roleName string) (*Cache, *time.Time) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cache := NewCache(source, func() bool { return true }, func() string { return roleName }, nil)
	cache.now = func() time.Time { return clock }
	return cache, &clock
}

func TestRefreshWithinTTLSkipsNetwork(t *testing.T) {
	source := &sourceStub{perms: []string{"orders.read"}}
	cache, clock := newTestCache(source, "Kasir")

	if err := cache.Refresh(context.Background(), false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if source.permsHits != 1 {
		t.Fatalf("expected one fetch, got %d", source.permsHits)
	}

	*clock = clock.Add(4 * time.Minute)
	if err := cache.Refresh(context.Background(), false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if source.permsHits != 1 {
		t.Fatalf("fresh cache must not refetch, got %d fetches", source.permsHits)
	}

	*clock = clock.Add(2 * time.Minute)
	if err := cache.Refresh(context.Background(), false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if source.permsHits != 2 {
		t.Fatalf("stale cache must refetch, got %d fetches", source.permsHits)
	}
}

func TestRefreshForceBypassesTTL(t *testing.T) {
	source := &sourceStub{perms: []string{"orders.read"}}
	cache, _ := newTestCache(source, "Kasir")

	_ = cache.Refresh(context.Background(), false)
	_ = cache.Refresh(context.Background(), true)
	if source.permsHits != 2 {
		t.Fatalf("force must refetch, got %d fetches", source.permsHits)
	}
}

func TestSuperAdminBypassesEveryCheck(t *testing.T) {
	source := &sourceStub{super: true}
	cache, _ := newTestCache(source, "SuperAdmin")

	if err := cache.Refresh(context.Background(), false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !cache.IsSuperAdmin() {
		t.Fatalf("expected superadmin flag")
	}
	if !cache.Has("some.permission.that.does.not.exist") {
		t.Fatalf("superadmin must pass unknown slugs")
	}
	if source.permsHits != 0 {
		t.Fatalf("superadmin path must not fetch the slug list")
	}
	perms := cache.Permissions()
	if len(perms) != 1 || perms[0] != SuperAdminSentinel {
		t.Fatalf("expected sentinel entry, got %v", perms)
	}
}

func TestOwnerRoleBypassesChecks(t *testing.T) {
	source := &sourceStub{perms: []string{}}
	cache, _ := newTestCache(source, "Owner")

	if err := cache.Refresh(context.Background(), false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !cache.Has("reports.read") {
		t.Fatalf("owner must pass checks without explicit slugs")
	}
}

func TestOwnerBypassSurvivesEmptyCache(t *testing.T) {
	source := &sourceStub{permsErr: errors.New("backend down")}
	cache, _ := newTestCache(source, "Owner")

	if err := cache.Refresh(context.Background(), false); err == nil {
		t.Fatalf("expected refresh error")
	}
	if !cache.Has("reports.read") {
		t.Fatalf("owner must pass checks even with an empty cache")
	}
	if cache.IsSuperAdmin() {
		t.Fatalf("owner bypass must not fabricate the superadmin flag")
	}
}

func TestFetchErrorFailsClosed(t *testing.T) {
	source := &sourceStub{perms: []string{"orders.read"}}
	cache, clock := newTestCache(source, "Kasir")

	_ = cache.Refresh(context.Background(), false)
	if !cache.Has("orders.read") {
		t.Fatalf("expected cached permission")
	}

	*clock = clock.Add(TTL + time.Second)
	source.permsErr = errors.New("backend down")
	if err := cache.Refresh(context.Background(), false); err == nil {
		t.Fatalf("expected refresh error")
	}
	if cache.Has("orders.read") {
		t.Fatalf("failed refresh must deny, not serve the previous value")
	}
	if cache.IsSuperAdmin() {
		t.Fatalf("failed refresh must not report superadmin")
	}
}

func TestUnauthenticatedRefreshClears(t *testing.T) {
	source := &sourceStub{perms: []string{"orders.read"}}
	authed := true
	cache := NewCache(source, func() bool { return authed }, func() string { return "Kasir" }, nil)

	_ = cache.Refresh(context.Background(), false)
	if !cache.Has("orders.read") {
		t.Fatalf("expected cached permission")
	}

	authed = false
	if err := cache.Refresh(context.Background(), false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if cache.Has("orders.read") {
		t.Fatalf("anonymous refresh must clear the cache")
	}
	if source.permsHits != 1 {
		t.Fatalf("anonymous refresh must not hit the backend")
	}
}

func TestHasAny(t *testing.T) {
	source := &sourceStub{perms: []string{"products.read"}}
	cache, _ := newTestCache(source, "Kasir")
	_ = cache.Refresh(context.Background(), false)

	if !cache.HasAny("stores.read", "products.read") {
		t.Fatalf("expected one matching slug to pass")
	}
	if cache.HasAny("stores.read", "users.read") {
		t.Fatalf("expected no match to deny")
	}
}

func TestCanAccessMenu(t *testing.T) {
	source := &sourceStub{perms: []string{"cashier.read"}}
	cache, _ := newTestCache(source, "Kasir")
	_ = cache.Refresh(context.Background(), false)

	if !cache.CanAccessMenu("Kasir") {
		t.Fatalf("cashier must see the Kasir menu")
	}
	if cache.CanAccessMenu("Role & Izin") {
		t.Fatalf("cashier must not see role administration")
	}
	if !cache.CanAccessMenu("Pengaturan") {
		t.Fatalf("menus without requirements stay visible")
	}
	if !cache.CanAccessMenu("Menu Baru") {
		t.Fatalf("unknown menus stay visible")
	}
}

func TestHasAnySlug(t *testing.T) {
	if !HasAnySlug([]string{SuperAdminSentinel}, []string{"anything.at.all"}) {
		t.Fatalf("sentinel must pass any requirement")
	}
	if !HasAnySlug([]string{"a", "b"}, nil) {
		t.Fatalf("empty requirement always passes")
	}
	if HasAnySlug([]string{"a"}, []string{"b", "c"}) {
		t.Fatalf("disjoint sets must deny")
	}
}

func TestGroupByModule(t *testing.T) {
	perms := []domain.Permission{
		{ID: 1, Module: "orders", Action: "read", Slug: "orders.read"},
		{ID: 2, Module: "orders", Action: "create", Slug: "orders.create"},
		{ID: 3, Module: "", Action: "ping", Slug: "ping"},
	}
	groups := GroupByModule(perms)
	if len(groups["orders"]) != 2 {
		t.Fatalf("expected two orders permissions, got %d", len(groups["orders"]))
	}
	if len(groups["other"]) != 1 {
		t.Fatalf("expected blank module under other, got %v", groups)
	}
}
