package permission

import (
	"sort"

	"sibubur/terminal/internal/domain"
)

// MenuPermissions maps each navigation menu to the slugs that unlock it.
// An empty list means the menu is open to every signed-in user.
var MenuPermissions = map[string][]string{
	"Dashboard":          {"dashboard.read"},
	"Kasir":              {"cashier.read"},
	"Pesanan":            {"orders.read"},
	"Produksi Harian":    {"productions.read"},
	"Transaksi":          {"transactions.read"},
	"Persediaan":         {"supplies.read"},
	"Pengeluaran":        {"expenses.read"},
	"Karyawan & Absensi": {"employees.read"},
	"Laporan":            {"reports.read"},
	"Data Master": {
		"products.read",
		"stores.read",
		"product-categories.read",
		"product-addons.read",
		"employees.read",
		"expense-categories.read",
	},
	"Pengguna":    {"users.read"},
	"Role & Izin": {"roles.read"},
	"Pengaturan":  {},
}

// MenuNames returns the known menus in a stable order.
func MenuNames() []string {
	names := make([]string, 0, len(MenuPermissions))
	for name := range MenuPermissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CanAccessMenu gates a menu by the cached permissions. Menus without a
// requirement, and menus this build does not know about, stay visible.
func (c *Cache) CanAccessMenu(menu string) bool {
	required, ok := MenuPermissions[menu]
	if !ok || len(required) == 0 {
		return true
	}
	return c.HasAny(required...)
}

// HasAnySlug checks a raw slug list against a requirement without going
// through the cache. Used when rendering for another user's permission
// set, e.g. the role editor preview.
func HasAnySlug(held []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(held))
	for _, slug := range held {
		if slug == SuperAdminSentinel {
			return true
		}
		set[slug] = struct{}{}
	}
	for _, slug := range required {
		if _, ok := set[slug]; ok {
			return true
		}
	}
	return false
}

// GroupByModule buckets a permission list by module for the role editor.
// Permissions without a module land under "other".
func GroupByModule(perms []domain.Permission) map[string][]domain.Permission {
	groups := make(map[string][]domain.Permission)
	for _, p := range perms {
		module := p.Module
		if module == "" {
			module = "other"
		}
		groups[module] = append(groups[module], p)
	}
	return groups
}
