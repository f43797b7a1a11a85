// Package httpapi is the localhost facade the presentation shell talks
// to. It exposes the terminal's session, permissions, carts and checkout
// over loopback HTTP; everything it does is delegated to the managers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sibubur/terminal/internal/api"
	"sibubur/terminal/internal/auth"
	"sibubur/terminal/internal/cart"
	"sibubur/terminal/internal/domain"
	"sibubur/terminal/internal/payment"
	"sibubur/terminal/internal/permission"
	"sibubur/terminal/internal/service"
	"sibubur/terminal/internal/session"
)

// ProductsAPI resolves products for cart additions.
type ProductsAPI interface {
	Get(ctx context.Context, id int) (domain.Product, error)
}

// OrdersAPI fetches orders for the pay flow.
type OrdersAPI interface {
	Get(ctx context.Context, id int) (domain.Order, error)
}

// PaymentMethodsAPI lists the tender options.
type PaymentMethodsAPI interface {
	List(ctx context.Context) ([]domain.PaymentMethod, error)
}

// StoresAPI lists the stores a terminal can be assigned to.
type StoresAPI interface {
	List(ctx context.Context) ([]domain.Store, error)
}

// RolesAPI is the role administration surface.
type RolesAPI interface {
	List(ctx context.Context) ([]domain.Role, error)
}

// RolePermissionsAPI backs the role permission editor.
type RolePermissionsAPI interface {
	List(ctx context.Context) ([]domain.Permission, error)
	ListByRole(ctx context.Context, roleID int) ([]domain.Permission, error)
	AssignToRole(ctx context.Context, req domain.AssignRolePermissionsRequest) error
}

// Deps bundles everything the facade delegates to.
type Deps struct {
	Manager         *auth.Manager
	Perms           *permission.Cache
	Carts           *cart.Registry
	Checkout        *service.Checkout
	Attendance      *service.Attendance
	Store           session.Store
	Products        ProductsAPI
	Orders          OrdersAPI
	PaymentMethods  PaymentMethodsAPI
	Stores          StoresAPI
	Roles           RolesAPI
	RolePermissions RolePermissionsAPI
	Logger          *slog.Logger
}

type API struct {
	manager         *auth.Manager
	perms           *permission.Cache
	carts           *cart.Registry
	checkout        *service.Checkout
	attendance      *service.Attendance
	store           session.Store
	products        ProductsAPI
	orders          OrdersAPI
	paymentMethods  PaymentMethodsAPI
	stores          StoresAPI
	roles           RolesAPI
	rolePermissions RolePermissionsAPI
	logger          *slog.Logger
}

func New(deps Deps) *API {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		manager:         deps.Manager,
		perms:           deps.Perms,
		carts:           deps.Carts,
		checkout:        deps.Checkout,
		attendance:      deps.Attendance,
		store:           deps.Store,
		products:        deps.Products,
		orders:          deps.Orders,
		paymentMethods:  deps.PaymentMethods,
		stores:          deps.Stores,
		roles:           deps.Roles,
		rolePermissions: deps.RolePermissions,
		logger:          logger,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealth)

	mux.HandleFunc("POST /v1/session/login", a.handleLogin)
	mux.HandleFunc("POST /v1/session/logout", a.handleLogout)
	mux.HandleFunc("GET /v1/session", a.handleSession)
	mux.HandleFunc("POST /v1/session/lock-pin", a.handleSetLockPIN)
	mux.HandleFunc("POST /v1/session/unlock", a.handleUnlock)

	mux.HandleFunc("GET /v1/permissions", a.handlePermissions)
	mux.HandleFunc("GET /v1/permissions/check", a.handlePermissionCheck)
	mux.HandleFunc("POST /v1/permissions/refresh", a.handlePermissionRefresh)
	mux.HandleFunc("GET /v1/menu", a.handleMenu)

	mux.HandleFunc("POST /v1/carts", a.handleCartCreate)
	mux.HandleFunc("GET /v1/carts/{id}", a.handleCartGet)
	mux.HandleFunc("DELETE /v1/carts/{id}", a.handleCartDiscard)
	mux.HandleFunc("POST /v1/carts/{id}/items", a.handleCartAddItem)
	mux.HandleFunc("PATCH /v1/carts/{id}/items/{productId}", a.handleCartChangeQuantity)
	mux.HandleFunc("DELETE /v1/carts/{id}/items/{productId}", a.handleCartRemoveItem)
	mux.HandleFunc("POST /v1/carts/{id}/items/{productId}/addons", a.handleCartAddAddon)
	mux.HandleFunc("DELETE /v1/carts/{id}/items/{productId}/addons/{addonId}", a.handleCartRemoveAddon)
	mux.HandleFunc("POST /v1/carts/{id}/submit", a.handleCartSubmit)

	mux.HandleFunc("POST /v1/orders/{id}/pay", a.handleOrderPay)
	mux.HandleFunc("POST /v1/orders/{id}/cancel", a.handleOrderCancel)
	mux.HandleFunc("POST /v1/payments/preview", a.handlePaymentPreview)
	mux.HandleFunc("GET /v1/payment-methods", a.handlePaymentMethods)

	mux.HandleFunc("GET /v1/stores", a.handleStores)
	mux.HandleFunc("POST /v1/attendances/batch", a.handleAttendanceBatch)

	mux.HandleFunc("GET /v1/roles", a.handleRoles)
	mux.HandleFunc("GET /v1/roles/{id}/permissions", a.handleRolePermissions)
	mux.HandleFunc("PUT /v1/roles/{id}/permissions", a.handleAssignRolePermissions)

	mux.HandleFunc("GET /v1/print-settings", a.handlePrintSettingsGet)
	mux.HandleFunc("PUT /v1/print-settings", a.handlePrintSettingsPut)

	return a.withMiddleware(mux)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}
		startedAt := time.Now()
		next.ServeHTTP(w, r)
		a.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(startedAt))
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"state": a.manager.State().String(),
		"at":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := a.manager.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeJSON(w, statusForLoginError(err), map[string]any{"error": api.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func statusForLoginError(err error) int {
	if errors.Is(err, auth.ErrNoToken) {
		return http.StatusBadGateway
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusUnauthorized
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.manager.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"state": a.manager.State().String()}
	if user, ok := a.manager.CurrentUser(); ok {
		resp["user"] = user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleSetLockPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.manager.SetLockPIN(r.Context(), req.PIN); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !a.manager.VerifyLockPIN(r.Context(), req.PIN) {
		writeError(w, http.StatusUnauthorized, errors.New("PIN salah"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePermissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"permissions":  a.perms.Permissions(),
		"isSuperAdmin": a.perms.IsSuperAdmin(),
	})
}

func (a *API) handlePermissionCheck(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, errors.New("slug is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slug": slug, "allowed": a.perms.Has(slug)})
}

func (a *API) handlePermissionRefresh(w http.ResponseWriter, r *http.Request) {
	if err := a.perms.Refresh(r.Context(), true); err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"permissions":  a.perms.Permissions(),
		"isSuperAdmin": a.perms.IsSuperAdmin(),
	})
}

func (a *API) handleMenu(w http.ResponseWriter, r *http.Request) {
	type menuEntry struct {
		Name    string `json:"name"`
		Visible bool   `json:"visible"`
	}
	menus := make([]menuEntry, 0, len(permission.MenuPermissions))
	for _, name := range permission.MenuNames() {
		menus = append(menus, menuEntry{Name: name, Visible: a.perms.CanAccessMenu(name)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"menus": menus})
}

type cartView struct {
	ID           string      `json:"id"`
	StoreID      int         `json:"storeId"`
	CustomerName string      `json:"customerName,omitempty"`
	Lines        []cart.Line `json:"lines"`
	Totals       cart.Totals `json:"totals"`
}

func viewOf(d *cart.Draft) cartView {
	return cartView{
		ID:           d.ID,
		StoreID:      d.StoreID,
		CustomerName: d.CustomerName,
		Lines:        d.Lines(),
		Totals:       d.ComputeTotals(),
	}
}

func (a *API) handleCartCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StoreID      int    `json:"storeId"`
		CustomerName string `json:"customerName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	draft := a.carts.Create(req.StoreID)
	draft.CustomerName = req.CustomerName
	writeJSON(w, http.StatusCreated, viewOf(draft))
}

func (a *API) draft(w http.ResponseWriter, r *http.Request) (*cart.Draft, bool) {
	draft, ok := a.carts.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("cart not found"))
		return nil, false
	}
	return draft, true
}

func (a *API) handleCartGet(w http.ResponseWriter, r *http.Request) {
	draft, ok := a.draft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(draft))
}

func (a *API) handleCartDiscard(w http.ResponseWriter, r *http.Request) {
	a.carts.Discard(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCartAddItem(w http.ResponseWriter, r *http.Request) {
	draft, ok := a.draft(w, r)
	if !ok {
		return
	}
	var req struct {
		ProductID int `json:"productId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.products.Get(r.Context(), req.ProductID)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	draft.AddProduct(product)
	writeJSON(w, http.StatusOK, viewOf(draft))
}

func (a *API) handleCartChangeQuantity(w http.ResponseWriter, r *http.Request) {
	draft, ok := a.draft(w, r)
	if !ok {
		return
	}
	productID, err := pathInt(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !draft.ChangeQuantity(productID, req.Delta) {
		writeError(w, http.StatusNotFound, errors.New("product not in cart"))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(draft))
}

func (a *API) handleCartRemoveItem(w http.ResponseWriter, r *http.Request) {
	draft, ok := a.draft(w, r)
	if !ok {
		return
	}
	productID, err := pathInt(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !draft.RemoveLine(productID) {
		writeError(w, http.StatusNotFound, errors.New("product not in cart"))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(draft))
}

func (a *API) handleCartAddAddon(w http.ResponseWriter, r *http.Request) {
	draft, ok := a.draft(w, r)
	if !ok {
		return
	}
	productID, err := pathInt(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		AddonID int `json:"addonId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.products.Get(r.Context(), productID)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	var addon *domain.ProductAddon
	for i := range product.Addons {
		if product.Addons[i].ID == req.AddonID {
			addon = &product.Addons[i]
			break
		}
	}
	if addon == nil {
		writeError(w, http.StatusNotFound, errors.New("addon not available for this product"))
		return
	}
	if !draft.AddAddon(productID, *addon) {
		writeError(w, http.StatusNotFound, errors.New("product not in cart"))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(draft))
}

func (a *API) handleCartRemoveAddon(w http.ResponseWriter, r *http.Request) {
	draft, ok := a.draft(w, r)
	if !ok {
		return
	}
	productID, err := pathInt(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	addonID, err := pathInt(r, "addonId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !draft.RemoveAddon(productID, addonID) {
		writeError(w, http.StatusNotFound, errors.New("addon not in cart"))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(draft))
}

func (a *API) handleCartSubmit(w http.ResponseWriter, r *http.Request) {
	draft, ok := a.draft(w, r)
	if !ok {
		return
	}
	if !draft.TryBeginSubmit() {
		writeError(w, http.StatusConflict, errors.New("submit already in progress"))
		return
	}
	defer draft.EndSubmit()

	order, err := a.checkout.SubmitOrder(r.Context(), draft)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	// A submitted draft is done; drop it from the registry so it cannot
	// be resubmitted or accumulate.
	a.carts.Discard(draft.ID)
	writeJSON(w, http.StatusCreated, order)
}

func (a *API) handleOrderPay(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		PaymentMethodID int    `json:"paymentMethodId"`
		Tendered        string `json:"tendered"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	order, err := a.orders.Get(r.Context(), orderID)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if order.Status != domain.OrderStatusOpen {
		writeError(w, http.StatusConflict, errors.New("order is not open"))
		return
	}

	result, err := a.checkout.Pay(r.Context(), order, req.PaymentMethodID, req.Tendered)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transaction": result.Transaction,
		"change":      result.Change,
	})
}

func (a *API) handleOrderCancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.checkout.CancelOrder(r.Context(), orderID)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// writeCheckoutError distinguishes local guard failures, which the shell
// renders inline, from backend failures, which get the localized message.
func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNoStore),
		errors.Is(err, service.ErrNoPaymentMethod),
		errors.Is(err, service.ErrInsufficientTender):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeBackendError(w, err)
	}
}

func (a *API) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := a.paymentMethods.List(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paymentMethods": methods})
}

func (a *API) handleStores(w http.ResponseWriter, r *http.Request) {
	stores, err := a.stores.List(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stores": stores})
}

func (a *API) handleAttendanceBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date    string `json:"date"`
		Entries []struct {
			EmployeeID int    `json:"employeeId"`
			Status     string `json:"status"`
			ExistingID int    `json:"existingId"`
		} `json:"entries"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Date == "" || len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("date and entries are required"))
		return
	}

	entries := make([]service.AttendanceEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, service.AttendanceEntry{
			EmployeeID: e.EmployeeID,
			Status:     e.Status,
			ExistingID: e.ExistingID,
		})
	}
	saved, err := a.attendance.SubmitBatch(r.Context(), req.Date, entries)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": saved, "total": len(entries)})
}

func (a *API) handleRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := a.roles.List(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

// handleRolePermissions returns the full catalogue grouped by module with
// the role's grants marked, the shape the role editor renders directly.
func (a *API) handleRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	catalogue, err := a.rolePermissions.List(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	granted, err := a.rolePermissions.ListByRole(r.Context(), roleID)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	grantedIDs := make(map[int]bool, len(granted))
	for _, p := range granted {
		grantedIDs[p.ID] = true
	}

	type permView struct {
		domain.Permission
		Granted bool `json:"granted"`
	}
	modules := make(map[string][]permView)
	for module, perms := range permission.GroupByModule(catalogue) {
		views := make([]permView, 0, len(perms))
		for _, p := range perms {
			views = append(views, permView{Permission: p, Granted: grantedIDs[p.ID]})
		}
		modules[module] = views
	}
	writeJSON(w, http.StatusOK, map[string]any{"roleId": roleID, "modules": modules})
}

func (a *API) handleAssignRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		PermissionIDs []int `json:"permissionIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.rolePermissions.AssignToRole(r.Context(), domain.AssignRolePermissionsRequest{
		RoleID:        roleID,
		PermissionIDs: req.PermissionIDs,
	}); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePrintSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := a.store.LoadPrintSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *API) handlePrintSettingsPut(w http.ResponseWriter, r *http.Request) {
	var settings session.PrintSettings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.store.SavePrintSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handlePaymentPreview reconciles a typed tender against a total without
// touching the backend, so the shell can show change as the cashier types.
func (a *API) handlePaymentPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Total    float64 `json:"total"`
		Tendered string  `json:"tendered"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	v := payment.ValidateTender(req.Total, req.Tendered)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  v.OK,
		"amount": v.Amount,
		"reason": v.Reason,
		"change": payment.ComputeChange(req.Total, v.Amount),
	})
}

func pathInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return value, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeBackendError maps an upstream failure to the localized message the
// shell shows verbatim. Backend statuses pass through; transport failures
// become 502.
func writeBackendError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	writeJSON(w, status, map[string]any{"error": api.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}
