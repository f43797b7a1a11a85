package domain

import "strings"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type Permission struct {
	ID     int    `json:"id"`
	Module string `json:"module"`
	Action string `json:"action"`
	Slug   string `json:"slug"`
}

type Role struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// User is the identity shown by the terminal. It is assembled from the
// session token's claims and, when available, the /auth/profile response.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	RoleID   int    `json:"roleId"`
	Role     *Role  `json:"role,omitempty"`
	StoreID  *int   `json:"storeId,omitempty"`
}

// DisplayName never returns an empty string for a user that has a username.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Username
}

func (u User) RoleName() string {
	if u.Role != nil {
		return u.Role.Name
	}
	return ""
}

// Profile is the authoritative identity returned by /auth/profile. Every
// field is optional: the backend may omit any of them, and omitted fields
// must not overwrite what the token already provided.
type Profile struct {
	ID          *int     `json:"id,omitempty"`
	Username    *string  `json:"username,omitempty"`
	Name        *string  `json:"name,omitempty"`
	RoleID      *int     `json:"roleId,omitempty"`
	StoreID     *int     `json:"storeId,omitempty"`
	Role        *Role    `json:"role,omitempty"`
	RoleName    *string  `json:"roleName,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type Store struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type ProductCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ProductAddon struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Product struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       float64          `json:"price"`
	Category    *ProductCategory `json:"category,omitempty"`
	Addons      []ProductAddon   `json:"addons,omitempty"`
	ImageURL    string           `json:"imageUrl,omitempty"`
}

const (
	OrderStatusOpen     = "open"
	OrderStatusCanceled = "canceled"
	OrderStatusPaid     = "paid"
)

type OrderItemAddon struct {
	AddonID    int          `json:"addonId"`
	Addon      ProductAddon `json:"addon"`
	Quantity   int          `json:"quantity"`
	AddonPrice float64      `json:"addonPrice"`
}

type OrderItem struct {
	ID        int              `json:"id"`
	Product   Product          `json:"product"`
	Quantity  int              `json:"quantity"`
	UnitPrice float64          `json:"unitPrice"`
	LineTotal float64          `json:"lineTotal"`
	Addons    []OrderItemAddon `json:"orderItemAddons,omitempty"`
}

type Order struct {
	ID             int         `json:"id"`
	OrderNumber    string      `json:"orderNumber"`
	CustomerName   string      `json:"customerName,omitempty"`
	Store          Store       `json:"store"`
	OrderItems     []OrderItem `json:"orderItems"`
	Status         string      `json:"status"`
	SubtotalAmount float64     `json:"subtotalAmount"`
	TaxAmount      float64     `json:"taxAmount"`
	TotalAmount    float64     `json:"totalAmount"`
	CreatedAt      string      `json:"createdAt"`
}

type CreateOrderAddon struct {
	AddonID  int     `json:"addonId"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type CreateOrderItem struct {
	ProductID int                `json:"productId"`
	Quantity  int                `json:"quantity"`
	Addons    []CreateOrderAddon `json:"addons,omitempty"`
}

type CreateOrderRequest struct {
	StoreID      int               `json:"storeId"`
	CustomerName string            `json:"customerName,omitempty"`
	Items        []CreateOrderItem `json:"items"`
}

type PaymentMethod struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Transaction struct {
	ID                int            `json:"id"`
	TransactionNumber string         `json:"transactionNumber"`
	Order             *Order         `json:"order,omitempty"`
	PaymentMethod     *PaymentMethod `json:"paymentMethod,omitempty"`
	Amount            float64        `json:"amount"`
	Change            float64        `json:"change,omitempty"`
	Status            string         `json:"status"`
	CreatedAt         string         `json:"createdAt"`
}

type CreateTransactionRequest struct {
	OrderID         int     `json:"orderId"`
	PaymentMethodID int     `json:"paymentMethodId"`
	Amount          float64 `json:"amount"`
	StoreID         int     `json:"storeId"`
}

type Employee struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	StoreID     *int    `json:"storeId,omitempty"`
	Status      string  `json:"status"`
	DailySalary float64 `json:"dailySalary,omitempty"`
}

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)

type Attendance struct {
	ID         int    `json:"id"`
	EmployeeID int    `json:"employeeId"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

type CreateAttendanceRequest struct {
	Date       string `json:"date"`
	EmployeeID int    `json:"employeeId"`
	Status     string `json:"status"`
}

type UpdateAttendanceRequest struct {
	Date       *string `json:"date,omitempty"`
	EmployeeID *int    `json:"employeeId,omitempty"`
	Status     *string `json:"status,omitempty"`
}

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type CreateRoleRequest struct {
	Name string `json:"name"`
}

type AssignRolePermissionsRequest struct {
	RoleID        int   `json:"roleId"`
	PermissionIDs []int `json:"permissionIds"`
}
