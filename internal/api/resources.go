package api

import (
	"context"
	"fmt"
	"strconv"

	"sibubur/terminal/internal/domain"
)

type TransactionsService struct {
	client *Client
}

func (s *TransactionsService) Create(ctx context.Context, req domain.CreateTransactionRequest) (domain.Transaction, error) {
	var tx domain.Transaction
	if err := s.client.post(ctx, "/transactions", req, &tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

func (s *TransactionsService) List(ctx context.Context, storeID int, date string, page int, limit int) (domain.Page[domain.Transaction], error) {
	query := listQuery(page, limit)
	if storeID > 0 {
		query.Set("storeId", strconv.Itoa(storeID))
	}
	if date != "" {
		query.Set("date", date)
	}

	var result domain.Page[domain.Transaction]
	if err := s.client.get(ctx, "/transactions", query, &result); err != nil {
		return domain.Page[domain.Transaction]{}, err
	}
	return result, nil
}

type ProductsService struct {
	client *Client
}

func (s *ProductsService) List(ctx context.Context, page int, limit int) (domain.Page[domain.Product], error) {
	var result domain.Page[domain.Product]
	if err := s.client.get(ctx, "/products", listQuery(page, limit), &result); err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return result, nil
}

func (s *ProductsService) Get(ctx context.Context, id int) (domain.Product, error) {
	var product domain.Product
	if err := s.client.get(ctx, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

type AttendancesService struct {
	client *Client
}

func (s *AttendancesService) List(ctx context.Context, employeeID int, date string, page int, limit int) (domain.Page[domain.Attendance], error) {
	query := listQuery(page, limit)
	if employeeID > 0 {
		query.Set("employeeId", strconv.Itoa(employeeID))
	}
	if date != "" {
		query.Set("date", date)
	}

	var result domain.Page[domain.Attendance]
	if err := s.client.get(ctx, "/attendances", query, &result); err != nil {
		return domain.Page[domain.Attendance]{}, err
	}
	return result, nil
}

func (s *AttendancesService) Create(ctx context.Context, req domain.CreateAttendanceRequest) (domain.Attendance, error) {
	var attendance domain.Attendance
	if err := s.client.post(ctx, "/attendances", req, &attendance); err != nil {
		return domain.Attendance{}, err
	}
	return attendance, nil
}

func (s *AttendancesService) Update(ctx context.Context, id int, req domain.UpdateAttendanceRequest) (domain.Attendance, error) {
	var attendance domain.Attendance
	if err := s.client.patch(ctx, fmt.Sprintf("/attendances/%d", id), req, &attendance); err != nil {
		return domain.Attendance{}, err
	}
	return attendance, nil
}

func (s *AttendancesService) Delete(ctx context.Context, id int) error {
	return s.client.delete(ctx, fmt.Sprintf("/attendances/%d", id))
}

type RolesService struct {
	client *Client
}

func (s *RolesService) List(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	if err := s.client.get(ctx, "/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *RolesService) Get(ctx context.Context, id int) (domain.Role, error) {
	var role domain.Role
	if err := s.client.get(ctx, fmt.Sprintf("/roles/%d", id), nil, &role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (s *RolesService) Create(ctx context.Context, req domain.CreateRoleRequest) (domain.Role, error) {
	var role domain.Role
	if err := s.client.post(ctx, "/roles", req, &role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (s *RolesService) Delete(ctx context.Context, id int) error {
	return s.client.delete(ctx, fmt.Sprintf("/roles/%d", id))
}

type PermissionsService struct {
	client *Client
}

func (s *PermissionsService) List(ctx context.Context) ([]domain.Permission, error) {
	var permissions []domain.Permission
	if err := s.client.get(ctx, "/permissions", nil, &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}

func (s *PermissionsService) ListByRole(ctx context.Context, roleID int) ([]domain.Permission, error) {
	var permissions []domain.Permission
	if err := s.client.get(ctx, fmt.Sprintf("/roles/%d/permissions", roleID), nil, &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}

func (s *PermissionsService) AssignToRole(ctx context.Context, req domain.AssignRolePermissionsRequest) error {
	return s.client.post(ctx, "/role-permissions", req, nil)
}

type StoresService struct {
	client *Client
}

func (s *StoresService) List(ctx context.Context) ([]domain.Store, error) {
	var stores []domain.Store
	if err := s.client.get(ctx, "/stores", nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

type PaymentMethodsService struct {
	client *Client
}

func (s *PaymentMethodsService) List(ctx context.Context) ([]domain.PaymentMethod, error) {
	var methods []domain.PaymentMethod
	if err := s.client.get(ctx, "/payment-methods", nil, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}
