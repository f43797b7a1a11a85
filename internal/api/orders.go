package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"sibubur/terminal/internal/domain"
)

type OrdersService struct {
	client *Client
}

type OrdersListParams struct {
	StoreID int
	Date    string
	Page    int
	Limit   int
}

func listQuery(page int, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	return query
}

func (s *OrdersService) List(ctx context.Context, params OrdersListParams) (domain.Page[domain.Order], error) {
	query := listQuery(params.Page, params.Limit)
	if params.StoreID > 0 {
		query.Set("storeId", strconv.Itoa(params.StoreID))
	}
	if params.Date != "" {
		query.Set("date", params.Date)
	}

	var page domain.Page[domain.Order]
	if err := s.client.get(ctx, "/orders", query, &page); err != nil {
		return domain.Page[domain.Order]{}, err
	}
	return page, nil
}

func (s *OrdersService) Get(ctx context.Context, id int) (domain.Order, error) {
	var order domain.Order
	if err := s.client.get(ctx, fmt.Sprintf("/orders/%d", id), nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrdersService) GetByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	var order domain.Order
	path := "/orders/number/" + url.PathEscape(orderNumber)
	if err := s.client.get(ctx, path, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrdersService) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	var order domain.Order
	if err := s.client.post(ctx, "/orders", req, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrdersService) Cancel(ctx context.Context, id int) (domain.Order, error) {
	var order domain.Order
	if err := s.client.patch(ctx, fmt.Sprintf("/orders/%d/cancel", id), nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrdersService) MarkPaid(ctx context.Context, id int) (domain.Order, error) {
	var order domain.Order
	if err := s.client.patch(ctx, fmt.Sprintf("/orders/%d/paid", id), nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}
