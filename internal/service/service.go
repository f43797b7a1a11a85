// Package service orchestrates the checkout and attendance flows on top
// of the API client and the cart drafts.
package service

import (
	"context"
	"errors"
	"log/slog"

	"sibubur/terminal/internal/cart"
	"sibubur/terminal/internal/domain"
	"sibubur/terminal/internal/payment"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNoStore            = errors.New("no store selected")
	ErrNoPaymentMethod    = errors.New("no payment method selected")
	ErrInsufficientTender = errors.New("tendered amount does not cover the total")
)

type OrdersAPI interface {
	Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error)
	Cancel(ctx context.Context, id int) (domain.Order, error)
	MarkPaid(ctx context.Context, id int) (domain.Order, error)
}

type TransactionsAPI interface {
	Create(ctx context.Context, req domain.CreateTransactionRequest) (domain.Transaction, error)
}

type AttendancesAPI interface {
	Create(ctx context.Context, req domain.CreateAttendanceRequest) (domain.Attendance, error)
	Update(ctx context.Context, id int, req domain.UpdateAttendanceRequest) (domain.Attendance, error)
}

type Checkout struct {
	orders       OrdersAPI
	transactions TransactionsAPI
	logger       *slog.Logger
}

func NewCheckout(orders OrdersAPI, transactions TransactionsAPI, logger *slog.Logger) *Checkout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checkout{orders: orders, transactions: transactions, logger: logger}
}

// SubmitOrder sends a draft to the backend and clears it on success. The
// draft survives a failed submit so the cashier can retry.
func (c *Checkout) SubmitOrder(ctx context.Context, draft *cart.Draft) (domain.Order, error) {
	if draft.Empty() {
		return domain.Order{}, ErrEmptyCart
	}
	if draft.StoreID == 0 {
		return domain.Order{}, ErrNoStore
	}

	order, err := c.orders.Create(ctx, draft.OrderRequest())
	if err != nil {
		return domain.Order{}, err
	}
	draft.Clear()
	c.logger.Info("order submitted", "orderNumber", order.OrderNumber, "total", order.TotalAmount)
	return order, nil
}

// CancelOrder voids an open order on the backend.
func (c *Checkout) CancelOrder(ctx context.Context, id int) (domain.Order, error) {
	order, err := c.orders.Cancel(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	c.logger.Info("order canceled", "orderNumber", order.OrderNumber)
	return order, nil
}

// PaymentResult carries the recorded transaction and the cash change.
type PaymentResult struct {
	Transaction domain.Transaction
	Change      float64
}

// Pay records a cash payment for an open order. The tendered string is
// whatever the cashier typed; it is parsed and reconciled here, and the
// order is marked paid only after the transaction is accepted.
func (c *Checkout) Pay(ctx context.Context, order domain.Order, paymentMethodID int, tendered string) (PaymentResult, error) {
	if paymentMethodID == 0 {
		return PaymentResult{}, ErrNoPaymentMethod
	}
	v := payment.ValidateTender(order.TotalAmount, tendered)
	if !v.OK {
		return PaymentResult{}, ErrInsufficientTender
	}

	tx, err := c.transactions.Create(ctx, domain.CreateTransactionRequest{
		OrderID:         order.ID,
		PaymentMethodID: paymentMethodID,
		Amount:          v.Amount,
		StoreID:         order.Store.ID,
	})
	if err != nil {
		return PaymentResult{}, err
	}

	if _, err := c.orders.MarkPaid(ctx, order.ID); err != nil {
		// The money is recorded; surface the inconsistency instead of
		// pretending the payment failed.
		c.logger.Error("transaction recorded but order not marked paid",
			"orderId", order.ID, "transaction", tx.TransactionNumber, "error", err)
		return PaymentResult{}, err
	}

	change := payment.ComputeChange(order.TotalAmount, v.Amount)
	c.logger.Info("payment recorded", "transaction", tx.TransactionNumber, "change", change)
	return PaymentResult{Transaction: tx, Change: change}, nil
}

// AttendanceEntry is one employee's status for a date. ExistingID, when
// set, turns the save into an update.
type AttendanceEntry struct {
	EmployeeID int
	Status     string
	ExistingID int
}

type Attendance struct {
	api    AttendancesAPI
	logger *slog.Logger
}

func NewAttendance(api AttendancesAPI, logger *slog.Logger) *Attendance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Attendance{api: api, logger: logger}
}

// SubmitBatch saves attendance for every entry, continuing past
// individual failures. It returns the success count; an error is returned
// only when every entry failed, and it is the last failure seen.
func (a *Attendance) SubmitBatch(ctx context.Context, date string, entries []AttendanceEntry) (int, error) {
	var saved int
	var lastErr error
	for _, entry := range entries {
		var err error
		if entry.ExistingID != 0 {
			status := entry.Status
			_, err = a.api.Update(ctx, entry.ExistingID, domain.UpdateAttendanceRequest{Status: &status})
		} else {
			_, err = a.api.Create(ctx, domain.CreateAttendanceRequest{
				Date:       date,
				EmployeeID: entry.EmployeeID,
				Status:     entry.Status,
			})
		}
		if err != nil {
			lastErr = err
			a.logger.Warn("attendance save failed", "employeeId", entry.EmployeeID, "error", err)
			continue
		}
		saved++
	}
	if saved == 0 && lastErr != nil {
		return 0, lastErr
	}
	return saved, nil
}
