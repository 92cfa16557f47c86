package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/sangkips/brewline-api/pkg/pagination"
	"github.com/sirupsen/logrus"
)

// Requester identifies who is calling. Anonymous counter orders carry no
// CustomerID.
type Requester struct {
	CustomerID *uuid.UUID
	Name       string
	Email      string
	Role       enum.CustomerRole
}

// IsStaff reports whether the requester may see every order.
func (r Requester) IsStaff() bool {
	return r.Role == enum.CustomerRoleStaff
}

func (r Requester) owns(order *entity.Order) bool {
	if r.IsStaff() {
		return true
	}
	return r.CustomerID != nil && order.CustomerID != nil && *r.CustomerID == *order.CustomerID
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	Requester     Requester
	Channel       string
	PaymentMethod string
	Notes         *string
	Items         []LineInput
}

// CreateOrderResult carries the persisted order and, for gateway payments,
// what the client needs to complete the charge.
type CreateOrderResult struct {
	Order       *entity.Order
	ChargeToken string
	RedirectURL string
	ExpiresAt   *time.Time
}

// OrderService handles order-related operations
type OrderService struct {
	tx       repository.Transactor
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	pricing  *PricingEngine
	ledger   *InventoryLedger
	payment  *PaymentOrchestrator
	log      logrus.FieldLogger
}

// NewOrderService creates a new order service
func NewOrderService(
	tx repository.Transactor,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	pricing *PricingEngine,
	ledger *InventoryLedger,
	payment *PaymentOrchestrator,
	log logrus.FieldLogger,
) *OrderService {
	return &OrderService{
		tx:       tx,
		orders:   orders,
		payments: payments,
		pricing:  pricing,
		ledger:   ledger,
		payment:  payment,
		log:      log,
	}
}

// CreateOrder prices the cart, persists the order and creates its payment.
// An unknown payment method is rejected before anything is written.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreateOrderResult, error) {
	priced, err := s.pricing.Price(ctx, PriceInput{
		Channel:       input.Channel,
		PaymentMethod: input.PaymentMethod,
		Items:         input.Items,
	})
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		Status:        enum.OrderStatusPending,
		Channel:       priced.Channel,
		TotalAmount:   priced.Total,
		CustomerID:    input.Requester.CustomerID,
		CustomerName:  input.Requester.Name,
		CustomerEmail: input.Requester.Email,
		CustomerRole:  input.Requester.Role,
		Notes:         input.Notes,
		Items:         priced.Items,
	}

	var result *PaymentResult
	if priced.Method.IsGatewayRouted() {
		var payment *entity.Payment
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.orders.Create(ctx, order); err != nil {
				return apperror.NewInternalError("Failed to create order", err)
			}
			var err error
			payment, err = s.payment.OpenPending(ctx, priced.Method, order)
			return err
		})
		if err == nil {
			// The charge request is a network call and stays outside the transaction.
			result, err = s.payment.RequestCharge(ctx, order, payment, priced.GatewayItems)
		}
	} else {
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.orders.Create(ctx, order); err != nil {
				return apperror.NewInternalError("Failed to create order", err)
			}
			var err error
			result, err = s.payment.CreatePayment(ctx, priced.Method, order, nil)
			return err
		})
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"channel":  order.Channel,
		"method":   priced.Method,
		"total":    order.TotalAmount.StringFixed(2),
	}).Info("Order created")

	return &CreateOrderResult{
		Order:       order,
		ChargeToken: result.ChargeToken,
		RedirectURL: result.RedirectURL,
		ExpiresAt:   result.ExpiresAt,
	}, nil
}

// GetOrder retrieves an order with its items, add-ons and payment
func (s *OrderService) GetOrder(ctx context.Context, requester Requester, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orders.GetWithDetails(ctx, id)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to load order", err)
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if !requester.owns(order) {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}

// ListOrders lists orders with filtering. Non-staff requesters only see their own.
func (s *OrderService) ListOrders(ctx context.Context, requester Requester, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params == nil {
		params = &repository.OrderFilterParams{}
	}
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	if !requester.IsStaff() {
		if requester.CustomerID == nil {
			return nil, apperror.ErrUnauthorized
		}
		params.CustomerID = requester.CustomerID
	}

	orders, total, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to list orders", err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

// CancelOrder cancels an order that has not completed. A pending payment
// fails with it and stock committed for a processing order is restored.
// A payment that already succeeded is left as is and the order is flagged
// refund_due.
func (s *OrderService) CancelOrder(ctx context.Context, requester Requester, id uuid.UUID) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, apperror.NewConflictError("Order is already " + order.Status.String())
	}

	restored := false
	refundDue := order.Payment != nil && order.Payment.Status == enum.PaymentStatusSuccess
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if p := order.Payment; p != nil && p.Status == enum.PaymentStatusPending {
			err := s.payments.Transition(ctx, p, repository.PaymentTransition{Status: enum.PaymentStatusFailure})
			if errors.Is(err, repository.ErrStaleTransition) {
				return apperror.NewConflictError("Payment changed while cancelling, retry")
			}
			if err != nil {
				return apperror.NewInternalError("Failed to fail payment", err)
			}
		}

		if order.Status == enum.OrderStatusProcessing {
			var err error
			restored, err = s.ledger.Release(ctx, order.ID)
			if err != nil {
				return err
			}
		}

		moved, err := s.orders.TransitionStatus(ctx, order.ID,
			[]enum.OrderStatus{enum.OrderStatusPending, enum.OrderStatusProcessing}, enum.OrderStatusCancelled)
		if err != nil {
			return apperror.NewInternalError("Failed to cancel order", err)
		}
		if !moved {
			return apperror.NewConflictError("Order changed while cancelling, retry")
		}

		if refundDue {
			if err := s.orders.MarkRefundDue(ctx, order.ID); err != nil {
				return apperror.NewInternalError("Failed to flag refund", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = enum.OrderStatusCancelled
	order.RefundDue = refundDue
	log := s.log.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"stock_restored": restored,
	})
	if refundDue {
		log.WithFields(logrus.Fields{
			"payment_id": order.Payment.ID,
			"amount":     order.Payment.PaidAmount.StringFixed(2),
		}).Warn("Paid order cancelled, refund due")
	}
	log.Info("Order cancelled")
	return order, nil
}
