package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/infrastructure/gateway"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/sangkips/brewline-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// ExpiryScheduler arms the one-shot expiry of a pending payment.
type ExpiryScheduler interface {
	Arm(ctx context.Context, orderID uuid.UUID, at time.Time) error
}

// PaymentResult is what the client needs after a payment is created.
type PaymentResult struct {
	OrderID     uuid.UUID
	PaymentID   uuid.UUID
	Status      enum.PaymentStatus
	ChargeToken string
	RedirectURL string
	ExpiresAt   *time.Time
}

// PaymentOrchestrator creates the payment for a freshly persisted order
type PaymentOrchestrator struct {
	tx       repository.Transactor
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	bom      *BOMExpander
	ledger   *InventoryLedger
	gateway  PaymentGateway
	expiry   ExpiryScheduler
	window   time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewPaymentOrchestrator creates a new payment orchestrator
func NewPaymentOrchestrator(
	tx repository.Transactor,
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	bom *BOMExpander,
	ledger *InventoryLedger,
	gw PaymentGateway,
	expiry ExpiryScheduler,
	window time.Duration,
	log logrus.FieldLogger,
) *PaymentOrchestrator {
	return &PaymentOrchestrator{
		tx:       tx,
		payments: payments,
		orders:   orders,
		bom:      bom,
		ledger:   ledger,
		gateway:  gw,
		expiry:   expiry,
		window:   window,
		now:      time.Now,
		log:      log,
	}
}

// CreatePayment settles immediate methods on the spot and opens a gateway
// charge for gateway-routed ones. order must carry its items.
func (o *PaymentOrchestrator) CreatePayment(ctx context.Context, method enum.PaymentMethod, order *entity.Order, items []gateway.ChargeItem) (*PaymentResult, error) {
	if !method.IsGatewayRouted() {
		return o.settleImmediately(ctx, method, order)
	}
	payment, err := o.OpenPending(ctx, method, order)
	if err != nil {
		return nil, err
	}
	return o.RequestCharge(ctx, order, payment, items)
}

// settleImmediately records a paid payment, completes the order and commits
// stock in one transaction. A stock shortfall rolls all of it back.
func (o *PaymentOrchestrator) settleImmediately(ctx context.Context, method enum.PaymentMethod, order *entity.Order) (*PaymentResult, error) {
	now := o.now()
	payment := &entity.Payment{
		OrderID:    order.ID,
		Method:     method,
		Status:     enum.PaymentStatusSuccess,
		Amount:     order.TotalAmount,
		PaidAmount: order.TotalAmount,
		PaidAt:     &now,
	}

	var reqs []MaterialRequirement
	err := o.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := o.payments.Create(ctx, payment); err != nil {
			return apperror.NewInternalError("Failed to create payment", err)
		}

		moved, err := o.orders.TransitionStatus(ctx, order.ID, []enum.OrderStatus{enum.OrderStatusPending}, enum.OrderStatusCompleted)
		if err != nil {
			return apperror.NewInternalError("Failed to complete order", err)
		}
		if !moved {
			return apperror.NewConflictError("Order is no longer pending")
		}

		reqs, err = o.bom.ExpandOrder(ctx, order)
		if err != nil {
			return err
		}
		_, err = o.ledger.Commit(ctx, order.ID, reqs)
		return err
	})
	if err != nil {
		return nil, err
	}

	order.Status = enum.OrderStatusCompleted
	order.Payment = payment
	o.ledger.WarnLowStock(ctx, reqs)

	o.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"payment_id": payment.ID,
		"method":     method,
	}).Info("Order settled immediately")

	return &PaymentResult{
		OrderID:   order.ID,
		PaymentID: payment.ID,
		Status:    payment.Status,
	}, nil
}

// OpenPending inserts the PENDING payment with its expiry. Callers run it in
// the transaction that inserts the order so neither row exists without the other.
func (o *PaymentOrchestrator) OpenPending(ctx context.Context, method enum.PaymentMethod, order *entity.Order) (*entity.Payment, error) {
	expiresAt := o.now().Add(o.window)
	payment := &entity.Payment{
		OrderID:          order.ID,
		Method:           method,
		Status:           enum.PaymentStatusPending,
		Amount:           order.TotalAmount,
		GatewayReference: utils.OrderReference(order.ID),
		ExpiresAt:        &expiresAt,
	}
	if err := o.payments.Create(ctx, payment); err != nil {
		return nil, apperror.NewInternalError("Failed to create payment", err)
	}
	order.Payment = payment
	return payment, nil
}

// RequestCharge asks the gateway for a charge token and arms the expiry job.
// It makes a network call and must run outside any transaction. If the
// gateway or the queue fails the pending row stays behind for the sweep.
func (o *PaymentOrchestrator) RequestCharge(ctx context.Context, order *entity.Order, payment *entity.Payment, items []gateway.ChargeItem) (*PaymentResult, error) {
	expiresAt := *payment.ExpiresAt
	log := o.log.WithFields(logrus.Fields{"order_id": order.ID, "payment_id": payment.ID})

	charge, err := o.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		OrderReference: payment.GatewayReference,
		GrossAmount:    order.TotalAmount,
		Items:          items,
		Customer: gateway.ChargeCustomer{
			Name:  order.CustomerName,
			Email: order.CustomerEmail,
		},
		ExpiryStart:    expiresAt.Add(-o.window),
		ExpiryDuration: o.window,
	})
	if err != nil {
		log.WithError(err).Error("Charge token request failed, payment left pending for expiry")
		return nil, apperror.NewInternalError("Payment gateway unavailable", err)
	}

	if err := o.payments.SetChargeToken(ctx, payment.ID, charge.Token, charge.RedirectURL); err != nil {
		return nil, apperror.NewInternalError("Failed to store charge token", err)
	}
	payment.ChargeToken = &charge.Token
	payment.RedirectURL = &charge.RedirectURL

	if err := o.expiry.Arm(ctx, order.ID, expiresAt); err != nil {
		log.WithError(err).Warn("Failed to arm payment expiry, sweep will cover it")
	}

	order.Payment = payment
	log.WithField("expires_at", expiresAt).Info("Gateway charge opened")

	return &PaymentResult{
		OrderID:     order.ID,
		PaymentID:   payment.ID,
		Status:      payment.Status,
		ChargeToken: charge.Token,
		RedirectURL: charge.RedirectURL,
		ExpiresAt:   &expiresAt,
	}, nil
}
