package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/infrastructure/gateway"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/sangkips/brewline-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// WebhookOutcome describes what a notification did.
type WebhookOutcome struct {
	OrderID        uuid.UUID          `json:"order_id"`
	PaymentStatus  enum.PaymentStatus `json:"payment_status"`
	OrderStatus    enum.OrderStatus   `json:"order_status,omitempty"`
	Ignored        bool               `json:"ignored"`
	StockShortfall bool               `json:"stock_shortfall,omitempty"`
}

// MapGatewayStatus translates the gateway's transaction and fraud status
// pair into a payment status.
func MapGatewayStatus(transactionStatus, fraudStatus string) enum.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(transactionStatus)) {
	case "capture":
		switch strings.ToLower(strings.TrimSpace(fraudStatus)) {
		case "accept":
			return enum.PaymentStatusSuccess
		case "challenge":
			return enum.PaymentStatusPending
		default:
			return enum.PaymentStatusFailure
		}
	case "settlement":
		return enum.PaymentStatusSuccess
	case "cancel", "deny", "expire":
		return enum.PaymentStatusFailure
	case "pending":
		return enum.PaymentStatusPending
	default:
		return enum.PaymentStatusFailure
	}
}

// WebhookProcessor applies gateway notifications to payments and orders
type WebhookProcessor struct {
	serverKey string
	tx        repository.Transactor
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	bom       *BOMExpander
	ledger    *InventoryLedger
	invoices  InvoiceSender
	events    EventPublisher
	now       func() time.Time
	log       logrus.FieldLogger
}

// NewWebhookProcessor creates a new webhook processor. invoices and events
// may be nil.
func NewWebhookProcessor(
	serverKey string,
	tx repository.Transactor,
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	bom *BOMExpander,
	ledger *InventoryLedger,
	invoices InvoiceSender,
	events EventPublisher,
	log logrus.FieldLogger,
) *WebhookProcessor {
	return &WebhookProcessor{
		serverKey: serverKey,
		tx:        tx,
		payments:  payments,
		orders:    orders,
		bom:       bom,
		ledger:    ledger,
		invoices:  invoices,
		events:    events,
		now:       time.Now,
		log:       log,
	}
}

// HandleNotification verifies and applies one notification. Replays and
// late notifications for a settled payment are ignored.
func (p *WebhookProcessor) HandleNotification(ctx context.Context, n gateway.Notification) (*WebhookOutcome, error) {
	if !gateway.VerifySignature(n, p.serverKey) {
		return nil, apperror.NewUnauthorizedError("Invalid notification signature")
	}

	orderID, err := utils.ParseOrderReference(n.OrderID)
	if err != nil {
		return nil, apperror.NewBadRequestError("Malformed order reference")
	}
	log := p.log.WithFields(logrus.Fields{
		"order_id":           orderID,
		"transaction_status": n.TransactionStatus,
		"fraud_status":       n.FraudStatus,
	})

	payment, err := p.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to load payment", err)
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}

	target := MapGatewayStatus(n.TransactionStatus, n.FraudStatus)
	outcome := &WebhookOutcome{OrderID: orderID, PaymentStatus: payment.Status}

	if payment.Status.IsTerminal() {
		log.WithField("payment_status", payment.Status).Info("Notification for settled payment ignored")
		outcome.Ignored = true
		return outcome, nil
	}
	if target == enum.PaymentStatusPending {
		log.Debug("Payment still pending at gateway")
		outcome.Ignored = true
		return outcome, nil
	}

	if target == enum.PaymentStatusSuccess {
		return p.applySuccess(ctx, n, payment, outcome, log)
	}
	return p.applyFailure(ctx, n, payment, outcome, log)
}

func (p *WebhookProcessor) applySuccess(ctx context.Context, n gateway.Notification, payment *entity.Payment, outcome *WebhookOutcome, log logrus.FieldLogger) (*WebhookOutcome, error) {
	paidAmount := payment.Amount
	if gross, err := decimal.NewFromString(n.GrossAmount); err == nil {
		if !gross.Equal(payment.Amount) {
			log.WithFields(logrus.Fields{
				"expected": payment.Amount.String(),
				"received": n.GrossAmount,
			}).Warn("Gross amount differs from payment amount")
		}
		paidAmount = gross
	}
	paidAt := p.now()

	var (
		order *entity.Order
		reqs  []MaterialRequirement
		stale bool
	)
	err := p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = p.orders.GetWithDetails(ctx, outcome.OrderID)
		if err != nil {
			return apperror.NewInternalError("Failed to load order", err)
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}

		err = p.payments.Transition(ctx, payment, repository.PaymentTransition{
			Status:        enum.PaymentStatusSuccess,
			PaidAmount:    &paidAmount,
			PaidAt:        &paidAt,
			GatewayStatus: n.TransactionStatus,
		})
		if errors.Is(err, repository.ErrStaleTransition) {
			stale = true
			return nil
		}
		if err != nil {
			return apperror.NewInternalError("Failed to update payment", err)
		}

		reqs, err = p.bom.ExpandOrder(ctx, order)
		if err != nil {
			return err
		}
		if _, err := p.ledger.Commit(ctx, order.ID, reqs); err != nil {
			if !IsInsufficientStock(err) {
				return err
			}
			// The customer has paid; record the shortfall instead of refusing the money.
			if err := p.orders.MarkStockShortfall(ctx, order.ID); err != nil {
				return apperror.NewInternalError("Failed to flag stock shortfall", err)
			}
			order.StockShortfall = true
			log.WithError(err).Error("Paid order could not reserve stock, flagged for reconciliation")
		}

		next := enum.OrderStatusCompleted
		if order.Channel == enum.OrderChannelOnline {
			next = enum.OrderStatusProcessing
		}
		moved, err := p.orders.TransitionStatus(ctx, order.ID, []enum.OrderStatus{enum.OrderStatusPending}, next)
		if err != nil {
			return apperror.NewInternalError("Failed to advance order", err)
		}
		if moved {
			order.Status = next
		} else {
			log.WithField("order_status", order.Status).Warn("Paid order was not pending")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stale {
		log.Info("Payment changed concurrently, notification ignored")
		outcome.Ignored = true
		return outcome, nil
	}

	order.Payment = payment
	outcome.PaymentStatus = payment.Status
	outcome.OrderStatus = order.Status
	outcome.StockShortfall = order.StockShortfall
	log.WithField("order_status", order.Status).Info("Payment settled")

	if !order.StockShortfall {
		p.ledger.WarnLowStock(ctx, reqs)
	}
	p.afterSettlement(ctx, order, log)
	return outcome, nil
}

func (p *WebhookProcessor) applyFailure(ctx context.Context, n gateway.Notification, payment *entity.Payment, outcome *WebhookOutcome, log logrus.FieldLogger) (*WebhookOutcome, error) {
	stale := false
	err := p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		err := p.payments.Transition(ctx, payment, repository.PaymentTransition{
			Status:        enum.PaymentStatusFailure,
			GatewayStatus: n.TransactionStatus,
		})
		if errors.Is(err, repository.ErrStaleTransition) {
			stale = true
			return nil
		}
		if err != nil {
			return apperror.NewInternalError("Failed to update payment", err)
		}

		if _, err := p.orders.TransitionStatus(ctx, outcome.OrderID, []enum.OrderStatus{enum.OrderStatusPending}, enum.OrderStatusCancelled); err != nil {
			return apperror.NewInternalError("Failed to cancel order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stale {
		log.Info("Payment changed concurrently, notification ignored")
		outcome.Ignored = true
		return outcome, nil
	}

	outcome.PaymentStatus = payment.Status
	outcome.OrderStatus = enum.OrderStatusCancelled
	log.Info("Payment failed, order cancelled")
	return outcome, nil
}

// afterSettlement runs the notifications that must not affect the payment.
func (p *WebhookProcessor) afterSettlement(ctx context.Context, order *entity.Order, log logrus.FieldLogger) {
	if p.invoices != nil && order.CustomerRole.ReceivesInvoice() {
		if err := p.invoices.SendInvoice(ctx, order); err != nil {
			log.WithError(err).Error("Failed to send invoice")
		}
	}
	if p.events != nil && order.Channel == enum.OrderChannelOnline {
		if err := p.events.PublishNewOrder(ctx, order); err != nil {
			log.WithError(err).Error("Failed to publish new order event")
		}
	}
}
