package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/internal/testutil"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMapGatewayStatus(t *testing.T) {
	tests := []struct {
		status, fraud string
		want          enum.PaymentStatus
	}{
		{"capture", "accept", enum.PaymentStatusSuccess},
		{"capture", "challenge", enum.PaymentStatusPending},
		{"capture", "deny", enum.PaymentStatusFailure},
		{"capture", "", enum.PaymentStatusFailure},
		{"settlement", "", enum.PaymentStatusSuccess},
		{"SETTLEMENT", "accept", enum.PaymentStatusSuccess},
		{"cancel", "", enum.PaymentStatusFailure},
		{"deny", "", enum.PaymentStatusFailure},
		{"expire", "", enum.PaymentStatusFailure},
		{"pending", "", enum.PaymentStatusPending},
		{"refund", "", enum.PaymentStatusFailure},
		{"", "", enum.PaymentStatusFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapGatewayStatus(tt.status, tt.fraud), "%s/%s", tt.status, tt.fraud)
	}
}

func TestHandleNotification_TamperedSignatureRejected(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	order := h.createGatewayOrder(t, m, "ONLINE", staff())

	n := signedNotification(order.ID, "settlement", "", "65.00")
	n.GrossAmount = "1.00"

	_, err := h.webhook.HandleNotification(context.Background(), n)
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	order = h.reload(t, order.ID)
	assert.Equal(t, enum.PaymentStatusPending, order.Payment.Status)
	assert.Equal(t, enum.OrderStatusPending, order.Status)
	assert.True(t, testutil.Dec("100").Equal(testutil.StockOf(t, h.db, m.x.ID)))
}

func TestHandleNotification_SuccessSettlesOnlineOrder(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	buyer := customer("gil")
	order := h.createGatewayOrder(t, m, "ONLINE", buyer)

	h.invoices.On("SendInvoice", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.ID == order.ID && len(o.Items) == 1
	})).Return(nil).Once()
	h.events.On("PublishNewOrder", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.ID == order.ID && o.Status == enum.OrderStatusProcessing
	})).Return(nil).Once()

	out, err := h.webhook.HandleNotification(context.Background(), signedNotification(order.ID, "capture", "accept", "65.00"))
	require.NoError(t, err)
	assert.False(t, out.Ignored)
	assert.Equal(t, enum.PaymentStatusSuccess, out.PaymentStatus)
	assert.Equal(t, enum.OrderStatusProcessing, out.OrderStatus)

	order = h.reload(t, order.ID)
	assert.Equal(t, enum.OrderStatusProcessing, order.Status)
	assert.Equal(t, enum.PaymentStatusSuccess, order.Payment.Status)
	assert.True(t, testutil.Dec("65").Equal(order.Payment.PaidAmount))
	assert.Equal(t, "capture", order.Payment.GatewayStatus)
	assert.NotNil(t, order.Payment.PaidAt)

	assert.True(t, testutil.Dec("96").Equal(testutil.StockOf(t, h.db, m.x.ID)))
	assert.True(t, testutil.Dec("94").Equal(testutil.StockOf(t, h.db, m.y.ID)))

	h.invoices.AssertExpectations(t)
	h.events.AssertExpectations(t)
}

func TestHandleNotification_ReplayLeavesStockUnchanged(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	order := h.createGatewayOrder(t, m, "ONLINE", staff())
	h.events.On("PublishNewOrder", mock.Anything, mock.Anything).Return(nil).Once()

	n := signedNotification(order.ID, "settlement", "", "65.00")
	_, err := h.webhook.HandleNotification(context.Background(), n)
	require.NoError(t, err)
	afterFirst := testutil.StockOf(t, h.db, m.x.ID)

	out, err := h.webhook.HandleNotification(context.Background(), n)
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	assert.True(t, afterFirst.Equal(testutil.StockOf(t, h.db, m.x.ID)))
	assert.True(t, testutil.Dec("94").Equal(testutil.StockOf(t, h.db, m.y.ID)))
	assert.EqualValues(t, 2, h.count(t, &entity.MaterialUsage{}))

	// The event went out once.
	h.events.AssertNumberOfCalls(t, "PublishNewOrder", 1)
}

func TestHandleNotification_OfflineOrderCompletesWithoutEvent(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	order := h.createGatewayOrder(t, m, "OFFLINE", staff())

	out, err := h.webhook.HandleNotification(context.Background(), signedNotification(order.ID, "settlement", "", "65.00"))
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCompleted, out.OrderStatus)
	h.events.AssertNotCalled(t, "PublishNewOrder", mock.Anything, mock.Anything)
	h.invoices.AssertNotCalled(t, "SendInvoice", mock.Anything, mock.Anything)
}

func TestHandleNotification_FailureCancelsOrder(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	order := h.createGatewayOrder(t, m, "ONLINE", staff())

	out, err := h.webhook.HandleNotification(context.Background(), signedNotification(order.ID, "deny", "", "65.00"))
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusFailure, out.PaymentStatus)

	order = h.reload(t, order.ID)
	assert.Equal(t, enum.OrderStatusCancelled, order.Status)
	assert.Equal(t, enum.PaymentStatusFailure, order.Payment.Status)
	assert.True(t, testutil.Dec("100").Equal(testutil.StockOf(t, h.db, m.x.ID)))
}

func TestHandleNotification_PendingIsANoop(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	order := h.createGatewayOrder(t, m, "ONLINE", staff())

	for _, n := range []struct{ status, fraud string }{{"pending", ""}, {"capture", "challenge"}} {
		out, err := h.webhook.HandleNotification(context.Background(), signedNotification(order.ID, n.status, n.fraud, "65.00"))
		require.NoError(t, err)
		assert.True(t, out.Ignored)
	}

	order = h.reload(t, order.ID)
	assert.Equal(t, enum.PaymentStatusPending, order.Payment.Status)
	assert.Equal(t, enum.OrderStatusPending, order.Status)
}

func TestHandleNotification_ShortfallStillSettles(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	order := h.createGatewayOrder(t, m, "ONLINE", staff())
	h.events.On("PublishNewOrder", mock.Anything, mock.Anything).Return(nil).Once()

	// Stock ran out between checkout and payment.
	require.NoError(t, h.db.Model(m.x).Update("quantity", testutil.Dec("3")).Error)

	out, err := h.webhook.HandleNotification(context.Background(), signedNotification(order.ID, "settlement", "", "65.00"))
	require.NoError(t, err)
	assert.True(t, out.StockShortfall)
	assert.Equal(t, enum.PaymentStatusSuccess, out.PaymentStatus)

	order = h.reload(t, order.ID)
	assert.True(t, order.StockShortfall)
	assert.Equal(t, enum.OrderStatusProcessing, order.Status)
	assert.True(t, testutil.Dec("3").Equal(testutil.StockOf(t, h.db, m.x.ID)))
	assert.True(t, testutil.Dec("100").Equal(testutil.StockOf(t, h.db, m.y.ID)))
	assert.Zero(t, h.count(t, &entity.MaterialUsage{}))
}

func TestHandleNotification_SideEffectFailuresAreSwallowed(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	order := h.createGatewayOrder(t, m, "ONLINE", customer("hal"))
	h.invoices.On("SendInvoice", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	h.events.On("PublishNewOrder", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	out, err := h.webhook.HandleNotification(context.Background(), signedNotification(order.ID, "settlement", "", "65.00"))
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusSuccess, out.PaymentStatus)
	assert.Equal(t, enum.PaymentStatusSuccess, h.reload(t, order.ID).Payment.Status)
}

func TestHandleNotification_BadReferences(t *testing.T) {
	h := newHarness(t)

	n := signedNotification(uuid.New(), "settlement", "", "10.00")
	_, err := h.webhook.HandleNotification(context.Background(), n)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	n.OrderID = "ORDER-not-a-uuid"
	n.SignatureKey = signatureFor(n)
	_, err = h.webhook.HandleNotification(context.Background(), n)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
