package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewline-api/internal/application/service"
	"github.com/sangkips/brewline-api/internal/infrastructure/gateway"
	"github.com/sangkips/brewline-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// PaymentHandler receives payment gateway notifications
type PaymentHandler struct {
	webhook *service.WebhookProcessor
	log     logrus.FieldLogger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(webhook *service.WebhookProcessor, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{webhook: webhook, log: log}
}

// Notification handles the gateway's HTTP notification. Only a bad
// signature is refused; every other outcome is acknowledged with 200 so the
// gateway stops retrying, and failures are logged for reconciliation.
func (h *PaymentHandler) Notification(c *gin.Context) {
	var n gateway.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		response.BadRequest(c, "Invalid notification body")
		return
	}

	outcome, err := h.webhook.HandleNotification(c.Request.Context(), n)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUnauthorized {
			response.Unauthorized(c, "Invalid signature")
			return
		}
		h.log.WithError(err).WithFields(logrus.Fields{
			"order_ref":          n.OrderID,
			"transaction_status": n.TransactionStatus,
		}).Error("Payment notification not applied")
		c.JSON(http.StatusOK, response.NotificationAck{Received: true, Status: "error"})
		return
	}

	status := "applied"
	if outcome.Ignored {
		status = "ignored"
	}
	c.JSON(http.StatusOK, response.NotificationAck{Received: true, Status: status})
}
