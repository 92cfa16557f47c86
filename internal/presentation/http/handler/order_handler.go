package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewline-api/internal/application/service"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/presentation/http/dto/request"
	"github.com/sangkips/brewline-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/sangkips/brewline-api/pkg/pagination"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles placing an order. Guests may order at the counter; their
// display name and email come from the body.
func (h *OrderHandler) Create(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	requester := GetRequester(c)
	if requester.Name == "" {
		requester.Name = req.CustomerName
	}
	if requester.Email == "" {
		requester.Email = req.CustomerEmail
	}

	input := &service.CreateOrderInput{
		Requester:     requester,
		Channel:       req.Channel,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Items:         make([]service.LineInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		line := service.LineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Variant:   item.Variant,
		}
		for _, a := range item.Addons {
			line.Addons = append(line.Addons, service.LineAddonInput{AddonID: a.AddonID, Quantity: a.Quantity})
		}
		input.Items = append(input.Items, line)
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully",
		response.NewCreateOrderResponse(result.Order, result.ChargeToken, result.RedirectURL, result.ExpiresAt))
}

// Get handles fetching a single order with its items and payment
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), GetRequester(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// List handles listing orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter request.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
	}

	if filter.Status != "" {
		status, err := enum.ParseOrderStatus(filter.Status)
		if err != nil {
			response.Error(c, apperror.NewValidationError([]apperror.FieldError{{Field: "status", Message: err.Error()}}))
			return
		}
		params.Status = &status
	}

	if filter.Channel != "" {
		channel, err := enum.ParseOrderChannel(filter.Channel)
		if err != nil {
			response.Error(c, apperror.NewValidationError([]apperror.FieldError{{Field: "channel", Message: err.Error()}}))
			return
		}
		params.Channel = &channel
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), GetRequester(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// Cancel handles cancelling an order that has not completed
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), GetRequester(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order cancelled successfully", order)
}
