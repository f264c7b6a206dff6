package handler

import (
	"net/http"

	"counterpos/internal/apierror"
	"counterpos/internal/dto"
	"counterpos/internal/repository"
	"counterpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var zeroDiscount = decimal.Zero

type OrdersHandler struct {
	orders  service.OrderService
	newCart func() *service.CartSession
}

// NewOrdersHandler takes a cart factory: each one-shot order builds its own
// session so the register cart is left alone.
func NewOrdersHandler(orders service.OrderService, newCart func() *service.CartSession) *OrdersHandler {
	return &OrdersHandler{orders: orders, newCart: newCart}
}

// Create prices, checks and commits a full cart in one request.
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	cart := h.newCart()
	for _, it := range req.Items {
		item, err := toCartItem(it)
		if err != nil {
			writeError(c, err)
			return
		}
		if _, err := cart.Add(ctx, item); err != nil {
			writeError(c, err)
			return
		}
	}
	order, err := h.orders.Checkout(ctx, cart, toPayment(req.PaymentRequest))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderToResponse(order))
}

func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToResponse(order))
}

func (h *OrdersHandler) List(c *gin.Context) {
	var q dto.OrderFilter
	if !bindQuery(c, &q) {
		return
	}
	from, to, err := dayRange(q.From, q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("dates must be YYYY-MM-DD"))
		return
	}
	orders, total, err := h.orders.ListOrders(c.Request.Context(), repository.OrderFilter{
		From:  from,
		To:    to,
		Page:  q.Page,
		Limit: q.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, orderToResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{Data: data, Total: total, Page: q.Page, Limit: q.Limit})
}
