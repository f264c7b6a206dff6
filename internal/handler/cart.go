package handler

import (
	"net/http"
	"strconv"
	"sync"

	"counterpos/internal/apierror"
	"counterpos/internal/dto"
	"counterpos/internal/service"

	"github.com/gin-gonic/gin"
)

// CartHandler exposes the register's single cart. The cart session is not
// goroutine-safe, so every request holds mu.
type CartHandler struct {
	mu     sync.Mutex
	cart   *service.CartSession
	orders service.OrderService
}

func NewCartHandler(cart *service.CartSession, orders service.OrderService) *CartHandler {
	return &CartHandler{cart: cart, orders: orders}
}

func lineID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("line_id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid line_id"))
		return 0, false
	}
	return id, true
}

func (h *CartHandler) writeCart(c *gin.Context, status int) {
	totals, err := h.cart.Totals(zeroDiscount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, cartToResponse(h.cart.Lines(), totals))
}

func (h *CartHandler) Get(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeCart(c, http.StatusOK)
}

func (h *CartHandler) AddLine(c *gin.Context) {
	var req dto.CartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := toCartItem(req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.cart.Add(c.Request.Context(), item); err != nil {
		writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusCreated)
}

func (h *CartHandler) ReplaceLine(c *gin.Context) {
	id, ok := lineID(c)
	if !ok {
		return
	}
	var req dto.CartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := toCartItem(req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.cart.Replace(c.Request.Context(), id, item); err != nil {
		writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK)
}

func (h *CartHandler) SetQuantity(c *gin.Context) {
	id, ok := lineID(c)
	if !ok {
		return
	}
	var req dto.SetQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.cart.SetQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK)
}

func (h *CartHandler) RemoveLine(c *gin.Context) {
	id, ok := lineID(c)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.cart.Remove(id); err != nil {
		writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK)
}

func (h *CartHandler) Clear(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.Clear()
	c.Status(http.StatusNoContent)
}

// Quote prices an item without touching the cart or checking stock.
func (h *CartHandler) Quote(c *gin.Context) {
	var req dto.CartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := toCartItem(req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	line, err := h.cart.Quote(c.Request.Context(), item)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartLineToResponse(line))
}

func (h *CartHandler) Checkout(c *gin.Context) {
	var req dto.PaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	order, err := h.orders.Checkout(c.Request.Context(), h.cart, toPayment(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderToResponse(order))
}
