package handler

import (
	"net/http"

	"counterpos/internal/dto"
	"counterpos/internal/repository"
	"counterpos/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	adj, err := h.svc.Adjust(c.Request.Context(), service.AdjustStockInput{
		ProductID: id,
		VariantID: optionalID(req.VariantID),
		Kind:      req.Kind,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		UserID:    req.UserID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, adjustmentToResponse(adj))
}

func (h *InventoryHandler) History(c *gin.Context) {
	var q dto.AdjustmentFilter
	if !bindQuery(c, &q) {
		return
	}
	filter := repository.AdjustmentFilter{Kind: q.Kind, Page: q.Page, Limit: q.Limit}
	if q.ProductID != "" {
		filter.ProductID = optionalID(&q.ProductID)
	}
	rows, total, err := h.svc.History(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	data := make([]dto.StockAdjustmentResponse, 0, len(rows))
	for i := range rows {
		data = append(data, adjustmentToResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, dto.AdjustmentListResponse{Data: data, Total: total, Page: q.Page, Limit: q.Limit})
}
