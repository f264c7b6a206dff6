package handler

import (
	"net/http"

	"counterpos/internal/apierror"
	"counterpos/internal/dto"
	"counterpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

type salesQuery struct {
	From string `form:"from"` // YYYY-MM-DD, inclusive; empty means all time
	To   string `form:"to"`
}

func (h *ReportsHandler) Sales(c *gin.Context) {
	var q salesQuery
	if !bindQuery(c, &q) {
		return
	}
	from, to, err := dayRange(q.From, q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("dates must be YYYY-MM-DD"))
		return
	}
	report, err := h.svc.Sales(c.Request.Context(), service.ReportRange{From: from, To: to})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportsHandler) Inventory(c *gin.Context) {
	var q dto.StockListQuery
	if !bindQuery(c, &q) {
		return
	}
	report, err := h.svc.Inventory(c.Request.Context(), q.Threshold)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
