package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agoodis/product-management-system/internal/apierror"
	"github.com/agoodis/product-management-system/internal/service"
	"github.com/agoodis/product-management-system/internal/worker"
)

type CalculationsHandler struct {
	svc          service.CalculationService
	dispatcher   *worker.Dispatcher
	lowStockLine int
}

// NewCalculationsHandler builds the calculation endpoints. lowStockLine is
// the stock threshold used when the low-stock request does not carry one;
// non-positive values fall back to 5.
func NewCalculationsHandler(svc service.CalculationService, dispatcher *worker.Dispatcher, lowStockLine int) *CalculationsHandler {
	if lowStockLine < 1 {
		lowStockLine = 5
	}
	return &CalculationsHandler{svc: svc, dispatcher: dispatcher, lowStockLine: lowStockLine}
}

// Recalculate enqueues a full asynchronous recalculation sweep:
// POST /v1/calculations/recalculate.
func (h *CalculationsHandler) Recalculate(c *gin.Context) {
	if err := h.dispatcher.EnqueueRecalc(c.Request.Context()); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to enqueue recalculation"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// LowStock reports products at or below the stock threshold:
// GET /v1/calculations/low-stock?threshold=5.
func (h *CalculationsHandler) LowStock(c *gin.Context) {
	threshold, err := strconv.Atoi(c.DefaultQuery("threshold", strconv.Itoa(h.lowStockLine)))
	if err != nil || threshold < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("threshold must be a positive integer"))
		return
	}
	items, err := h.svc.LowStock(c.Request.Context(), threshold)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to build low stock report"))
		return
	}
	c.JSON(http.StatusOK, items)
}
