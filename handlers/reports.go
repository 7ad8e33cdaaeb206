package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahenya/sales-crm/store"
)

type ReportHandler struct {
	reports *store.ReportStore
}

func NewReportHandler(reports *store.ReportStore) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// TopClients ranks clients by completed-order revenue.
func (h *ReportHandler) TopClients(c *gin.Context) {
	report, err := h.reports.TopClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TopSellers ranks sellers by completed-order revenue.
func (h *ReportHandler) TopSellers(c *gin.Context) {
	report, err := h.reports.TopSellers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
