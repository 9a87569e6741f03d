package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"github.com/manv6/trumps-dashboard/internal/services"
)

type MetricsHandler struct {
	metrics *services.Metrics
}

func NewMetricsHandler(metrics *services.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// HandleMetrics serves a JSON snapshot of hub metrics.
func (h *MetricsHandler) HandleMetrics(re *core.RequestEvent) error {
	return re.JSON(http.StatusOK, h.metrics.Snapshot())
}
