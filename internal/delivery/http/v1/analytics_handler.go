package v1

import (
	"net/http"

	"zonepilot-backend/internal/usecase"
	"zonepilot-backend/pkg/utils"
)

type AnalyticsHandler struct {
	analyticsUC *usecase.AnalyticsUsecase
}

func NewAnalyticsHandler(analyticsUC *usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsUC: analyticsUC}
}

// Summary handles GET /analytics/summary?warehouse_id=N
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	warehouseID := utils.ParseInt64(r.URL.Query().Get("warehouse_id"), 0)
	if warehouseID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "warehouse_id is required")
		return
	}

	summary, err := h.analyticsUC.Summary(r.Context(), warehouseID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

// RecentQuotes handles GET /analytics/recent-quotes?limit=N&warehouse_id=N
func (h *AnalyticsHandler) RecentQuotes(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)

	var warehouseID *int64
	if raw := r.URL.Query().Get("warehouse_id"); raw != "" {
		id := utils.ParseInt64(raw, 0)
		if id == 0 {
			utils.WriteError(w, http.StatusBadRequest, "invalid warehouse_id")
			return
		}
		warehouseID = &id
	}

	quotes, err := h.analyticsUC.RecentQuotes(r.Context(), limit, warehouseID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quotes)
}
