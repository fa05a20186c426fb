package v1

import (
	"net/http"

	"zonepilot-backend/internal/usecase"
	"zonepilot-backend/pkg/utils"
)

type AuditHandler struct {
	recorder *usecase.Recorder
}

func NewAuditHandler(recorder *usecase.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// List handles GET /audit?limit=N&entity_type=ZONE|PRICING
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 50)
	entityType := r.URL.Query().Get("entity_type")

	entries, err := h.recorder.ListAudit(r.Context(), limit, entityType)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}
