package v1

import (
	"net/http"

	"zonepilot-backend/internal/usecase"
	"zonepilot-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type QuoteHandler struct {
	quoteUC *usecase.QuoteUsecase
}

func NewQuoteHandler(quoteUC *usecase.QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{quoteUC: quoteUC}
}

type quoteRequest struct {
	WarehouseID int64   `json:"warehouseId"`
	DestLat     float64 `json:"destLat"`
	DestLng     float64 `json:"destLng"`
}

// GetQuote handles POST /quote
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.quoteUC.GetQuote(r.Context(), req.WarehouseID, req.DestLat, req.DestLng)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quote)
}
