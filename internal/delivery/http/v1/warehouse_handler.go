package v1

import (
	"net/http"

	"zonepilot-backend/internal/usecase"
	"zonepilot-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type WarehouseHandler struct {
	warehouseUC *usecase.WarehouseUsecase
}

func NewWarehouseHandler(warehouseUC *usecase.WarehouseUsecase) *WarehouseHandler {
	return &WarehouseHandler{warehouseUC: warehouseUC}
}

// List handles GET /warehouses
func (h *WarehouseHandler) List(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.warehouseUC.List(r.Context())
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, warehouses)
}

// Create handles POST /warehouses
func (h *WarehouseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	warehouse, err := h.warehouseUC.Create(r.Context(), req)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, warehouse)
}
