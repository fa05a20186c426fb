package v1

import (
	"net/http"
	"strconv"

	"zonepilot-backend/internal/domain"
	"zonepilot-backend/internal/usecase"
	"zonepilot-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type PricingHandler struct {
	pricingUC *usecase.PricingUsecase
	recorder  *usecase.Recorder
}

func NewPricingHandler(pricingUC *usecase.PricingUsecase, recorder *usecase.Recorder) *PricingHandler {
	return &PricingHandler{pricingUC: pricingUC, recorder: recorder}
}

// ListSlabs handles GET /pricing?warehouse_id=N
func (h *PricingHandler) ListSlabs(w http.ResponseWriter, r *http.Request) {
	warehouseID := utils.ParseInt64(r.URL.Query().Get("warehouse_id"), 0)
	if warehouseID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "warehouse_id is required")
		return
	}

	slabs, err := h.pricingUC.ListSlabs(r.Context(), warehouseID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, slabs)
}

// CreateSlab handles POST /pricing
func (h *PricingHandler) CreateSlab(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateSlabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	slab, err := h.pricingUC.CreateSlab(r.Context(), req, actorID(r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, slab)
}

// UpdateSlab handles PATCH /pricing/{id}
func (h *PricingHandler) UpdateSlab(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid slab id")
		return
	}

	var req usecase.CreateSlabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	slab, uerr := h.pricingUC.UpdateSlab(r.Context(), id, req, actorID(r))
	if uerr != nil {
		writeUsecaseError(w, r, uerr)
		return
	}
	utils.WriteJSON(w, http.StatusOK, slab)
}

// DisableSlab handles DELETE /pricing/{id}
func (h *PricingHandler) DisableSlab(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid slab id")
		return
	}

	slab, uerr := h.pricingUC.DisableSlab(r.Context(), id, actorID(r))
	if uerr != nil {
		writeUsecaseError(w, r, uerr)
		return
	}
	utils.WriteJSON(w, http.StatusOK, slab)
}

// ListVersions handles GET /pricing/versions?page=N&slab_id=N
func (h *PricingHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	filter := domain.VersionFilter{
		Page:  utils.ParseInt(r.URL.Query().Get("page"), 1),
		Limit: utils.ParseInt(r.URL.Query().Get("limit"), 20),
	}
	if raw := r.URL.Query().Get("slab_id"); raw != "" {
		slabID := utils.ParseInt64(raw, 0)
		if slabID == 0 {
			utils.WriteError(w, http.StatusBadRequest, "invalid slab_id")
			return
		}
		filter.SlabID = &slabID
	}

	versions, err := h.recorder.ListPricingVersions(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, versions)
}
