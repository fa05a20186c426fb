package v1

import (
	"net/http"
	"strconv"

	"zonepilot-backend/internal/usecase"
	"zonepilot-backend/pkg/geojson"
	"zonepilot-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type ZoneHandler struct {
	zoneUC   *usecase.ZoneUsecase
	recorder *usecase.Recorder
}

func NewZoneHandler(zoneUC *usecase.ZoneUsecase, recorder *usecase.Recorder) *ZoneHandler {
	return &ZoneHandler{zoneUC: zoneUC, recorder: recorder}
}

// ListZones handles GET /zones?warehouse_id=N
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	warehouseID := utils.ParseInt64(r.URL.Query().Get("warehouse_id"), 0)
	if warehouseID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "warehouse_id is required")
		return
	}

	zones, err := h.zoneUC.ListZones(r.Context(), warehouseID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, zones)
}

// CreateZone handles POST /zones
func (h *ZoneHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone, err := h.zoneUC.CreateZone(r.Context(), req, actorID(r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, zone)
}

// UpdateZone handles PATCH /zones/{id}
func (h *ZoneHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	var req usecase.CreateZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone, uerr := h.zoneUC.UpdateZone(r.Context(), id, req, actorID(r))
	if uerr != nil {
		writeUsecaseError(w, r, uerr)
		return
	}
	utils.WriteJSON(w, http.StatusOK, zone)
}

// DisableZone handles DELETE /zones/{id}
func (h *ZoneHandler) DisableZone(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	zone, uerr := h.zoneUC.DisableZone(r.Context(), id, actorID(r))
	if uerr != nil {
		writeUsecaseError(w, r, uerr)
		return
	}
	utils.WriteJSON(w, http.StatusOK, zone)
}

// ListVersions handles GET /zones/{id}/versions
func (h *ZoneHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	versions, uerr := h.recorder.ListZoneVersions(r.Context(), id)
	if uerr != nil {
		writeUsecaseError(w, r, uerr)
		return
	}
	utils.WriteJSON(w, http.StatusOK, versions)
}

// ExportGeoJSON handles GET /zones/export?warehouse_id=N
func (h *ZoneHandler) ExportGeoJSON(w http.ResponseWriter, r *http.Request) {
	warehouseID := utils.ParseInt64(r.URL.Query().Get("warehouse_id"), 0)
	if warehouseID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "warehouse_id is required")
		return
	}

	fc, err := h.zoneUC.ExportGeoJSON(r.Context(), warehouseID, actorID(r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, fc)
}

type importRequest struct {
	WarehouseID int64                     `json:"warehouseId"`
	Overwrite   bool                      `json:"overwrite"`
	GeoJSON     geojson.FeatureCollection `json:"geojson"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

// ImportGeoJSON handles POST /zones/import
func (h *ZoneHandler) ImportGeoJSON(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.zoneUC.ImportGeoJSON(r.Context(), req.WarehouseID, req.GeoJSON, req.Overwrite, actorID(r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, importResponse{Imported: count})
}
