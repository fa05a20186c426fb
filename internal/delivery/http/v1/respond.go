package v1

import (
	"errors"
	"net/http"

	"zonepilot-backend/internal/domain"
	"zonepilot-backend/pkg/logger"
	"zonepilot-backend/pkg/utils"
)

// writeUsecaseError maps domain sentinels onto HTTP statuses. Contract
// violations (invalid distance) and version-assignment exhaustion are
// server-side failures, everything else is the caller's problem.
func writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnknownWarehouse):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidPolygon),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidGeoJSON),
		errors.Is(err, domain.ErrInvalidDestination),
		errors.Is(err, domain.ErrInvalidWarehouse):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		utils.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrVersionConflict):
		logger.WithContext(r.Context()).Error().Err(err).Msg("version conflict exhausted retries")
		utils.WriteError(w, http.StatusServiceUnavailable, "transient conflict, please retry")
	default:
		logger.WithContext(r.Context()).Error().Err(err).Msg("request failed")
		utils.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// actorID pulls the authenticated user's id from context, if any.
func actorID(r *http.Request) *int64 {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok || user == nil {
		return nil
	}
	return &user.ID
}
