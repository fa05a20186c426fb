package domain

import "errors"

// Error kinds surfaced to callers. Handlers map these to HTTP statuses
// with errors.Is, so usecases wrap them with context via fmt.Errorf("%w").
var (
	// ErrNotFound covers lookups of entities that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownWarehouse means the referenced warehouse does not exist or
	// is inactive.
	ErrUnknownWarehouse = errors.New("unknown or inactive warehouse")

	// ErrInvalidPolygon means the ring is unclosed, degenerate, or has
	// fewer than 3 distinct vertices after closing.
	ErrInvalidPolygon = errors.New("invalid polygon ring")

	// ErrInvalidRange means max_km <= min_km or a negative fee.
	ErrInvalidRange = errors.New("invalid slab range")

	// ErrInvalidGeoJSON means a malformed FeatureCollection or a
	// non-Polygon feature; the whole import is rejected.
	ErrInvalidGeoJSON = errors.New("invalid GeoJSON payload")

	// ErrInvalidDistance marks a negative/NaN distance reaching the
	// pricing resolver. A contract violation, not a caller error.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrVersionConflict is the race on version-number assignment. The
	// recorder retries internally before surfacing it.
	ErrVersionConflict = errors.New("concurrent version conflict")

	// ErrInvalidDestination covers out-of-range or NaN destination
	// coordinates on a quote request.
	ErrInvalidDestination = errors.New("invalid destination coordinates")

	// ErrInvalidWarehouse covers a warehouse payload with a blank name or
	// out-of-range origin coordinates.
	ErrInvalidWarehouse = errors.New("invalid warehouse")

	// ErrInvalidCredentials covers failed logins.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken covers duplicate registration.
	ErrEmailTaken = errors.New("email already registered")
)
