package domain

// Version / audit action kinds
const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDisable = "DISABLE"
	ActionImport  = "IMPORT"
	ActionExport  = "EXPORT"
)

// Audited entity types
const (
	EntityZone    = "ZONE"
	EntityPricing = "PRICING"
)

// User roles
const (
	RoleAdmin = "admin"
)

// List exports for API
var Actions = []string{
	ActionCreate,
	ActionUpdate,
	ActionDisable,
	ActionImport,
	ActionExport,
}

var EntityTypes = []string{
	EntityZone,
	EntityPricing,
}
