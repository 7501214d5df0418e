package domain

// Role is the caller-supplied role label of an authenticated principal.
// Roles are a closed set for clearance purposes; unrecognized labels floor
// to the internal clearance rather than failing open or closed arbitrarily.
type Role string

const (
	RoleSuperadmin     Role = "superadmin"
	RoleCompanyManager Role = "company_manager"
	RoleSalesManager   Role = "sales_manager"
	RoleSalesExecutive Role = "sales_executive"
)

// ClearanceTable maps roles to clearance levels. It is injected as
// configuration so deployments can tighten or loosen the mapping without
// touching call sites.
type ClearanceTable map[Role]SecurityLevel

// DefaultClearanceTable returns the standard role-to-clearance mapping.
func DefaultClearanceTable() ClearanceTable {
	return ClearanceTable{
		RoleSuperadmin:     LevelHighlyConfidential,
		RoleCompanyManager: LevelRestricted,
		RoleSalesManager:   LevelConfidential,
		RoleSalesExecutive: LevelInternal,
	}
}

// ClearanceFor resolves a role's clearance. Unrecognized roles get the
// internal floor.
func (t ClearanceTable) ClearanceFor(role Role) SecurityLevel {
	if level, ok := t[role]; ok {
		return level
	}
	return LevelInternal
}

// Principal is an already-authenticated caller. Authentication itself is an
// external concern; this core only consumes the resulting identity.
type Principal struct {
	UserID    UserID
	CompanyID CompanyID
	Role      Role
}
