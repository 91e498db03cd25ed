package policy

import "trustmark-hq/polaris/pkg/catalog"

// roleProfiles is the fixed role configuration table, initialized once and
// treated as immutable for the process lifetime.
var roleProfiles = map[string]RoleProfile{
	"branch_manager":     {Level: 1, CanExport: false, MaxSensitivity: catalog.SensitivityLow},
	"risk_officer":       {Level: 2, CanExport: true, MaxSensitivity: catalog.SensitivityMed},
	"compliance_officer": {Level: 3, CanExport: true, MaxSensitivity: catalog.SensitivityHigh},
	"auditor":            {Level: 4, CanExport: true, MaxSensitivity: catalog.SensitivityHigh},
	"data_analyst":       {Level: 1, CanExport: false, MaxSensitivity: catalog.SensitivityLow},
}

// Profile returns the role profile for a role, if one exists.
func Profile(role string) (RoleProfile, bool) {
	p, ok := roleProfiles[role]
	return p, ok
}

// CanExport reports whether a role is export-eligible. This is independent
// of any per-request decision: a forbid_export constraint can still block
// export for an otherwise eligible role.
func CanExport(role string) bool {
	return roleProfiles[role].CanExport
}

// KnownRoles returns the roles present in the profile table, for diagnostics.
func KnownRoles() []string {
	roles := make([]string, 0, len(roleProfiles))
	for r := range roleProfiles {
		roles = append(roles, r)
	}
	return roles
}
