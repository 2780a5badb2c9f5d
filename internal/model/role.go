package model

// RoleInfo describes one of the built-in roles
type RoleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Roles lists every role a profile can hold. Roles are fixed; only their grants change.
var Roles = []RoleInfo{
	{Name: RoleAdmin, Description: "Reviews registrations, PIREPs and career requests; manages fleet and reference data"},
	{Name: RolePilot, Description: "Flies careers, files PIREPs and buys type ratings"},
}

// IsKnownRole reports whether name is one of Roles.
func IsKnownRole(name string) bool {
	for _, r := range Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
