package domain

// protectedRoutes lists the SPA screens that require a signed-in user,
// with the roles allowed to see them. A path also covers its sub-paths
// (e.g. "/admin/flagged" covers "/admin/flagged/42").
var protectedRoutes = []struct {
	path  string
	roles []Role
}{
	{"/seller/dashboard", []Role{RoleSeller}},
	{"/seller/profile", []Role{RoleSeller}},
	{"/seller/products", []Role{RoleSeller}},
	{"/seller/insights", []Role{RoleSeller}},
	{"/seller/settings", []Role{RoleSeller}},

	{"/affiliate/dashboard", []Role{RoleAffiliate}},
	{"/affiliate/profile", []Role{RoleAffiliate}},
	{"/affiliate/products", []Role{RoleAffiliate}},
	{"/affiliate/analytics", []Role{RoleAffiliate}},
	{"/affiliate/links", []Role{RoleAffiliate}},
	{"/affiliate/generate-link", []Role{RoleAffiliate}},
	{"/affiliate/settings", []Role{RoleAffiliate}},

	{"/admin/dashboard", []Role{RoleAdmin}},
	{"/admin/products", []Role{RoleAdmin}},
	{"/admin/users", []Role{RoleAdmin}},
	{"/admin/reports", []Role{RoleAdmin}},
	{"/admin/affiliates", []Role{RoleAdmin}},
	{"/admin/flagged", []Role{RoleAdmin}},
	{"/admin/settings", []Role{RoleAdmin}},
}

// ProtectedRoles returns the roles allowed on path, and false when the path
// is public.
func ProtectedRoles(path string) ([]Role, bool) {
	for _, r := range protectedRoutes {
		if hasSegmentPrefix(path, r.path) {
			out := make([]Role, len(r.roles))
			copy(out, r.roles)
			return out, true
		}
	}
	return nil, false
}
