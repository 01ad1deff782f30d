package accesscontrol

// Key is an opaque permission token compared by exact match. KeyRoot is
// reserved and grants every other key.
type Key string

const (
	KeyRoot Key = "root"

	KeyReadUsers   Key = "read-users"
	KeyCreateUser  Key = "create-user"
	KeyUpdateUser  Key = "update-user"
	KeyDeleteUser  Key = "delete-user"

	KeyReadDepartments             Key = "read-departments"
	KeyCreateDepartment            Key = "create-department"
	KeyUpdateDepartment            Key = "update-department"
	KeyDeleteDepartment            Key = "delete-department"
	KeyManageDepartmentHierarchy   Key = "manage-department-hierarchy"
	KeyManageDepartmentUsers       Key = "manage-department-users"
	KeyManageDepartmentPermissions Key = "manage-department-permissions"

	KeyReadSites  Key = "read-sites"
	KeyCreateSite Key = "create-site"
	KeyUpdateSite Key = "update-site"
	KeyDeleteSite Key = "delete-site"

	KeyReadGroups              Key = "read-groups"
	KeyCreateGroup             Key = "create-group"
	KeyUpdateGroup             Key = "update-group"
	KeyDeleteGroup             Key = "delete-group"
	KeyManageGroupMembers      Key = "manage-group-members"
	KeyManageGroupResponsibles Key = "manage-group-responsibles"

	KeyReadPermissions  Key = "read-permissions"
	KeyCreatePermission Key = "create-permission"
	KeyUpdatePermission Key = "update-permission"
	KeyDeletePermission Key = "delete-permission"

	KeyReadRoles  Key = "read-roles"
	KeyCreateRole Key = "create-role"
	KeyUpdateRole Key = "update-role"
	KeyDeleteRole Key = "delete-role"
)

// AllKeys enumerates every key the service wires to an operation, in the
// order they are seeded. KeyRoot is excluded: it is never attached to an
// operation, only to users or roles.
var AllKeys = []Key{
	KeyReadUsers, KeyCreateUser, KeyUpdateUser, KeyDeleteUser,
	KeyReadDepartments, KeyCreateDepartment, KeyUpdateDepartment, KeyDeleteDepartment,
	KeyManageDepartmentHierarchy, KeyManageDepartmentUsers, KeyManageDepartmentPermissions,
	KeyReadSites, KeyCreateSite, KeyUpdateSite, KeyDeleteSite,
	KeyReadGroups, KeyCreateGroup, KeyUpdateGroup, KeyDeleteGroup,
	KeyManageGroupMembers, KeyManageGroupResponsibles,
	KeyReadPermissions, KeyCreatePermission, KeyUpdatePermission, KeyDeletePermission,
	KeyReadRoles, KeyCreateRole, KeyUpdateRole, KeyDeleteRole,
}

// Assignment ties a permission key to a user or role, optionally scoped to a
// single entity. Deny is meaningful on user-level assignments only: it
// suppresses an otherwise-matching direct grant and nothing else.
type Assignment struct {
	Key     Key     `json:"key"`
	ScopeID *string `json:"scope_id,omitempty"`
	Deny    bool    `json:"deny,omitempty"`
}

// Role is the resolver's view of a role: a label and its granted
// assignments. Role assignments carry no deny semantics.
type Role struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Assignments []Assignment `json:"assignments"`
}
