package rbac

// Permissions for plan and task operations.
const (
	// Admin-only operations.
	PermissionCreatePlan = "plan:create"
	PermissionUpdatePlan = "plan:update"
	PermissionDeletePlan = "plan:delete"
	PermissionPlanStatus = "plan:status"
	PermissionCreateTask = "task:create"
	PermissionDeleteTask = "task:delete"
	PermissionDashboard  = "dashboard:read"
	PermissionListUsers  = "users:list"

	// Member operations.
	PermissionReadPlan      = "plan:read"
	PermissionReadTask      = "task:read"
	PermissionUpdateTask    = "task:update"
	PermissionTaskStatus    = "task:status"
	PermissionTaskChecklist = "task:checklist"
	PermissionUserDashboard = "dashboard:read_own"
	PermissionNotifications = "notifications:read"
)

// Roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

var rolePermissions = map[string][]string{
	RoleMember: {
		PermissionReadPlan,
		PermissionReadTask,
		PermissionUpdateTask,
		PermissionTaskStatus,
		PermissionTaskChecklist,
		PermissionUserDashboard,
		PermissionNotifications,
	},
	RoleAdmin: {
		PermissionCreatePlan,
		PermissionUpdatePlan,
		PermissionDeletePlan,
		PermissionPlanStatus,
		PermissionCreateTask,
		PermissionDeleteTask,
		PermissionDashboard,
		PermissionListUsers,
		PermissionReadPlan,
		PermissionReadTask,
		PermissionUpdateTask,
		PermissionTaskStatus,
		PermissionTaskChecklist,
		PermissionUserDashboard,
		PermissionNotifications,
	},
}

// HasPermission checks whether a role grants the given permission.
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission returns a typed error instead of a boolean.
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError reports a role lacking a permission.
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
