package auth

type Role string

const (
	RoleAdmin    Role = "admin"    // Can compute, finalize and export payroll
	RoleManager  Role = "manager"  // Read-only access to payroll history
	RoleEmployee Role = "employee" // Regular employee
)

// Actor is the authentication context passed explicitly into every engine
// call. It replaces any ambient session or token state.
type Actor struct {
	UserID string
	Role   Role
}

// CanManagePayroll reports whether the actor may preview, finalize or export.
func (a Actor) CanManagePayroll() bool {
	return a.Role == RoleAdmin
}

// CanViewPayroll reports whether the actor may read payroll history.
func (a Actor) CanViewPayroll() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// RequireManage returns an error unless the actor may manage payroll.
func (a Actor) RequireManage() error {
	if a.UserID == "" {
		return ErrMissingActor
	}
	if !a.CanManagePayroll() {
		return ErrForbidden
	}
	return nil
}

// RequireView returns an error unless the actor may read payroll history.
func (a Actor) RequireView() error {
	if a.UserID == "" {
		return ErrMissingActor
	}
	if !a.CanViewPayroll() {
		return ErrForbidden
	}
	return nil
}
