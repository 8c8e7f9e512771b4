package employee

import "context"

// Directory is the read-only employee directory consumed by the payroll engine.
type Directory interface {
	GetByID(ctx context.Context, employeeID string) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
}
