package payroll

import "context"

// CycleRepository is the authoritative ledger of finalized payroll cycles.
type CycleRepository interface {
	// UpsertCycle stores the record, replacing any existing record for the same
	// employee, year and month.
	UpsertCycle(ctx context.Context, record CycleRecord) (CycleRecord, error)
	GetCycle(ctx context.Context, employeeID string, year, month int) (CycleRecord, error)
	// ListCycles returns the employee's cycles, newest first.
	ListCycles(ctx context.Context, employeeID string) ([]CycleRecord, error)
}
