package attendance

import "context"

// Aggregator supplies the attendance snapshot for an employee and pay cycle.
type Aggregator interface {
	GetTotals(ctx context.Context, employeeID string, year, month int) (PayPeriod, Totals, error)
}
