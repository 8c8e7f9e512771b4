package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/shopspring/decimal"
)

type PayrollService interface {
	// Compute runs the calculator; req.Finalize additionally persists the cycle.
	Compute(ctx context.Context, actor auth.Actor, req ComputeRequest) (ComputeResult, error)

	// History
	ListCycles(ctx context.Context, actor auth.Actor, employeeID string) ([]CycleRecord, error)
	LoadCycleDetail(ctx context.Context, actor auth.Actor, employeeID string, year, month int, incentive *decimal.Decimal) (ComputeResult, error)
}

type PayslipService interface {
	// Export computes req and renders its payslip.
	Export(ctx context.Context, actor auth.Actor, req ComputeRequest, format PayslipFormat) (Artifact, error)
	// ExportCycle renders the payslip of a finalized cycle.
	ExportCycle(ctx context.Context, actor auth.Actor, employeeID string, year, month int, format PayslipFormat) (Artifact, error)
}
