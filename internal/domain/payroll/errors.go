package payroll

import "errors"

var (
	// ErrUpstreamFetch wraps failures of the employee, attendance or history
	// collaborators.
	ErrUpstreamFetch = errors.New("failed to fetch payroll inputs")
	// ErrComputationInconsistency means a compute result lacked its employee or
	// payroll payload.
	ErrComputationInconsistency = errors.New("payroll result is incomplete")
	// ErrPersistence means a finalize call did not save the cycle.
	ErrPersistence = errors.New("failed to save payroll cycle")

	ErrCycleNotFound     = errors.New("payroll cycle not found")
	ErrNoEmployeeChosen  = errors.New("no employee selected")
	ErrNothingToFinalize = errors.New("no computed payroll to finalize")
	ErrPDFUnavailable    = errors.New("pdf rendering is not configured")
	ErrUnsupportedFormat = errors.New("unsupported payslip format")
)
