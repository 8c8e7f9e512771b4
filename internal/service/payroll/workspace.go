package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Workspace is the editing session for one employee and period. It owns the
// draft line items and walks Idle -> Loaded -> Finalized. A Workspace is not
// safe for concurrent use.
type Workspace struct {
	engine payroll.PayrollService
	actor  auth.Actor

	employeeID string
	year       int
	month      int
	incentive  decimal.Decimal
	allowances []payroll.LineItemRow
	deductions []payroll.LineItemRow

	state      payroll.State
	result     *payroll.ComputeResult
	history    []payroll.CycleRecord
	historyErr error
}

func NewWorkspace(engine payroll.PayrollService, actor auth.Actor) *Workspace {
	return &Workspace{
		engine: engine,
		actor:  actor,
		state:  payroll.StateIdle,
	}
}

// Select chooses the employee and period. Changing either discards the
// drafts and the last result.
func (w *Workspace) Select(employeeID string, year, month int) {
	if employeeID == w.employeeID && year == w.year && month == w.month {
		return
	}
	w.employeeID = employeeID
	w.year = year
	w.month = month
	w.incentive = decimal.Zero
	w.allowances = nil
	w.deductions = nil
	w.result = nil
	w.history = nil
	w.historyErr = nil
	w.state = payroll.StateIdle
}

func (w *Workspace) SetIncentive(v decimal.Decimal) {
	w.incentive = v
}

func (w *Workspace) AddAllowance() string {
	w.allowances = AddRow(w.allowances)
	return w.allowances[len(w.allowances)-1].ID
}

func (w *Workspace) UpdateAllowance(id string, field payroll.LineItemField, value string) {
	w.allowances = UpdateRow(w.allowances, id, field, value)
}

func (w *Workspace) RemoveAllowance(id string) {
	w.allowances = RemoveRow(w.allowances, id)
}

func (w *Workspace) AddDeduction() string {
	w.deductions = AddRow(w.deductions)
	return w.deductions[len(w.deductions)-1].ID
}

func (w *Workspace) UpdateDeduction(id string, field payroll.LineItemField, value string) {
	w.deductions = UpdateRow(w.deductions, id, field, value)
}

func (w *Workspace) RemoveDeduction(id string) {
	w.deductions = RemoveRow(w.deductions, id)
}

func (w *Workspace) Allowances() []payroll.LineItemRow {
	return append([]payroll.LineItemRow(nil), w.allowances...)
}

func (w *Workspace) Deductions() []payroll.LineItemRow {
	return append([]payroll.LineItemRow(nil), w.deductions...)
}

// AllowanceTotal is the live total shown under the allowance rows.
func (w *Workspace) AllowanceTotal() decimal.Decimal {
	return Total(w.allowances)
}

// DeductionTotal is the live total shown under the deduction rows.
func (w *Workspace) DeductionTotal() decimal.Decimal {
	return Total(w.deductions)
}

// Preview computes without persisting and moves the workspace to Loaded. On
// error the drafts and the previous result are kept.
func (w *Workspace) Preview(ctx context.Context) (payroll.ComputeResult, error) {
	return w.compute(ctx, false)
}

// Finalize persists the cycle. It needs a preview first and returns
// ErrNothingToFinalize from Idle. Finalizing the same inputs again is a no-op
// for the stored record. History is refreshed afterwards; a refresh failure
// is exposed through HistoryError and does not fail the finalize.
func (w *Workspace) Finalize(ctx context.Context) (payroll.ComputeResult, error) {
	if w.employeeID != "" && w.state == payroll.StateIdle {
		return payroll.ComputeResult{}, payroll.ErrNothingToFinalize
	}
	result, err := w.compute(ctx, true)
	if err != nil {
		return payroll.ComputeResult{}, err
	}
	w.RefreshHistory(ctx)
	return result, nil
}

func (w *Workspace) compute(ctx context.Context, finalize bool) (payroll.ComputeResult, error) {
	if w.employeeID == "" {
		return payroll.ComputeResult{}, validator.ValidationErrors{{Field: "employee_id", Message: payroll.ErrNoEmployeeChosen.Error()}}
	}

	result, err := w.engine.Compute(ctx, w.actor, w.request(finalize))
	if err != nil {
		return payroll.ComputeResult{}, err
	}
	if err := result.Check(); err != nil {
		return payroll.ComputeResult{}, err
	}

	w.allowances = SeedRows(result.Payroll.CustomAllowances)
	w.deductions = SeedRows(result.Payroll.CustomDeductions)
	w.incentive = result.Payroll.Incentive
	w.result = &result
	if result.Finalized {
		w.state = payroll.StateFinalized
	} else {
		w.state = payroll.StateLoaded
	}
	return result, nil
}

func (w *Workspace) request(finalize bool) payroll.ComputeRequest {
	return payroll.ComputeRequest{
		EmployeeID: w.employeeID,
		Year:       w.year,
		Month:      w.month,
		Incentive:  w.incentive,
		Allowances: ToClean(w.allowances),
		Deductions: ToClean(w.deductions),
		Finalize:   finalize,
	}
}

// RefreshHistory reloads the finalized cycles of the selected employee.
func (w *Workspace) RefreshHistory(ctx context.Context) {
	if w.employeeID == "" {
		return
	}
	records, err := w.engine.ListCycles(ctx, w.actor, w.employeeID)
	if err != nil {
		w.historyErr = err
		return
	}
	w.history = records
	w.historyErr = nil
}

// OpenCycle loads a past cycle into the workspace as a preview of its period.
func (w *Workspace) OpenCycle(ctx context.Context, year, month int) (payroll.ComputeResult, error) {
	if w.employeeID == "" {
		return payroll.ComputeResult{}, validator.ValidationErrors{{Field: "employee_id", Message: payroll.ErrNoEmployeeChosen.Error()}}
	}
	result, err := w.engine.LoadCycleDetail(ctx, w.actor, w.employeeID, year, month, nil)
	if err != nil {
		return payroll.ComputeResult{}, err
	}
	if err := result.Check(); err != nil {
		return payroll.ComputeResult{}, err
	}

	history, historyErr := w.history, w.historyErr
	w.Select(w.employeeID, year, month)
	w.history, w.historyErr = history, historyErr
	w.allowances = SeedRows(result.Payroll.CustomAllowances)
	w.deductions = SeedRows(result.Payroll.CustomDeductions)
	w.incentive = result.Payroll.Incentive
	w.result = &result
	w.state = payroll.StateLoaded
	return result, nil
}

func (w *Workspace) State() payroll.State {
	return w.state
}

// Result returns the last successful compute, or nil.
func (w *Workspace) Result() *payroll.ComputeResult {
	return w.result
}

func (w *Workspace) History() []payroll.CycleRecord {
	return w.history
}

func (w *Workspace) HistoryError() error {
	return w.historyErr
}
