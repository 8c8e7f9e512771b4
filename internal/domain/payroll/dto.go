package payroll

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== COMPUTE DTOs ==========

type ComputeRequest struct {
	EmployeeID string          `json:"-"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Incentive  decimal.Decimal `json:"incentive"`
	Allowances []LineItem      `json:"allowances"`
	Deductions []LineItem      `json:"deductions"`
	Finalize   bool            `json:"-"`
}

func (r *ComputeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	} else if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "has an invalid format"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 9999"})
	}
	if r.Incentive.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "incentive", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize trims custom row labels and drops rows whose label is blank.
func (r *ComputeRequest) Normalize() {
	r.Allowances = labelledItems(r.Allowances)
	r.Deductions = labelledItems(r.Deductions)
}

func labelledItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		label := strings.TrimSpace(item.Label)
		if label == "" {
			continue
		}
		out = append(out, LineItem{Label: label, Amount: item.Amount})
	}
	return out
}

// ComputeResult is what both preview and finalize return.
type ComputeResult struct {
	Employee  *employee.Employee
	Payroll   *Breakdown
	Period    attendance.PayPeriod
	Totals    attendance.Totals
	Finalized bool
}

// Check reports ErrComputationInconsistency when a payload is missing.
func (r ComputeResult) Check() error {
	if r.Employee == nil {
		return fmt.Errorf("%w: missing employee", ErrComputationInconsistency)
	}
	if r.Payroll == nil {
		return fmt.Errorf("%w: missing payroll", ErrComputationInconsistency)
	}
	return nil
}

type ComputeResponse struct {
	Employee  employee.EmployeeResponse `json:"employee"`
	Payroll   Breakdown                 `json:"payroll"`
	Period    attendance.PayPeriod      `json:"period"`
	Totals    attendance.Totals         `json:"totals"`
	Finalized bool                      `json:"finalized"`
}

func ToComputeResponse(r ComputeResult) (ComputeResponse, error) {
	if err := r.Check(); err != nil {
		return ComputeResponse{}, err
	}
	return ComputeResponse{
		Employee:  employee.ToResponse(*r.Employee),
		Payroll:   *r.Payroll,
		Period:    r.Period,
		Totals:    r.Totals,
		Finalized: r.Finalized,
	}, nil
}

// ========== HISTORY DTOs ==========

// NoHistoryMessage is shown when an employee has no finalized cycles.
const NoHistoryMessage = "No past payroll records found."

type CycleSummary struct {
	EmployeeID   string          `json:"employeeId"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	PeriodStart  string          `json:"periodStart"`
	PeriodEnd    string          `json:"periodEnd"`
	Incentive    decimal.Decimal `json:"incentive"`
	FullSalary   decimal.Decimal `json:"fullSalary"`
	EPFLabel     string          `json:"epfLabel"`
	EPFDeduction decimal.Decimal `json:"epfDeduction"`
	NetSalary    decimal.Decimal `json:"netSalary"`
}

type HistoryResponse struct {
	Payrolls []CycleSummary `json:"payrolls"`
	Message  string         `json:"message,omitempty"`
}

// EPFLabel renders the column header for a rate, e.g. "EPF (12%)".
func EPFLabel(rate decimal.Decimal) string {
	pct := rate.Mul(decimal.NewFromInt(100))
	return "EPF (" + strings.TrimSuffix(pct.String(), ".0") + "%)"
}

func ToHistoryResponse(records []CycleRecord) HistoryResponse {
	resp := HistoryResponse{Payrolls: make([]CycleSummary, 0, len(records))}
	for _, r := range records {
		resp.Payrolls = append(resp.Payrolls, CycleSummary{
			EmployeeID:   r.EmployeeID,
			Year:         r.Year,
			Month:        r.Month,
			PeriodStart:  r.PeriodStart,
			PeriodEnd:    r.PeriodEnd,
			Incentive:    r.Incentive,
			FullSalary:   r.FullSalary,
			EPFLabel:     EPFLabel(r.Breakdown.EPFRate),
			EPFDeduction: r.EPFDeduction,
			NetSalary:    r.NetSalary,
		})
	}
	if len(records) == 0 {
		resp.Message = NoHistoryMessage
	}
	return resp
}

// ========== PAYSLIP DTOs ==========

type PayslipFormat string

const (
	PayslipFormatHTML PayslipFormat = "html"
	PayslipFormatPDF  PayslipFormat = "pdf"
)

func ParsePayslipFormat(s string) (PayslipFormat, error) {
	switch PayslipFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", PayslipFormatHTML:
		return PayslipFormatHTML, nil
	case PayslipFormatPDF:
		return PayslipFormatPDF, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// Artifact is a rendered payslip ready for download or print.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
	Path        string
}
