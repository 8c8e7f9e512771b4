package payroll

import "github.com/shopspring/decimal"

// LineItemField names the editable columns of a ledger row.
type LineItemField string

const (
	FieldLabel  LineItemField = "label"
	FieldAmount LineItemField = "amount"
)

// LineItemRow is one editable allowance or deduction row. ID only identifies
// the row inside an editing session and is never persisted. Amount holds the
// raw text as typed.
type LineItemRow struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// LineItem is the clean, submitted form of a row.
type LineItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Breakdown is the full computed salary for one employee and period.
type Breakdown struct {
	BaseSalary       decimal.Decimal `json:"baseSalary"`
	NormalOTHours    decimal.Decimal `json:"normalOtHours"`
	NormalOTRate     decimal.Decimal `json:"normalOtRate"`
	NormalOTPay      decimal.Decimal `json:"normalOtPay"`
	HolidayOTHours   decimal.Decimal `json:"holidayOtHours"`
	HolidayOTRate    decimal.Decimal `json:"holidayOtRate"`
	HolidayOTPay     decimal.Decimal `json:"holidayOtPay"`
	OTPay            decimal.Decimal `json:"otPay"`
	NoPayDeduction   decimal.Decimal `json:"noPayDeduction"`
	Incentive        decimal.Decimal `json:"incentive"`
	CustomAllowances []LineItem      `json:"customAllowances"`
	CustomDeductions []LineItem      `json:"customDeductions"`
	FullSalary       decimal.Decimal `json:"fullSalary"`
	EPFRate          decimal.Decimal `json:"epfRate"`
	EPFDeduction     decimal.Decimal `json:"epfDeduction"`
	NetSalary        decimal.Decimal `json:"netSalary"`
}

// GrossEarnings is base + OT + incentive. It deliberately leaves out custom
// allowances and is a different subtotal from FullSalary.
func (b Breakdown) GrossEarnings() decimal.Decimal {
	return b.BaseSalary.Add(b.OTPay).Add(b.Incentive)
}

// CycleRecord is a finalized cycle as held by the authoritative ledger.
// (EmployeeID, Year, Month) is the identity; re-finalizing overwrites.
type CycleRecord struct {
	EmployeeID   string          `json:"employeeId"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	PeriodStart  string          `json:"periodStart"`
	PeriodEnd    string          `json:"periodEnd"`
	Incentive    decimal.Decimal `json:"incentive"`
	FullSalary   decimal.Decimal `json:"fullSalary"`
	EPFDeduction decimal.Decimal `json:"epfDeduction"`
	NetSalary    decimal.Decimal `json:"netSalary"`
	Breakdown    Breakdown       `json:"payroll"`
	FinalizedBy  string          `json:"finalizedBy"`
}

// State is the lifecycle of an employee+period working set.
type State string

const (
	StateIdle      State = "idle"
	StateLoaded    State = "loaded"
	StateFinalized State = "finalized"
)
