package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// DefaultEPFRate is the statutory EPF share deducted from full salary.
var DefaultEPFRate = decimal.RequireFromString("0.12")

// CalculatorInput carries everything the calculator needs. Rates and the
// no-pay deduction are supplied by the directory and attendance services.
type CalculatorInput struct {
	BaseSalary     decimal.Decimal
	NormalOTHours  decimal.Decimal
	NormalOTRate   decimal.Decimal
	HolidayOTHours decimal.Decimal
	HolidayOTRate  decimal.Decimal
	NoPayDeduction decimal.Decimal
	Incentive      decimal.Decimal
	Allowances     []payroll.LineItem
	Deductions     []payroll.LineItem
	EPFRate        decimal.Decimal
}

// Calculate produces the breakdown. It is pure: no I/O and no clock. A
// negative full salary is returned as-is, never floored.
func Calculate(in CalculatorInput) payroll.Breakdown {
	normalOTPay := money.RoundMoney(in.NormalOTHours.Mul(in.NormalOTRate))
	holidayOTPay := money.RoundMoney(in.HolidayOTHours.Mul(in.HolidayOTRate))
	otPay := normalOTPay.Add(holidayOTPay)

	allowances := cloneItems(in.Allowances)
	deductions := cloneItems(in.Deductions)

	baseSalary := money.RoundMoney(in.BaseSalary)
	incentive := money.RoundMoney(in.Incentive)
	noPay := money.RoundMoney(in.NoPayDeduction)

	fullSalary := baseSalary.
		Add(otPay).
		Add(incentive).
		Add(sumItems(allowances)).
		Sub(noPay).
		Sub(sumItems(deductions))

	epfDeduction := money.RoundMoney(fullSalary.Mul(in.EPFRate))

	return payroll.Breakdown{
		BaseSalary:       baseSalary,
		NormalOTHours:    in.NormalOTHours,
		NormalOTRate:     in.NormalOTRate,
		NormalOTPay:      normalOTPay,
		HolidayOTHours:   in.HolidayOTHours,
		HolidayOTRate:    in.HolidayOTRate,
		HolidayOTPay:     holidayOTPay,
		OTPay:            otPay,
		NoPayDeduction:   noPay,
		Incentive:        incentive,
		CustomAllowances: allowances,
		CustomDeductions: deductions,
		FullSalary:       fullSalary,
		EPFRate:          in.EPFRate,
		EPFDeduction:     epfDeduction,
		NetSalary:        fullSalary.Sub(epfDeduction),
	}
}

func sumItems(items []payroll.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Amount)
	}
	return sum
}

func cloneItems(items []payroll.LineItem) []payroll.LineItem {
	out := make([]payroll.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, payroll.LineItem{Label: item.Label, Amount: money.RoundMoney(item.Amount)})
	}
	return out
}
