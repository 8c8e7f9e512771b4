// Package payslip turns a computed payroll into a printable document.
package payslip

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	FallbackAllowanceLabel = "Custom Allowance"
	FallbackDeductionLabel = "Custom Deduction"

	Footer = "This is a system-generated payslip based on the current payroll and attendance records."
)

// Row is one line of a payslip table. Values are preformatted.
type Row struct {
	Label   string
	Value   string
	Strong  bool
	Summary bool
}

// Document is the composed payslip. It holds display strings only, so two
// documents built from the same inputs are identical.
type Document struct {
	Title        string
	Heading      string
	Subheading   string
	EmployeeID   string
	EmployeeName string
	Designation  string
	PayPeriod    string
	Cycle        string
	Earnings     []Row
	Deductions   []Row
	Attendance   []Row
	Signatures   []string
	Footer       string
}

// Compose lays out the payslip. Gross earnings is base + OT + incentive and
// leaves out custom allowances; salary before EPF is the full salary and
// includes them. A nil totals renders zeros.
func Compose(emp employee.Employee, b payroll.Breakdown, period attendance.PayPeriod, totals *attendance.Totals) Document {
	doc := Document{
		Title:        "Payslip - " + emp.ID,
		Heading:      "Pay Slip",
		Subheading:   "Employee Management System",
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName(),
		Designation:  emp.Role,
		Signatures:   []string{"Employee Signature", "Authorized Signature"},
		Footer:       Footer,
	}
	if period.Year != 0 && period.Month != 0 {
		doc.PayPeriod = period.Label()
	}
	if period.StartDate != "" && period.EndDate != "" {
		doc.Cycle = period.StartDate + " to " + period.EndDate
	}

	doc.Earnings = []Row{
		{Label: "Base Salary", Value: money.FormatCurrency(b.BaseSalary)},
		{Label: otLabel("Normal OT", b.NormalOTHours, b.NormalOTRate), Value: money.FormatCurrency(b.NormalOTPay)},
		{Label: otLabel("Holiday OT", b.HolidayOTHours, b.HolidayOTRate), Value: money.FormatCurrency(b.HolidayOTPay)},
		{Label: "Incentive", Value: money.FormatCurrency(b.Incentive)},
	}
	doc.Earnings = append(doc.Earnings, itemRows(b.CustomAllowances, FallbackAllowanceLabel)...)
	doc.Earnings = append(doc.Earnings, Row{
		Label:   "Gross Earnings (Base + OT + Incentive)",
		Value:   money.FormatCurrency(b.GrossEarnings()),
		Summary: true,
	})

	doc.Deductions = []Row{
		{Label: "No Pay Deduction", Value: money.FormatCurrency(b.NoPayDeduction)},
		{Label: "EPF Deduction", Value: money.FormatCurrency(b.EPFDeduction)},
	}
	doc.Deductions = append(doc.Deductions, itemRows(b.CustomDeductions, FallbackDeductionLabel)...)
	doc.Deductions = append(doc.Deductions,
		Row{Label: "Salary Before EPF", Value: money.FormatCurrency(b.FullSalary), Strong: true},
		Row{Label: "Net Salary (Take Home)", Value: money.FormatCurrency(b.NetSalary), Strong: true, Summary: true},
	)

	var t attendance.Totals
	if totals != nil {
		t = *totals
	}
	doc.Attendance = []Row{
		{Label: "Total Working Hours", Value: money.FormatHours(t.WorkingHours)},
		{Label: "Total OT Hours", Value: money.FormatHours(t.OTHours)},
		{Label: "Annual Leave Days", Value: t.AnnualLeaveDays.String()},
		{Label: "Sick Leave Days", Value: t.SickLeaveDays.String()},
		{Label: "No Pay Days", Value: t.NoPayDays.String()},
	}

	return doc
}

func otLabel(name string, hours, rate decimal.Decimal) string {
	return fmt.Sprintf("%s (%s hrs @ %s)", name, money.FormatHours(hours), money.FormatCurrency(rate))
}

func itemRows(items []payroll.LineItem, fallback string) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		label := strings.TrimSpace(item.Label)
		if label == "" {
			label = fallback
		}
		rows = append(rows, Row{Label: label, Value: money.FormatCurrency(item.Amount)})
	}
	return rows
}

// Filename builds payslip-<employeeID>-<yyyy>-<mm>.<ext>.
func Filename(employeeID string, year, month int, ext string) string {
	id := strings.TrimSpace(employeeID)
	if id == "" {
		id = "employee"
	}
	name := fmt.Sprintf("payslip-%s-%04d-%02d", id, year, month)
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}
