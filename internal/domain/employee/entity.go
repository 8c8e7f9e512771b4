package employee

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Employee is the directory view the payroll engine reads. Rates are policy
// attributes owned by the directory service, not computed here.
type Employee struct {
	ID            string
	FirstName     string
	LastName      string
	Role          string
	BaseSalary    decimal.Decimal
	NormalOTRate  decimal.Decimal
	HolidayOTRate decimal.Decimal
	NoPayDayValue decimal.Decimal
}

// FullName joins first and last name, skipping blanks.
func (e Employee) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}
