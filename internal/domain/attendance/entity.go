package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DayType classifies a calendar day for overtime purposes.
type DayType string

const (
	DayTypeNormal            DayType = "Normal"
	DayTypeSunday            DayType = "Sunday"
	DayTypeMercantileHoliday DayType = "MercantileHoliday"
)

// IsHoliday reports whether hours on this day accrue at the holiday OT rate.
func (d DayType) IsHoliday() bool {
	return d == DayTypeSunday || d == DayTypeMercantileHoliday
}

func (d DayType) IsValid() bool {
	switch d {
	case DayTypeNormal, DayTypeSunday, DayTypeMercantileHoliday:
		return true
	}
	return false
}

type Status string

const (
	StatusPresent     Status = "Present"
	StatusAnnualLeave Status = "Annual Leave"
	StatusSickLeave   Status = "Sick Leave"
	StatusNoPay       Status = "No Pay"
)

// StandardWorkingHours is the daily threshold after which normal-day hours
// count as overtime.
var StandardWorkingHours = decimal.NewFromInt(8)

// CycleEndDay is the day of month on which every pay cycle closes.
const CycleEndDay = 21

const dateLayout = "2006-01-02"

// DailyRecord is one attendance entry as captured by the attendance service.
type DailyRecord struct {
	EmployeeID   string
	Date         time.Time
	DayType      DayType
	Status       Status
	WorkingHours decimal.Decimal
}

// PayPeriod identifies one pay cycle. StartDate and EndDate are opaque to the
// calculator and only carried through to records and payslips.
type PayPeriod struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// NewPayPeriod derives the cycle ending on the 21st of the given month and
// starting on the 22nd of the month before.
func NewPayPeriod(year, month int) (PayPeriod, error) {
	if month < 1 || month > 12 {
		return PayPeriod{}, ErrInvalidPeriod
	}
	end := time.Date(year, time.Month(month), CycleEndDay, 0, 0, 0, 0, time.UTC)
	start := time.Date(year, time.Month(month)-1, CycleEndDay+1, 0, 0, 0, 0, time.UTC)
	return PayPeriod{
		Year:      year,
		Month:     month,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
	}, nil
}

// Bounds returns the inclusive start and end dates of the cycle.
func (p PayPeriod) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, p.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse period start: %w", err)
	}
	end, err := time.Parse(dateLayout, p.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse period end: %w", err)
	}
	return start, end, nil
}

// Label renders the period as YYYY-MM.
func (p PayPeriod) Label() string {
	return fmt.Sprintf("%d-%02d", p.Year, p.Month)
}

// Totals is the immutable attendance snapshot for one employee and period.
type Totals struct {
	WorkingHours    decimal.Decimal `json:"workingHours"`
	OTHours         decimal.Decimal `json:"otHours"`
	NormalOTHours   decimal.Decimal `json:"normalOtHours"`
	HolidayOTHours  decimal.Decimal `json:"holidayOtHours"`
	AnnualLeaveDays decimal.Decimal `json:"annualLeaveDays"`
	SickLeaveDays   decimal.Decimal `json:"sickLeaveDays"`
	NoPayDays       decimal.Decimal `json:"noPayDays"`
	NoPayDeduction  decimal.Decimal `json:"noPayDeduction"`
}
