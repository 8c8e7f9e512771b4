package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeriveDayType is the default classification of a date: Sundays are holiday
// days, everything else is a normal working day.
func DeriveDayType(date time.Time) DayType {
	if date.Weekday() == time.Sunday {
		return DayTypeSunday
	}
	return DayTypeNormal
}

// HolidayCalendar lists designated mercantile holidays by YYYY-MM-DD.
type HolidayCalendar map[string]struct{}

func NewHolidayCalendar(dates ...time.Time) HolidayCalendar {
	c := make(HolidayCalendar, len(dates))
	for _, d := range dates {
		c[d.Format(dateLayout)] = struct{}{}
	}
	return c
}

// DayTypeOf classifies date, preferring a listed mercantile holiday over the
// weekday rule.
func (c HolidayCalendar) DayTypeOf(date time.Time) DayType {
	if _, ok := c[date.Format(dateLayout)]; ok {
		return DayTypeMercantileHoliday
	}
	return DeriveDayType(date)
}

// Aggregate folds daily records into cycle totals. Normal-day hours beyond
// StandardWorkingHours are normal OT; every hour worked on a Sunday or
// mercantile holiday is holiday OT.
func Aggregate(records []DailyRecord, noPayDayValue decimal.Decimal) Totals {
	t := Totals{
		WorkingHours:    decimal.Zero,
		OTHours:         decimal.Zero,
		NormalOTHours:   decimal.Zero,
		HolidayOTHours:  decimal.Zero,
		AnnualLeaveDays: decimal.Zero,
		SickLeaveDays:   decimal.Zero,
		NoPayDays:       decimal.Zero,
		NoPayDeduction:  decimal.Zero,
	}
	one := decimal.NewFromInt(1)

	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			hours := r.WorkingHours
			if hours.IsNegative() {
				hours = decimal.Zero
			}
			t.WorkingHours = t.WorkingHours.Add(hours)
			if r.DayType.IsHoliday() {
				t.HolidayOTHours = t.HolidayOTHours.Add(hours)
			} else if hours.GreaterThan(StandardWorkingHours) {
				t.NormalOTHours = t.NormalOTHours.Add(hours.Sub(StandardWorkingHours))
			}
		case StatusAnnualLeave:
			t.AnnualLeaveDays = t.AnnualLeaveDays.Add(one)
		case StatusSickLeave:
			t.SickLeaveDays = t.SickLeaveDays.Add(one)
		case StatusNoPay:
			t.NoPayDays = t.NoPayDays.Add(one)
		}
	}

	t.OTHours = t.NormalOTHours.Add(t.HolidayOTHours)
	t.NoPayDeduction = t.NoPayDays.Mul(noPayDayValue).Round(2)
	return t
}
