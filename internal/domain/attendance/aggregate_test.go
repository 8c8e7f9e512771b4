package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestDeriveDayType(t *testing.T) {
	assert.Equal(t, DayTypeSunday, DeriveDayType(day("2024-06-02")))
	assert.Equal(t, DayTypeNormal, DeriveDayType(day("2024-06-03")))
	assert.Equal(t, DayTypeNormal, DeriveDayType(day("2024-06-08")))
}

func TestHolidayCalendar_DayTypeOf(t *testing.T) {
	cal := NewHolidayCalendar(day("2024-06-21"))

	assert.Equal(t, DayTypeMercantileHoliday, cal.DayTypeOf(day("2024-06-21")))
	assert.Equal(t, DayTypeSunday, cal.DayTypeOf(day("2024-06-02")))
	assert.Equal(t, DayTypeNormal, cal.DayTypeOf(day("2024-06-20")))
}

func TestNewPayPeriod(t *testing.T) {
	p, err := NewPayPeriod(2024, 6)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-22", p.StartDate)
	assert.Equal(t, "2024-06-21", p.EndDate)
	assert.Equal(t, "2024-06", p.Label())

	jan, err := NewPayPeriod(2024, 1)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-22", jan.StartDate)
	assert.Equal(t, "2024-01-21", jan.EndDate)

	start, end, err := jan.Bounds()
	require.NoError(t, err)
	assert.True(t, start.Before(end))

	_, err = NewPayPeriod(2024, 13)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestAggregate(t *testing.T) {
	records := []DailyRecord{
		{Date: day("2024-06-03"), DayType: DayTypeNormal, Status: StatusPresent, WorkingHours: decimal.NewFromInt(10)},
		{Date: day("2024-06-04"), DayType: DayTypeNormal, Status: StatusPresent, WorkingHours: decimal.NewFromInt(7)},
		{Date: day("2024-06-05"), DayType: DayTypeNormal, Status: StatusPresent, WorkingHours: decimal.RequireFromString("8.5")},
		{Date: day("2024-06-09"), DayType: DayTypeSunday, Status: StatusPresent, WorkingHours: decimal.NewFromInt(4)},
		{Date: day("2024-06-10"), DayType: DayTypeMercantileHoliday, Status: StatusPresent, WorkingHours: decimal.NewFromInt(3)},
		{Date: day("2024-06-11"), DayType: DayTypeNormal, Status: StatusAnnualLeave},
		{Date: day("2024-06-12"), DayType: DayTypeNormal, Status: StatusSickLeave},
		{Date: day("2024-06-13"), DayType: DayTypeNormal, Status: StatusNoPay},
		{Date: day("2024-06-14"), DayType: DayTypeNormal, Status: StatusNoPay},
	}

	totals := Aggregate(records, decimal.NewFromInt(1500))

	assert.Equal(t, "32.5", totals.WorkingHours.String())
	assert.Equal(t, "2.5", totals.NormalOTHours.String())
	assert.Equal(t, "7", totals.HolidayOTHours.String())
	assert.Equal(t, "9.5", totals.OTHours.String())
	assert.Equal(t, "1", totals.AnnualLeaveDays.String())
	assert.Equal(t, "1", totals.SickLeaveDays.String())
	assert.Equal(t, "2", totals.NoPayDays.String())
	assert.Equal(t, "3000", totals.NoPayDeduction.String())
}

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil, decimal.NewFromInt(1000))
	assert.True(t, totals.WorkingHours.IsZero())
	assert.True(t, totals.OTHours.IsZero())
	assert.True(t, totals.NoPayDeduction.IsZero())
}
