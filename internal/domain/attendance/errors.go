package attendance

import "errors"

var (
	ErrInvalidPeriod  = errors.New("invalid pay period")
	ErrInvalidDayType = errors.New("day type must be Normal, Sunday or MercantileHoliday")
	ErrTotalsNotFound = errors.New("attendance totals not found")
)
