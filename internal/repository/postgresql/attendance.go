package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type attendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository aggregates the attendance_records table into cycle
// totals. Rows without a stored day type are classified against the
// mercantile_holidays calendar.
func NewAttendanceRepository(db *database.DB) attendance.Aggregator {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) GetTotals(ctx context.Context, employeeID string, year, month int) (attendance.PayPeriod, attendance.Totals, error) {
	period, err := attendance.NewPayPeriod(year, month)
	if err != nil {
		return attendance.PayPeriod{}, attendance.Totals{}, err
	}
	start, end, err := period.Bounds()
	if err != nil {
		return attendance.PayPeriod{}, attendance.Totals{}, err
	}

	var totals attendance.Totals
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err = WithTransaction(ctx, r.db, opts, func(ctx context.Context) error {
		noPayDayValue, err := r.noPayDayValue(ctx, employeeID)
		if err != nil {
			return err
		}
		calendar, err := r.holidays(ctx, start, end)
		if err != nil {
			return err
		}
		records, err := r.records(ctx, employeeID, start, end, calendar)
		if err != nil {
			return err
		}
		totals = attendance.Aggregate(records, noPayDayValue)
		return nil
	})
	if err != nil {
		return attendance.PayPeriod{}, attendance.Totals{}, err
	}
	return period, totals, nil
}

func (r *attendanceRepository) noPayDayValue(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var value decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT no_pay_day_value FROM employees WHERE employee_id = $1 AND deleted_at IS NULL`,
		employeeID,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, employee.ErrEmployeeNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get no-pay day value: %w", err)
	}
	return value, nil
}

func (r *attendanceRepository) holidays(ctx context.Context, start, end time.Time) (attendance.HolidayCalendar, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT holiday_date FROM mercantile_holidays WHERE holiday_date BETWEEN $1 AND $2`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list mercantile holidays: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan mercantile holiday: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list mercantile holidays: %w", err)
	}
	return attendance.NewHolidayCalendar(dates...), nil
}

func (r *attendanceRepository) records(ctx context.Context, employeeID string, start, end time.Time, calendar attendance.HolidayCalendar) ([]attendance.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT work_date, day_type, status, working_hours
		FROM attendance_records
		WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3
		ORDER BY work_date`,
		employeeID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	records := []attendance.DailyRecord{}
	for rows.Next() {
		var (
			rec     attendance.DailyRecord
			dayType *string
			status  string
		)
		if err := rows.Scan(&rec.Date, &dayType, &status, &rec.WorkingHours); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		rec.EmployeeID = employeeID
		rec.Status = attendance.Status(status)
		if dayType == nil || *dayType == "" {
			rec.DayType = calendar.DayTypeOf(rec.Date)
		} else {
			rec.DayType = attendance.DayType(*dayType)
			if !rec.DayType.IsValid() {
				return nil, fmt.Errorf("%w: %q on %s", attendance.ErrInvalidDayType, *dayType, rec.Date.Format(time.DateOnly))
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return records, nil
}
