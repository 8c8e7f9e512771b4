package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmployee(t *testing.T, s *TestDatabaseSetup, id string) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO employees (employee_id, first_name, last_name, role, base_salary, normal_ot_rate, holiday_ot_rate, no_pay_day_value)
		VALUES ($1, 'Nimal', 'Perera', 'Engineer', 50000, 300, 450, 1000)`, id)
	require.NoError(t, err)
}

func cycleRecord(id string, year, month int, net string) payroll.CycleRecord {
	period, _ := attendance.NewPayPeriod(year, month)
	return payroll.CycleRecord{
		EmployeeID:   id,
		Year:         year,
		Month:        month,
		PeriodStart:  period.StartDate,
		PeriodEnd:    period.EndDate,
		Incentive:    decimal.Zero,
		FullSalary:   decimal.RequireFromString("55000"),
		EPFDeduction: decimal.RequireFromString("6600"),
		NetSalary:    decimal.RequireFromString(net),
		Breakdown: payroll.Breakdown{
			BaseSalary: decimal.RequireFromString("50000"),
			NetSalary:  decimal.RequireFromString(net),
			CustomAllowances: []payroll.LineItem{{Label: "Transport", Amount: decimal.RequireFromString("2000")}},
			CustomDeductions: []payroll.LineItem{},
		},
		FinalizedBy: "admin-1",
	}
}

func TestPayrollRepository_UpsertAndGet(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(s.DB)

	_, err := repo.GetCycle(ctx, "E001", 2024, 5)
	assert.ErrorIs(t, err, payroll.ErrCycleNotFound)

	saved, err := repo.UpsertCycle(ctx, cycleRecord("E001", 2024, 5, "48400"))
	require.NoError(t, err)
	assert.Equal(t, "2024-04-22", saved.PeriodStart)
	assert.Equal(t, "2024-05-21", saved.PeriodEnd)

	_, err = repo.UpsertCycle(ctx, cycleRecord("E001", 2024, 5, "50000"))
	require.NoError(t, err)

	got, err := repo.GetCycle(ctx, "E001", 2024, 5)
	require.NoError(t, err)
	assert.Equal(t, "50000", got.NetSalary.String())
	assert.Equal(t, "50000", got.Breakdown.NetSalary.String())
	require.Len(t, got.Breakdown.CustomAllowances, 1)
	assert.Equal(t, "Transport", got.Breakdown.CustomAllowances[0].Label)

	list, err := repo.ListCycles(ctx, "E001")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPayrollRepository_ListNewestFirst(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(s.DB)

	for _, p := range [][2]int{{2023, 12}, {2024, 2}, {2024, 1}} {
		_, err := repo.UpsertCycle(ctx, cycleRecord("E001", p[0], p[1], "1"))
		require.NoError(t, err)
	}

	list, err := repo.ListCycles(ctx, "E001")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{2, 1, 12}, []int{list[0].Month, list[1].Month, list[2].Month})

	empty, err := repo.ListCycles(ctx, "E404")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(s.DB)

	err := postgresql.WithTransaction(ctx, s.DB, pgx.TxOptions{}, func(ctx context.Context) error {
		if _, err := repo.UpsertCycle(ctx, cycleRecord("E001", 2024, 5, "1")); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = repo.GetCycle(ctx, "E001", 2024, 5)
	assert.ErrorIs(t, err, payroll.ErrCycleNotFound)
}

func TestEmployeeRepository(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	seedEmployee(t, s, "E001")
	repo := postgresql.NewEmployeeRepository(s.DB)

	e, err := repo.GetByID(ctx, "E001")
	require.NoError(t, err)
	assert.Equal(t, "Nimal Perera", e.FullName())
	assert.Equal(t, "300", e.NormalOTRate.String())

	_, err = repo.GetByID(ctx, "E404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAttendanceRepository_GetTotals(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	seedEmployee(t, s, "E001")

	_, err := s.DB.Exec(ctx, `INSERT INTO mercantile_holidays (holiday_date, name) VALUES ('2024-05-01', 'May Day')`)
	require.NoError(t, err)
	_, err = s.DB.Exec(ctx, `
		INSERT INTO attendance_records (employee_id, work_date, day_type, status, working_hours) VALUES
			('E001', '2024-04-21', 'Normal', 'Present', 12),
			('E001', '2024-04-22', 'Normal', 'Present', 10),
			('E001', '2024-04-28', NULL, 'Present', 4),
			('E001', '2024-05-01', NULL, 'Present', 3),
			('E001', '2024-05-02', 'Normal', 'No Pay', 0),
			('E001', '2024-05-03', 'Normal', 'Sick Leave', 0)`)
	require.NoError(t, err)

	repo := postgresql.NewAttendanceRepository(s.DB)
	period, totals, err := repo.GetTotals(ctx, "E001", 2024, 5)
	require.NoError(t, err)

	assert.Equal(t, "2024-04-22", period.StartDate)
	assert.Equal(t, "17", totals.WorkingHours.String())
	assert.Equal(t, "2", totals.NormalOTHours.String())
	assert.Equal(t, "7", totals.HolidayOTHours.String())
	assert.Equal(t, "1", totals.NoPayDays.String())
	assert.Equal(t, "1000", totals.NoPayDeduction.String())
	assert.Equal(t, "1", totals.SickLeaveDays.String())

	_, _, err = repo.GetTotals(ctx, "E404", 2024, 5)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
