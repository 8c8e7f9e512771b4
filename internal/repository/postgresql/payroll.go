package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.CycleRepository {
	return &payrollRepository{db: db}
}

const cycleColumns = `employee_id, year, month, period_start::text, period_end::text,
	incentive, full_salary, epf_deduction, net_salary, breakdown, finalized_by`

// UpsertCycle writes the record, replacing an existing one for the same
// employee and period. Concurrent finalizes resolve as last write wins.
func (r *payrollRepository) UpsertCycle(ctx context.Context, record payroll.CycleRecord) (payroll.CycleRecord, error) {
	q := GetQuerier(ctx, r.db)

	breakdown, err := json.Marshal(record.Breakdown)
	if err != nil {
		return payroll.CycleRecord{}, fmt.Errorf("failed to encode payroll breakdown: %w", err)
	}

	query := `
		INSERT INTO payroll_cycles (
			employee_id, year, month, period_start, period_end,
			incentive, full_salary, epf_deduction, net_salary, breakdown, finalized_by
		) VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (employee_id, year, month) DO UPDATE SET
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			incentive = EXCLUDED.incentive,
			full_salary = EXCLUDED.full_salary,
			epf_deduction = EXCLUDED.epf_deduction,
			net_salary = EXCLUDED.net_salary,
			breakdown = EXCLUDED.breakdown,
			finalized_by = EXCLUDED.finalized_by,
			updated_at = NOW()
		RETURNING ` + cycleColumns

	row := q.QueryRow(ctx, query,
		record.EmployeeID, record.Year, record.Month, record.PeriodStart, record.PeriodEnd,
		record.Incentive, record.FullSalary, record.EPFDeduction, record.NetSalary, breakdown, record.FinalizedBy,
	)
	saved, err := scanCycle(row)
	if err != nil {
		return payroll.CycleRecord{}, fmt.Errorf("failed to upsert payroll cycle: %w", err)
	}
	return saved, nil
}

func (r *payrollRepository) GetCycle(ctx context.Context, employeeID string, year, month int) (payroll.CycleRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + `
		FROM payroll_cycles
		WHERE employee_id = $1 AND year = $2 AND month = $3`

	record, err := scanCycle(q.QueryRow(ctx, query, employeeID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.CycleRecord{}, payroll.ErrCycleNotFound
		}
		return payroll.CycleRecord{}, fmt.Errorf("failed to get payroll cycle: %w", err)
	}
	return record, nil
}

func (r *payrollRepository) ListCycles(ctx context.Context, employeeID string) ([]payroll.CycleRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + `
		FROM payroll_cycles
		WHERE employee_id = $1
		ORDER BY year DESC, month DESC`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll cycles: %w", err)
	}
	defer rows.Close()

	records := []payroll.CycleRecord{}
	for rows.Next() {
		record, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll cycle: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payroll cycles: %w", err)
	}
	return records, nil
}

func scanCycle(row pgx.Row) (payroll.CycleRecord, error) {
	var (
		rec       payroll.CycleRecord
		breakdown []byte
	)
	err := row.Scan(
		&rec.EmployeeID, &rec.Year, &rec.Month, &rec.PeriodStart, &rec.PeriodEnd,
		&rec.Incentive, &rec.FullSalary, &rec.EPFDeduction, &rec.NetSalary, &breakdown, &rec.FinalizedBy,
	)
	if err != nil {
		return payroll.CycleRecord{}, err
	}
	if err := json.Unmarshal(breakdown, &rec.Breakdown); err != nil {
		return payroll.CycleRecord{}, fmt.Errorf("decode payroll breakdown: %w", err)
	}
	return rec, nil
}
