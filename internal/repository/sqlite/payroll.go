// Package sqlite is a single-file payroll ledger for deployments without
// PostgreSQL. It implements payroll.CycleRepository on database/sql with the
// go-sqlite3 driver; amounts are stored as decimal strings.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store holds finalized payroll cycles.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) the ledger at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payroll_cycles (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		incentive TEXT NOT NULL,
		full_salary TEXT NOT NULL,
		epf_deduction TEXT NOT NULL,
		net_salary TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		finalized_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year, month)
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_cycles_employee_period
		ON payroll_cycles(employee_id, year DESC, month DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertCycle writes the record, replacing any previous version.
func (s *Store) UpsertCycle(ctx context.Context, record payroll.CycleRecord) (payroll.CycleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	breakdown, err := json.Marshal(record.Breakdown)
	if err != nil {
		return payroll.CycleRecord{}, fmt.Errorf("failed to encode payroll breakdown: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO payroll_cycles (
			employee_id, year, month, period_start, period_end,
			incentive, full_salary, epf_deduction, net_salary,
			breakdown_json, finalized_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, year, month) DO UPDATE SET
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			incentive = excluded.incentive,
			full_salary = excluded.full_salary,
			epf_deduction = excluded.epf_deduction,
			net_salary = excluded.net_salary,
			breakdown_json = excluded.breakdown_json,
			finalized_by = excluded.finalized_by,
			updated_at = excluded.updated_at`,
		record.EmployeeID, record.Year, record.Month, record.PeriodStart, record.PeriodEnd,
		record.Incentive.String(), record.FullSalary.String(), record.EPFDeduction.String(), record.NetSalary.String(),
		string(breakdown), record.FinalizedBy, now, now,
	)
	if err != nil {
		return payroll.CycleRecord{}, fmt.Errorf("failed to upsert payroll cycle: %w", err)
	}
	return record, nil
}

func (s *Store) GetCycle(ctx context.Context, employeeID string, year, month int) (payroll.CycleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, year, month, period_start, period_end,
			incentive, full_salary, epf_deduction, net_salary, breakdown_json, finalized_by
		FROM payroll_cycles
		WHERE employee_id = ? AND year = ? AND month = ?`,
		employeeID, year, month,
	)
	record, err := scanCycle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.CycleRecord{}, payroll.ErrCycleNotFound
	}
	if err != nil {
		return payroll.CycleRecord{}, fmt.Errorf("failed to get payroll cycle: %w", err)
	}
	return record, nil
}

// ListCycles returns every finalized cycle of the employee, newest first.
func (s *Store) ListCycles(ctx context.Context, employeeID string) ([]payroll.CycleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, year, month, period_start, period_end,
			incentive, full_salary, epf_deduction, net_salary, breakdown_json, finalized_by
		FROM payroll_cycles
		WHERE employee_id = ?
		ORDER BY year DESC, month DESC`,
		employeeID,
	)
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
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCycle(row scanner) (payroll.CycleRecord, error) {
	var (
		rec                                  payroll.CycleRecord
		incentive, fullSalary, epf, net, raw string
	)
	err := row.Scan(
		&rec.EmployeeID, &rec.Year, &rec.Month, &rec.PeriodStart, &rec.PeriodEnd,
		&incentive, &fullSalary, &epf, &net, &raw, &rec.FinalizedBy,
	)
	if err != nil {
		return payroll.CycleRecord{}, err
	}

	amounts := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&rec.Incentive, incentive},
		{&rec.FullSalary, fullSalary},
		{&rec.EPFDeduction, epf},
		{&rec.NetSalary, net},
	}
	for _, a := range amounts {
		if *a.dst, err = decimal.NewFromString(a.src); err != nil {
			return payroll.CycleRecord{}, fmt.Errorf("decode amount %q: %w", a.src, err)
		}
	}
	if err := json.Unmarshal([]byte(raw), &rec.Breakdown); err != nil {
		return payroll.CycleRecord{}, fmt.Errorf("decode payroll breakdown: %w", err)
	}
	return rec, nil
}

var _ payroll.CycleRepository = (*Store)(nil)
