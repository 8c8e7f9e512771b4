package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

// Schema is the table layout the adapters expect. The directory and
// attendance tables are normally owned by other services and only read here.
const Schema = `
CREATE TABLE IF NOT EXISTS employees (
	employee_id      TEXT PRIMARY KEY,
	first_name       TEXT NOT NULL DEFAULT '',
	last_name        TEXT NOT NULL DEFAULT '',
	role             TEXT NOT NULL DEFAULT '',
	base_salary      NUMERIC(14,2) NOT NULL DEFAULT 0,
	normal_ot_rate   NUMERIC(14,2) NOT NULL DEFAULT 0,
	holiday_ot_rate  NUMERIC(14,2) NOT NULL DEFAULT 0,
	no_pay_day_value NUMERIC(14,2) NOT NULL DEFAULT 0,
	deleted_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS mercantile_holidays (
	holiday_date DATE PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS attendance_records (
	employee_id   TEXT NOT NULL REFERENCES employees(employee_id),
	work_date     DATE NOT NULL,
	day_type      TEXT,
	status        TEXT NOT NULL,
	working_hours NUMERIC(5,2) NOT NULL DEFAULT 0,
	PRIMARY KEY (employee_id, work_date)
);

CREATE TABLE IF NOT EXISTS payroll_cycles (
	employee_id   TEXT NOT NULL,
	year          INT NOT NULL,
	month         INT NOT NULL CHECK (month BETWEEN 1 AND 12),
	period_start  DATE NOT NULL,
	period_end    DATE NOT NULL,
	incentive     NUMERIC(14,2) NOT NULL,
	full_salary   NUMERIC(14,2) NOT NULL,
	epf_deduction NUMERIC(14,2) NOT NULL,
	net_salary    NUMERIC(14,2) NOT NULL,
	breakdown     JSONB NOT NULL,
	finalized_by  TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (employee_id, year, month)
);
`

// Migrate creates missing tables.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
