package payroll

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Preview(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	result, err := f.svc.Compute(ctx, adminActor, scenarioRequest(false))
	require.NoError(t, err)
	require.NoError(t, result.Check())

	assert.False(t, result.Finalized)
	assert.Equal(t, "EMP-001", result.Employee.ID)
	assert.Equal(t, "2024-05-22", result.Period.StartDate)
	assert.Equal(t, "2024-06-21", result.Period.EndDate)
	assert.Equal(t, "55000", result.Payroll.FullSalary.String())
	assert.Equal(t, "6600", result.Payroll.EPFDeduction.String())
	assert.Equal(t, "48400", result.Payroll.NetSalary.String())

	assert.Zero(t, f.ledger.count(), "preview must not persist")
	assert.Empty(t, f.events.events)
}

func TestCompute_FinalizeMatchesPreview(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	preview, err := f.svc.Compute(ctx, adminActor, scenarioRequest(false))
	require.NoError(t, err)
	final, err := f.svc.Compute(ctx, adminActor, scenarioRequest(true))
	require.NoError(t, err)

	assert.True(t, final.Finalized)
	assert.Equal(t, *preview.Payroll, *final.Payroll)

	record, err := f.ledger.GetCycle(ctx, "EMP-001", 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, *final.Payroll, record.Breakdown)
	assert.Equal(t, "admin-1", record.FinalizedBy)
	assert.Equal(t, "2024-05-22", record.PeriodStart)
	assert.True(t, record.NetSalary.Equal(decimal.NewFromInt(48400)))

	require.Len(t, f.events.events, 1)
	assert.Equal(t, EventFinalized, f.events.events[0].Name)
	assert.Equal(t, "EMP-001", f.events.events[0].Topic)
}

func TestCompute_FinalizeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Compute(ctx, adminActor, scenarioRequest(true))
	require.NoError(t, err)
	first, err := f.ledger.GetCycle(ctx, "EMP-001", 2024, 6)
	require.NoError(t, err)

	_, err = f.svc.Compute(ctx, adminActor, scenarioRequest(true))
	require.NoError(t, err)
	second, err := f.ledger.GetCycle(ctx, "EMP-001", 2024, 6)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.ledger.count())
	assert.Equal(t, 2, f.ledger.upserts)
}

func TestCompute_RefinalizeOverwrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Compute(ctx, adminActor, scenarioRequest(true))
	require.NoError(t, err)

	req := scenarioRequest(true)
	req.Incentive = decimal.NewFromInt(1000)
	_, err = f.svc.Compute(ctx, adminActor, req)
	require.NoError(t, err)

	record, err := f.ledger.GetCycle(ctx, "EMP-001", 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, f.ledger.count())
	assert.Equal(t, "56000", record.FullSalary.String())
}

func TestCompute_ValidationAndAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	req := scenarioRequest(false)
	req.Month = 0
	_, err := f.svc.Compute(ctx, adminActor, req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "month")

	_, err = f.svc.Compute(ctx, managerActor, scenarioRequest(false))
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = f.svc.Compute(ctx, auth.Actor{}, scenarioRequest(false))
	assert.ErrorIs(t, err, auth.ErrMissingActor)
}

func TestCompute_DropsBlankLabelRows(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	req := scenarioRequest(true)
	req.Allowances = append(req.Allowances, payroll.LineItem{Label: "", Amount: decimal.NewFromInt(500)})
	req.Deductions = []payroll.LineItem{{Label: "   ", Amount: decimal.NewFromInt(300)}}

	result, err := f.svc.Compute(ctx, adminActor, req)
	require.NoError(t, err)
	assert.Equal(t, "48400", result.Payroll.NetSalary.String())
	require.Len(t, result.Payroll.CustomAllowances, 1)
	assert.Equal(t, "Transport", result.Payroll.CustomAllowances[0].Label)
	assert.Empty(t, result.Payroll.CustomDeductions)

	stored, err := f.ledger.GetCycle(ctx, "EMP-001", 2024, 6)
	require.NoError(t, err)
	assert.Len(t, stored.Breakdown.CustomAllowances, 1)
}

func TestCompute_UpstreamFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown employee", func(t *testing.T) {
		f := newFixture()
		req := scenarioRequest(false)
		req.EmployeeID = "EMP-404"
		_, err := f.svc.Compute(ctx, adminActor, req)
		assert.ErrorIs(t, err, payroll.ErrUpstreamFetch)
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})

	t.Run("attendance down", func(t *testing.T) {
		f := newFixture()
		f.attend.err = errBoom
		_, err := f.svc.Compute(ctx, adminActor, scenarioRequest(true))
		assert.ErrorIs(t, err, payroll.ErrUpstreamFetch)
		assert.ErrorIs(t, err, errBoom)
		assert.Zero(t, f.ledger.count(), "nothing is persisted when inputs are missing")
	})
}

func TestCompute_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.ledger.upsertErr = errBoom

	result, err := f.svc.Compute(ctx, adminActor, scenarioRequest(true))

	assert.ErrorIs(t, err, payroll.ErrPersistence)
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, result.Payroll)
	assert.Empty(t, f.events.events)
}

func TestCompute_ConfiguredEPFRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := NewPayrollService(f.directory, f.attend, f.ledger, f.cache, nil, Options{EPFRate: dec("0.08")}, nil)

	result, err := svc.Compute(ctx, adminActor, scenarioRequest(true))
	require.NoError(t, err)
	assert.Equal(t, "4400", result.Payroll.EPFDeduction.String())
	assert.Equal(t, "0.08", result.Payroll.EPFRate.String())
}
