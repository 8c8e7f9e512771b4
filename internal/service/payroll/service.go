package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// EventFinalized is published on the employee topic after a cycle is saved.
const EventFinalized = "payroll.finalized"

type EventPublisher interface {
	Publish(topic string, event sse.Event)
}

type Options struct {
	EPFRate    decimal.Decimal
	HistoryTTL time.Duration
}

type PayrollServiceImpl struct {
	employees  employee.Directory
	attendance attendance.Aggregator
	cycles     payroll.CycleRepository
	history    *historyReconciler
	events     EventPublisher
	epfRate    decimal.Decimal
	logger     *slog.Logger
}

func NewPayrollService(
	employees employee.Directory,
	attendanceAgg attendance.Aggregator,
	cycles payroll.CycleRepository,
	historyCache cache.Cache,
	events EventPublisher,
	opts Options,
	logger *slog.Logger,
) *PayrollServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EPFRate.IsZero() {
		opts.EPFRate = DefaultEPFRate
	}
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = time.Hour
	}
	logger = logger.With(slog.String("component", "payroll.service"))

	return &PayrollServiceImpl{
		employees:  employees,
		attendance: attendanceAgg,
		cycles:     cycles,
		history:    newHistoryReconciler(cycles, historyCache, opts.HistoryTTL, logger),
		events:     events,
		epfRate:    opts.EPFRate,
		logger:     logger,
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// EPFRate returns the configured EPF rate.
func (s *PayrollServiceImpl) EPFRate() decimal.Decimal {
	return s.epfRate
}

// Compute is the single computation path for preview and finalize. Finalize
// only adds the persistence step, so a saved cycle always equals its preview.
func (s *PayrollServiceImpl) Compute(ctx context.Context, actor auth.Actor, req payroll.ComputeRequest) (payroll.ComputeResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return payroll.ComputeResult{}, err
	}
	if err := actor.RequireManage(); err != nil {
		return payroll.ComputeResult{}, err
	}

	emp, period, totals, err := s.fetchInputs(ctx, req.EmployeeID, req.Year, req.Month)
	if err != nil {
		return payroll.ComputeResult{}, err
	}

	breakdown := Calculate(s.calculatorInput(emp, totals, req.Incentive, req.Allowances, req.Deductions, s.epfRate))
	result := payroll.ComputeResult{
		Employee: &emp,
		Payroll:  &breakdown,
		Period:   period,
		Totals:   totals,
	}

	if !req.Finalize {
		return result, nil
	}

	record := payroll.CycleRecord{
		EmployeeID:   emp.ID,
		Year:         period.Year,
		Month:        period.Month,
		PeriodStart:  period.StartDate,
		PeriodEnd:    period.EndDate,
		Incentive:    breakdown.Incentive,
		FullSalary:   breakdown.FullSalary,
		EPFDeduction: breakdown.EPFDeduction,
		NetSalary:    breakdown.NetSalary,
		Breakdown:    breakdown,
		FinalizedBy:  actor.UserID,
	}
	if _, err := s.cycles.UpsertCycle(ctx, record); err != nil {
		s.logger.Error("finalize payroll failed",
			slog.String("employee_id", emp.ID),
			slog.String("period", period.Label()),
			slog.Any("error", err),
		)
		return payroll.ComputeResult{}, fmt.Errorf("%w: %w", payroll.ErrPersistence, err)
	}

	s.history.refresh(ctx, emp.ID)
	if s.events != nil {
		s.events.Publish(emp.ID, sse.Event{
			Name: EventFinalized,
			Data: map[string]any{"year": period.Year, "month": period.Month, "netSalary": breakdown.NetSalary},
		})
	}
	s.logger.Info("payroll finalized",
		slog.String("employee_id", emp.ID),
		slog.String("period", period.Label()),
		slog.String("finalized_by", actor.UserID),
	)

	result.Finalized = true
	return result, nil
}

// fetchInputs loads the employee and attendance snapshot concurrently. Both
// must succeed before anything is computed.
func (s *PayrollServiceImpl) fetchInputs(ctx context.Context, employeeID string, year, month int) (employee.Employee, attendance.PayPeriod, attendance.Totals, error) {
	var (
		emp    employee.Employee
		period attendance.PayPeriod
		totals attendance.Totals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := s.employees.GetByID(gctx, employeeID)
		if err != nil {
			return fmt.Errorf("%w: employee %s: %w", payroll.ErrUpstreamFetch, employeeID, err)
		}
		emp = e
		return nil
	})
	g.Go(func() error {
		p, t, err := s.attendance.GetTotals(gctx, employeeID, year, month)
		if err != nil {
			return fmt.Errorf("%w: attendance %s %d-%02d: %w", payroll.ErrUpstreamFetch, employeeID, year, month, err)
		}
		period, totals = p, t
		return nil
	})

	if err := g.Wait(); err != nil {
		return employee.Employee{}, attendance.PayPeriod{}, attendance.Totals{}, err
	}
	return emp, period, totals, nil
}

func (s *PayrollServiceImpl) calculatorInput(
	emp employee.Employee,
	totals attendance.Totals,
	incentive decimal.Decimal,
	allowances, deductions []payroll.LineItem,
	epfRate decimal.Decimal,
) CalculatorInput {
	return CalculatorInput{
		BaseSalary:     emp.BaseSalary,
		NormalOTHours:  totals.NormalOTHours,
		NormalOTRate:   emp.NormalOTRate,
		HolidayOTHours: totals.HolidayOTHours,
		HolidayOTRate:  emp.HolidayOTRate,
		NoPayDeduction: totals.NoPayDeduction,
		Incentive:      incentive,
		Allowances:     allowances,
		Deductions:     deductions,
		EPFRate:        epfRate,
	}
}
