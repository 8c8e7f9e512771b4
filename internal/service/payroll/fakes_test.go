package payroll

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/shopspring/decimal"
)

var (
	adminActor   = auth.Actor{UserID: "admin-1", Role: auth.RoleAdmin}
	managerActor = auth.Actor{UserID: "manager-1", Role: auth.RoleManager}
	errBoom      = errors.New("boom")
)

type fakeDirectory struct {
	employees map[string]employee.Employee
	err       error
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (employee.Employee, error) {
	if f.err != nil {
		return employee.Employee{}, f.err
	}
	e, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeDirectory) List(_ context.Context) ([]employee.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]employee.Employee, 0, len(f.employees))
	for _, e := range f.employees {
		out = append(out, e)
	}
	return out, nil
}

type fakeAggregator struct {
	totals attendance.Totals
	err    error
}

func (f *fakeAggregator) GetTotals(_ context.Context, _ string, year, month int) (attendance.PayPeriod, attendance.Totals, error) {
	if f.err != nil {
		return attendance.PayPeriod{}, attendance.Totals{}, f.err
	}
	period, err := attendance.NewPayPeriod(year, month)
	if err != nil {
		return attendance.PayPeriod{}, attendance.Totals{}, err
	}
	return period, f.totals, nil
}

type fakeLedger struct {
	mu        sync.Mutex
	records   map[string]payroll.CycleRecord
	upserts   int
	lists     int
	upsertErr error
	listErr   error
	getErr    error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]payroll.CycleRecord)}
}

func ledgerKey(employeeID string, year, month int) string {
	return fmt.Sprintf("%s/%04d/%02d", employeeID, year, month)
}

func (f *fakeLedger) UpsertCycle(_ context.Context, record payroll.CycleRecord) (payroll.CycleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return payroll.CycleRecord{}, f.upsertErr
	}
	f.upserts++
	f.records[ledgerKey(record.EmployeeID, record.Year, record.Month)] = record
	return record, nil
}

func (f *fakeLedger) GetCycle(_ context.Context, employeeID string, year, month int) (payroll.CycleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return payroll.CycleRecord{}, f.getErr
	}
	r, ok := f.records[ledgerKey(employeeID, year, month)]
	if !ok {
		return payroll.CycleRecord{}, payroll.ErrCycleNotFound
	}
	return r, nil
}

func (f *fakeLedger) ListCycles(_ context.Context, employeeID string) ([]payroll.CycleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []payroll.CycleRecord
	for _, r := range f.records {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(topic string, event sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	event.Topic = topic
	p.events = append(p.events, event)
}

type fixture struct {
	directory *fakeDirectory
	attend    *fakeAggregator
	ledger    *fakeLedger
	cache     *cache.MemoryCache
	events    *recordingPublisher
	svc       *PayrollServiceImpl
}

func scenarioEmployee() employee.Employee {
	return employee.Employee{
		ID:            "EMP-001",
		FirstName:     "Nimal",
		LastName:      "Perera",
		Role:          "Engineer",
		BaseSalary:    decimal.NewFromInt(50000),
		NormalOTRate:  decimal.NewFromInt(300),
		HolidayOTRate: decimal.NewFromInt(450),
		NoPayDayValue: decimal.NewFromInt(2000),
	}
}

func scenarioTotals() attendance.Totals {
	return attendance.Totals{
		WorkingHours:    decimal.NewFromInt(178),
		OTHours:         decimal.NewFromInt(10),
		NormalOTHours:   decimal.NewFromInt(10),
		HolidayOTHours:  decimal.Zero,
		AnnualLeaveDays: decimal.NewFromInt(1),
		SickLeaveDays:   decimal.Zero,
		NoPayDays:       decimal.Zero,
		NoPayDeduction:  decimal.Zero,
	}
}

func newFixture() *fixture {
	emp := scenarioEmployee()
	f := &fixture{
		directory: &fakeDirectory{employees: map[string]employee.Employee{emp.ID: emp}},
		attend:    &fakeAggregator{totals: scenarioTotals()},
		ledger:    newFakeLedger(),
		cache:     cache.NewMemoryCache(),
		events:    &recordingPublisher{},
	}
	f.svc = NewPayrollService(f.directory, f.attend, f.ledger, f.cache, f.events, Options{}, nil)
	return f
}

func scenarioRequest(finalize bool) payroll.ComputeRequest {
	return payroll.ComputeRequest{
		EmployeeID: "EMP-001",
		Year:       2024,
		Month:      6,
		Allowances: []payroll.LineItem{{Label: "Transport", Amount: decimal.NewFromInt(2000)}},
		Finalize:   finalize,
	}
}
