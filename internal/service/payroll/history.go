package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const HistoryKeyPrefix = "payroll:history:"

func HistoryKey(employeeID string) string {
	return HistoryKeyPrefix + employeeID
}

// historyReconciler is a read-through cache of finalized cycles per employee.
// Each key carries a generation that refresh bumps; a load only writes the
// cache if the generation it started under is still current.
type historyReconciler struct {
	cycles payroll.CycleRepository
	cache  cache.Cache
	sf     singleflight.Group
	ttl    time.Duration
	logger *slog.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

func newHistoryReconciler(cycles payroll.CycleRepository, c cache.Cache, ttl time.Duration, logger *slog.Logger) *historyReconciler {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &historyReconciler{
		cycles: cycles,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		gens:   make(map[string]uint64),
	}
}

func (h *historyReconciler) generation(key string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gens[key]
}

func (h *historyReconciler) bump(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gens[key]++
}

func (h *historyReconciler) list(ctx context.Context, employeeID string) ([]payroll.CycleRecord, error) {
	key := HistoryKey(employeeID)

	data, err := h.cache.Get(ctx, key)
	switch {
	case err == nil:
		var records []payroll.CycleRecord
		if jsonErr := json.Unmarshal(data, &records); jsonErr == nil {
			return records, nil
		}
		h.logger.Warn("discarding unreadable history cache entry", slog.String("key", key))
	case !errors.Is(err, cache.ErrMiss):
		h.logger.Warn("history cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	// The shared load must not die with whichever caller started it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := h.sf.Do(key, func() (any, error) {
		return h.load(loadCtx, employeeID)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]payroll.CycleRecord)), nil
}

// load reads from the ledger and rewrites the cache entry.
func (h *historyReconciler) load(ctx context.Context, employeeID string) ([]payroll.CycleRecord, error) {
	key := HistoryKey(employeeID)
	gen := h.generation(key)

	records, err := h.cycles.ListCycles(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: history %s: %w", payroll.ErrUpstreamFetch, employeeID, err)
	}
	if records == nil {
		records = []payroll.CycleRecord{}
	}
	sortNewestFirst(records)

	h.store(ctx, key, gen, records)
	return records, nil
}

// store writes records under key unless a refresh has happened since gen was read.
func (h *historyReconciler) store(ctx context.Context, key string, gen uint64, records []payroll.CycleRecord) {
	data, err := json.Marshal(records)
	if err != nil {
		h.logger.Warn("history cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gens[key] != gen {
		h.logger.Debug("dropping stale history load", slog.String("key", key))
		return
	}
	if err := h.cache.Set(ctx, key, data, h.ttl); err != nil {
		h.logger.Warn("history cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// refresh rebuilds the employee's entry after a finalize. If the ledger read
// fails the entry is dropped so the next list goes to the ledger.
func (h *historyReconciler) refresh(ctx context.Context, employeeID string) {
	key := HistoryKey(employeeID)
	h.bump(key)
	h.sf.Forget(key)
	_, err := h.load(ctx, employeeID)
	if err == nil {
		return
	}
	h.logger.Warn("history refresh failed, invalidating", slog.String("employee_id", employeeID), slog.Any("error", err))
	if err := h.cache.Delete(ctx, key); err != nil {
		h.logger.Error("history cache invalidation failed", slog.String("key", key), slog.Any("error", err))
	}
}

func sortNewestFirst(records []payroll.CycleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year > records[j].Year
		}
		return records[i].Month > records[j].Month
	})
}

// ListCycles returns the employee's finalized cycles, newest first. An
// employee without cycles yields an empty slice and no error.
func (s *PayrollServiceImpl) ListCycles(ctx context.Context, actor auth.Actor, employeeID string) ([]payroll.CycleRecord, error) {
	if err := actor.RequireView(); err != nil {
		return nil, err
	}
	if !validator.IsValidEmployeeID(employeeID) {
		return nil, validator.ValidationErrors{{Field: "employee_id", Message: "has an invalid format"}}
	}
	return s.history.list(ctx, employeeID)
}

// LoadCycleDetail recomputes a finalized cycle in preview mode from its saved
// custom rows and the period's attendance. The stored record is not touched.
// A nil incentive reuses the saved one.
func (s *PayrollServiceImpl) LoadCycleDetail(ctx context.Context, actor auth.Actor, employeeID string, year, month int, incentive *decimal.Decimal) (payroll.ComputeResult, error) {
	if err := actor.RequireView(); err != nil {
		return payroll.ComputeResult{}, err
	}

	var errs validator.ValidationErrors
	if !validator.IsValidEmployeeID(employeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "has an invalid format"})
	}
	if !validator.IsValidMonth(month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 9999"})
	}
	if incentive != nil && incentive.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "incentive", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return payroll.ComputeResult{}, errs
	}

	record, err := s.cycles.GetCycle(ctx, employeeID, year, month)
	if err != nil {
		if errors.Is(err, payroll.ErrCycleNotFound) {
			return payroll.ComputeResult{}, err
		}
		return payroll.ComputeResult{}, fmt.Errorf("%w: cycle %s %d-%02d: %w", payroll.ErrUpstreamFetch, employeeID, year, month, err)
	}

	inc := record.Incentive
	if incentive != nil {
		inc = *incentive
	}
	epfRate := record.Breakdown.EPFRate
	if epfRate.IsZero() {
		epfRate = s.epfRate
	}

	emp, period, totals, err := s.fetchInputs(ctx, employeeID, year, month)
	if err != nil {
		return payroll.ComputeResult{}, err
	}

	allowances := ToClean(SeedRows(record.Breakdown.CustomAllowances))
	deductions := ToClean(SeedRows(record.Breakdown.CustomDeductions))
	breakdown := Calculate(s.calculatorInput(emp, totals, inc, allowances, deductions, epfRate))

	return payroll.ComputeResult{
		Employee: &emp,
		Payroll:  &breakdown,
		Period:   period,
		Totals:   totals,
	}, nil
}
