package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

var (
	testAdmin    = auth.Actor{UserID: "admin-1", Role: auth.RoleAdmin}
	testManager  = auth.Actor{UserID: "manager-1", Role: auth.RoleManager}
	testEmployee = auth.Actor{UserID: "emp-1", Role: auth.RoleEmployee}
)

var testEmp = employee.Employee{
	ID:            "E001",
	FirstName:     "Nimal",
	LastName:      "Perera",
	Role:          "Engineer",
	BaseSalary:    decimal.NewFromInt(50000),
	NormalOTRate:  decimal.NewFromInt(300),
	HolidayOTRate: decimal.NewFromInt(450),
}

// stubPayroll enforces the same role checks as the real service and records
// the last compute request.
type stubPayroll struct {
	lastReq    payroll.ComputeRequest
	lastIncent *decimal.Decimal
	computeErr error
	history    []payroll.CycleRecord
	historyErr error
	detailErr  error
}

func (s *stubPayroll) result(finalized bool) payroll.ComputeResult {
	emp := testEmp
	period, _ := attendance.NewPayPeriod(2024, 5)
	return payroll.ComputeResult{
		Employee: &emp,
		Payroll: &payroll.Breakdown{
			BaseSalary:   decimal.NewFromInt(50000),
			OTPay:        decimal.NewFromInt(3000),
			FullSalary:   decimal.NewFromInt(55000),
			EPFRate:      decimal.RequireFromString("0.12"),
			EPFDeduction: decimal.NewFromInt(6600),
			NetSalary:    decimal.NewFromInt(48400),
		},
		Period:    period,
		Finalized: finalized,
	}
}

func (s *stubPayroll) Compute(ctx context.Context, actor auth.Actor, req payroll.ComputeRequest) (payroll.ComputeResult, error) {
	if err := actor.RequireManage(); err != nil {
		return payroll.ComputeResult{}, err
	}
	s.lastReq = req
	if s.computeErr != nil {
		return payroll.ComputeResult{}, s.computeErr
	}
	return s.result(req.Finalize), nil
}

func (s *stubPayroll) ListCycles(ctx context.Context, actor auth.Actor, employeeID string) ([]payroll.CycleRecord, error) {
	if err := actor.RequireView(); err != nil {
		return nil, err
	}
	return s.history, s.historyErr
}

func (s *stubPayroll) LoadCycleDetail(ctx context.Context, actor auth.Actor, employeeID string, year, month int, incentive *decimal.Decimal) (payroll.ComputeResult, error) {
	if err := actor.RequireView(); err != nil {
		return payroll.ComputeResult{}, err
	}
	s.lastIncent = incentive
	if s.detailErr != nil {
		return payroll.ComputeResult{}, s.detailErr
	}
	return s.result(false), nil
}

type stubPayslips struct {
	format payroll.PayslipFormat
	req    payroll.ComputeRequest
}

func (s *stubPayslips) Export(ctx context.Context, actor auth.Actor, req payroll.ComputeRequest, format payroll.PayslipFormat) (payroll.Artifact, error) {
	s.format, s.req = format, req
	return payroll.Artifact{
		Filename:    "payslip-E001-2024-05.html",
		ContentType: "text/html; charset=utf-8",
		Body:        []byte("<html>payslip</html>"),
		Path:        "payslips/E001/payslip-E001-2024-05.html",
	}, nil
}

func (s *stubPayslips) ExportCycle(ctx context.Context, actor auth.Actor, employeeID string, year, month int, format payroll.PayslipFormat) (payroll.Artifact, error) {
	if format == payroll.PayslipFormatPDF {
		return payroll.Artifact{}, payroll.ErrPDFUnavailable
	}
	return payroll.Artifact{Filename: "p.html", ContentType: "text/html", Body: []byte("x")}, nil
}

type stubDirectory struct{}

func (stubDirectory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if id != testEmp.ID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return testEmp, nil
}

func (stubDirectory) List(ctx context.Context) ([]employee.Employee, error) {
	return []employee.Employee{testEmp}, nil
}

type stubAggregator struct{}

func (stubAggregator) GetTotals(ctx context.Context, id string, year, month int) (attendance.PayPeriod, attendance.Totals, error) {
	period, err := attendance.NewPayPeriod(year, month)
	if err != nil {
		return attendance.PayPeriod{}, attendance.Totals{}, err
	}
	return period, attendance.Totals{NormalOTHours: decimal.NewFromInt(10)}, nil
}

type testServer struct {
	*httptest.Server
	jwt      jwt.Service
	payroll  *stubPayroll
	payslips *stubPayslips
	hub      *sse.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtService, err := jwt.NewJWTService(handlerTestSecret, "1h")
	require.NoError(t, err)

	ts := &testServer{
		jwt:      jwtService,
		payroll:  &stubPayroll{},
		payslips: &stubPayslips{},
		hub:      sse.NewHub(),
	}
	router := NewRouter(
		RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}},
		jwtService,
		NewEmployeeHandler(stubDirectory{}),
		NewAttendanceHandler(stubAggregator{}),
		NewPayrollHandler(ts.payroll, ts.payslips, jwtService, ts.hub),
	)
	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) token(t *testing.T, actor auth.Actor) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(actor)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path string, actor *auth.Actor, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, ts.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		req.Header.Set("Authorization", "Bearer "+ts.token(t, *actor))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}
