package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	// FilesDir, when set, serves archived payslips under /api/v1/files.
	FilesDir string
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, employeeHandler EmployeeHandler, attendanceHandler AttendanceHandler, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Payslip-Path"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE authenticates with a query token
		r.Get("/payroll/employees/{employeeID}/events", payrollHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireViewer)
				r.Get("/employees", employeeHandler.List)
				r.Get("/employees/{employeeID}", employeeHandler.GetByID)
				r.Get("/attendance/employees/{employeeID}", attendanceHandler.GetTotals)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Post("/events/token", payrollHandler.GetSSEToken)

				r.Route("/employees/{employeeID}", func(r chi.Router) {
					r.Post("/preview", payrollHandler.Preview)
					r.Post("/finalize", payrollHandler.Finalize)
					r.Post("/payslip", payrollHandler.ExportPayslip)

					r.Get("/history", payrollHandler.ListHistory)
					r.Get("/history/{year}/{month}", payrollHandler.GetCycle)
					r.Get("/history/{year}/{month}/payslip", payrollHandler.ExportCyclePayslip)
				})
			})

			if opts.FilesDir != "" {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Handle("/files/*", http.StripPrefix("/api/v1/files/", http.FileServer(http.Dir(opts.FilesDir))))
				})
			}
		})
	})
	return r
}
