package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/pdf"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/sqlite"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	payslipService "github.com/cmlabs-hris/payroll-engine/internal/service/payslip"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       parseLevel(cfg.App.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if err := postgresql.Migrate(ctx, db); err != nil {
		log.Fatal("Error migrating database: ", err)
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	var cycleRepo payroll.CycleRepository
	switch cfg.Ledger.Driver {
	case "postgres":
		cycleRepo = postgresql.NewPayrollRepository(db)
	case "sqlite":
		store, err := sqlite.New(cfg.Ledger.SQLitePath)
		if err != nil {
			log.Fatal("Failed to open sqlite ledger: ", err)
		}
		defer store.Close()
		cycleRepo = store
	default:
		log.Fatal("Unsupported ledger driver: ", cfg.Ledger.Driver)
	}

	var historyCache cache.Cache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		defer rdb.Close()
		historyCache = cache.NewRedisCache(rdb)
	} else {
		logger.Info("REDIS_ADDR not set, using in-process history cache")
		historyCache = cache.NewMemoryCache()
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage: ", err)
		}
	case "memory":
		fileStorage = storage.NewMemoryStorage(cfg.Storage.BaseURL)
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		log.Fatal("Failed to initialize jwt service: ", err)
	}

	hub := sse.NewHub()
	renderer := pdf.NewChromiumRenderer(pdf.Options{
		ChromiumPath: cfg.PDF.ChromiumPath,
		Timeout:      cfg.PDF.Timeout,
	})

	payrollSvc := payrollService.NewPayrollService(
		employeeRepo,
		attendanceRepo,
		cycleRepo,
		historyCache,
		hub,
		payrollService.Options{
			EPFRate:    cfg.Payroll.EPFRate,
			HistoryTTL: cfg.Redis.TTL,
		},
		logger,
	)
	payslipSvc := payslipService.NewPayslipService(payrollSvc, fileStorage, renderer, logger)

	employeeHandler := appHTTP.NewEmployeeHandler(employeeRepo)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceRepo)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc, payslipSvc, JWTService, hub)

	filesDir := ""
	if cfg.Storage.Type == "local" {
		filesDir = cfg.Storage.BasePath
	}
	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			LogLevel:       parseLevel(cfg.App.LogLevel),
			AllowedOrigins: cfg.App.AllowedOrigins,
			FilesDir:       filesDir,
		},
		JWTService,
		employeeHandler,
		attendanceHandler,
		payrollHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server running", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", slog.Any("error", err))
		return
	}
	logger.Info("Server exited gracefully")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
