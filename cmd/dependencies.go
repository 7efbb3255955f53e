package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/payroll-management/internal/attendance/postgres"
	"github.com/frahmantamala/payroll-management/internal/core/events"
	"github.com/frahmantamala/payroll-management/internal/employee"
	employeePostgres "github.com/frahmantamala/payroll-management/internal/employee/postgres"
	"github.com/frahmantamala/payroll-management/internal/payroll"
	payrollPostgres "github.com/frahmantamala/payroll-management/internal/payroll/postgres"
	"github.com/frahmantamala/payroll-management/internal/slip"
	"github.com/frahmantamala/payroll-management/internal/structure"
	structurePostgres "github.com/frahmantamala/payroll-management/internal/structure/postgres"
	"github.com/frahmantamala/payroll-management/internal/template"
	templatePostgres "github.com/frahmantamala/payroll-management/internal/template/postgres"
	"github.com/frahmantamala/payroll-management/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Gorm       *gorm.DB
	Bus        *events.EventBus
	Templates  *template.Service
	Structures *structure.Service
	Attendance *attendance.Service
	Employees  *employee.Directory
	Payroll    *payroll.Service
	Logger     *slog.Logger
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return buildDependencies(config)
}

func buildDependencies(config *internal.Config) (*Dependencies, error) {
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db, config.Observability.Logging)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(lg)

	templateService := template.NewService(templatePostgres.NewTemplateRepository(gdb), lg)
	structureService := structure.NewService(structurePostgres.NewStructureRepository(gdb), lg)
	attendanceService := attendance.NewService(attendancePostgres.NewAttendanceRepository(db), lg)
	directory := employee.NewDirectory(employeePostgres.NewEmployeeRepository(db), lg)

	calculator := payroll.NewCalculator(templateService, structureService, attendanceService, payroll.CalculatorConfig{
		Workers:       config.Payroll.Workers,
		LookupTimeout: config.Payroll.LookupTimeout,
	}, lg)

	salaries := payrollPostgres.NewSalaryRepository(gdb)
	gate := payroll.NewGate(salaries, lg)
	approvals := payroll.NewApprovals(salaries, bus, lg)
	payrollService := payroll.NewService(directory, calculator, gate, approvals, bus, lg)

	generator := newSlipGenerator(config.Slip, lg)
	if generator != nil {
		slip.NewDispatcher(payrollService, generator, lg).RegisterEventHandlers(bus)
	}

	return &Dependencies{
		Config:     config,
		DB:         db,
		Gorm:       gdb,
		Bus:        bus,
		Templates:  templateService,
		Structures: structureService,
		Attendance: attendanceService,
		Employees:  directory,
		Payroll:    payrollService,
		Logger:     lg,
	}, nil
}

// Close waits for pending event handlers, then releases the database.
func (d *Dependencies) Close(ctx context.Context) {
	if err := d.Bus.Drain(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func newSlipGenerator(cfg internal.SlipConfig, lg *slog.Logger) slip.Generator {
	switch cfg.Mode {
	case "http":
		lg.Info("slips are sent to the document service", "service_url", cfg.ServiceURL)
		return slip.NewHTTPGenerator(slip.HTTPConfig{
			ServiceURL: cfg.ServiceURL,
			APIKey:     cfg.APIKey,
			Timeout:    cfg.Timeout,
		}, lg)
	case "pdf":
		lg.Info("slips are rendered locally", "output_dir", cfg.OutputDir)
		return slip.NewPDFGenerator(cfg.OutputDir, lg)
	default:
		lg.Info("slip generation disabled")
		return nil
	}
}

// initDB opens the pgx-backed pool shared by sqlx adapters and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initGorm(db *sqlx.DB, logging internal.LoggingConfig) (*gorm.DB, error) {
	level := gormLogger.Warn
	if logging.Level == "debug" {
		level = gormLogger.Info
	}

	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(level),
	})
}
