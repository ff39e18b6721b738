package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rxprev/adapters/api"
	"rxprev/adapters/excel"
	"rxprev/adapters/postgres"
	"rxprev/adapters/stats/engine"
	"rxprev/adapters/stats/senses"
	"rxprev/adapters/tsv"
	"rxprev/app"
	"rxprev/domain/core"
	"rxprev/internal"
	"rxprev/internal/config"
	"rxprev/internal/errors"
	"rxprev/internal/genes"
	"rxprev/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer), nil without DATABASE_URL
	RunRepo ports.RunRepository

	// Statistics and lookups
	Senses *senses.SenseEngine
	Genes  *genes.Table
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(cfg.LogLevel)
	}

	return &Container{
		Config: cfg,
		Logger: logger,
		Senses: senses.NewSenseEngine(),
		Genes:  genes.Default(),
	}, nil
}

// InitWithDatabase connects the run store when one is configured
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Logger.Debug("DATABASE_URL not set, runs will not be persisted")
		return nil
	}

	db, err := postgres.Open(ctx, c.Config.Database.URL)
	if err != nil {
		return errors.Wrap(err, "failed to initialize run store")
	}
	c.DB = db
	c.RunRepo = postgres.NewRunRepository(db)

	c.Logger.Info("Run store initialized (%s)", db.DriverName())
	return nil
}

// PrevalenceService builds a report service for the given report settings
func (c *Container) PrevalenceService(report config.ReportConfig) (*app.PrevalenceService, error) {
	evaluator, err := engine.NewEvaluator(c.Senses, report.Test, report.FlagSelection, c.Logger)
	if err != nil {
		return nil, errors.InvalidInput("cannot build evaluator", err)
	}
	return app.NewPrevalenceService(evaluator, c.RunRepo, c.Logger), nil
}

// ObservationReader picks a reader for source: "-" is stdin, http(s) URLs
// are fetched, .csv and .xlsx files are read as sheets and anything else is
// read as a JSON file.
func (c *Container) ObservationReader(source string) (ports.ObservationReader, error) {
	switch {
	case source == "":
		return nil, errors.InvalidInput("no observation source given", core.ErrUnsupportedSource)
	case source == "-":
		return api.NewFileReader(source, c.Logger), nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return api.NewAPIReader(&api.APIDataSource{URL: source}, c.Logger), nil
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv", ".xlsx":
		return excel.NewDataReader(source, c.Logger), nil
	case ".json", "":
		return api.NewFileReader(source, c.Logger), nil
	}
	return nil, errors.InvalidInput("unsupported observation source "+source, core.ErrUnsupportedSource)
}

// ReportWriter picks a writer for target: "-" or empty writes TSV to
// stdout, .xlsx writes a workbook and anything else a TSV file. The returned
// closer must be called once the report is written.
func (c *Container) ReportWriter(target string, stdout io.Writer) (ports.ReportWriter, io.Closer, error) {
	if target == "" || target == "-" {
		return tsv.NewWriter(stdout), nopCloser{}, nil
	}
	if strings.EqualFold(filepath.Ext(target), ".xlsx") {
		return excel.NewReportWriter(target), nopCloser{}, nil
	}

	f, err := os.Create(target)
	if err != nil {
		return nil, nil, errors.IOError("failed to create "+target, err)
	}
	return tsv.NewWriter(f), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
