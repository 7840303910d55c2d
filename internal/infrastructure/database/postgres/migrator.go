package postgres

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patlytics/patscope/internal/config"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// migrationsTable keeps the tool's migration bookkeeping out of the way of
// anything else living in the shared PATSTAT database.
const migrationsTable = "patscope_schema_migrations"

// Migrator applies the run-store schema migrations.  Only the tool-owned
// `patscope` schema is ever touched; the PATSTAT tables are read-only data
// this tool does not manage.
type Migrator struct {
	cfg    config.DatabaseConfig
	logger logging.Logger
}

// NewMigrator wires a Migrator.
func NewMigrator(cfg config.DatabaseConfig, log logging.Logger) *Migrator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Migrator{cfg: cfg, logger: log.Named("migrate")}
}

// Up applies all pending migrations from the configured migration directory.
// Already-current databases are a no-op, not an error.
func (m *Migrator) Up() error {
	db, err := sql.Open("pgx", BuildDSN(m.cfg))
	if err != nil {
		return errors.Wrap(err, errors.CodeMigrationError, "failed to open migration connection")
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeMigrationError, "failed to create migration driver")
	}

	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+m.cfg.MigrationPath,
		m.cfg.DBName,
		driver,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeMigrationError, "failed to create migrate instance")
	}

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		version, _, _ := mig.Version()
		return errors.Wrap(err, errors.CodeMigrationError,
			fmt.Sprintf("migration failed at version %d", version))
	}

	version, dirty, err := mig.Version()
	if err != nil && err != migrate.ErrNilVersion {
		m.logger.Warn("failed to read migration version", logging.Err(err))
	}

	m.logger.Info("migrations applied",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}
