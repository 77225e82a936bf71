package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/smallbiznis/payrecord/pkg/db"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations
var embeddedMigrations embed.FS

// Run brings the payments schema up to date for the given store type.
func Run(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	dbType = strings.ToLower(strings.TrimSpace(dbType))
	if dbType == db.TypeSQLite {
		return runSQLite(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB, dbType)
}

// RunMigrations applies the embedded SQL migrations for postgres or mysql.
func RunMigrations(sqlDB *sql.DB, dbType string) error {
	if sqlDB == nil {
		return errors.New("migration database handle is required")
	}

	src, err := newSource(dbType)
	if err != nil {
		return err
	}

	driver, err := newDriver(sqlDB, dbType)
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, dbType, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}

// runSQLite applies the sqlite up scripts in order. Every statement is
// idempotent, so no version table is kept.
func runSQLite(conn *gorm.DB) error {
	files, err := fs.Glob(embeddedMigrations, path.Join(migrationsDir, db.TypeSQLite, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		script, err := embeddedMigrations.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		for _, stmt := range strings.Split(string(script), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if err := conn.Exec(stmt).Error; err != nil {
				return fmt.Errorf("apply %s: %w", path.Base(file), err)
			}
		}
	}
	return nil
}

func newSource(dbType string) (source.Driver, error) {
	sub, err := fs.Sub(embeddedMigrations, path.Join(migrationsDir, dbType))
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	driver, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source for %s: %w", dbType, err)
	}
	return driver, nil
}

func newDriver(sqlDB *sql.DB, dbType string) (database.Driver, error) {
	switch dbType {
	case db.TypePostgres:
		return postgres.WithInstance(sqlDB, &postgres.Config{})
	case db.TypeMySQL:
		return mysql.WithInstance(sqlDB, &mysql.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration target %q", dbType)
	}
}
