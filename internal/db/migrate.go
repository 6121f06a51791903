package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/coffeestats/coffee-trade-etl/internal/logging"
	"github.com/coffeestats/coffee-trade-etl/migrations"
)

// Direction of a schema migration.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies the embedded migrations of the gorm connection's dialect.
// The connection stays open and usable afterwards.
func Migrate(gdb *gorm.DB, dbName string, dir Direction) error {
	log := logging.GetLogger()
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("unable to get *sql.DB: %w", err)
	}

	var (
		driver    database.Driver
		sourceDir string
	)
	switch dialect := gdb.Dialector.Name(); dialect {
	case "mysql":
		sourceDir = "mysql"
		driver, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	case "postgres":
		sourceDir = "postgres"
		driver, err = migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	case "sqlite":
		sourceDir = "sqlite3"
		driver, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("no migrations for dialect %s", dialect)
	}
	if err != nil {
		return fmt.Errorf("unable to get db driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, sourceDir)
	if err != nil {
		return fmt.Errorf("unable to read migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return fmt.Errorf("unable to get migration instance: %w", err)
	}

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("database schema is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", dir, err)
	}
	log.Infof("database migration %s complete", dir)
	return nil
}
