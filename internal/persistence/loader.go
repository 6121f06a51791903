package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coffeestats/coffee-trade-etl/internal/logging"
	"github.com/coffeestats/coffee-trade-etl/internal/model"
)

var log *logrus.Logger = logging.GetLogger()

// Policy decides what Load does when the target table already exists.
type Policy string

const (
	PolicyFail    Policy = "fail"
	PolicyReplace Policy = "replace"
	PolicyAppend  Policy = "append"
)

var ErrTableExists = errors.New("table already exists")

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case PolicyFail, PolicyReplace, PolicyAppend:
		return p, nil
	}
	return "", fmt.Errorf("unknown if-exists policy %q, expected fail, replace or append", s)
}

const defaultBatchSize = 500

// Loader writes dataframes to a relational table. Loads are not
// transactional: a failed batch leaves the rows of earlier batches behind.
type Loader struct {
	DB        *gorm.DB
	BatchSize int
	RunID     string
}

func NewLoader(db *gorm.DB, batchSize int, runID string) *Loader {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Loader{DB: db, BatchSize: batchSize, RunID: runID}
}

// Load writes every row of df to table under policy and returns the number
// of rows written. Missing cells are stored as NULL.
func (l *Loader) Load(df dataframe.DataFrame, table string, policy Policy) (int, error) {
	if df.Err != nil {
		return 0, df.Err
	}
	if df.Ncol() == 0 {
		return 0, fmt.Errorf("nothing to load into %s: table has no columns", table)
	}
	if table == "" {
		return 0, errors.New("table name is required")
	}

	exists := l.DB.Migrator().HasTable(table)
	switch policy {
	case PolicyFail:
		if exists {
			return 0, fmt.Errorf("%w: %s", ErrTableExists, table)
		}
		if err := l.createTable(df, table); err != nil {
			return 0, err
		}
	case PolicyReplace:
		if exists {
			if err := l.DB.Migrator().DropTable(table); err != nil {
				return 0, fmt.Errorf("unable to drop table %s: %w", table, err)
			}
		}
		if err := l.createTable(df, table); err != nil {
			return 0, err
		}
	case PolicyAppend:
		if !exists {
			if err := l.createTable(df, table); err != nil {
				return 0, err
			}
		}
	default:
		return 0, fmt.Errorf("unknown if-exists policy %q", policy)
	}

	// Maps yields nil for missing elements, stored as NULL.
	rows := df.Maps()
	if len(rows) > 0 {
		if err := l.DB.Table(table).CreateInBatches(rows, l.BatchSize).Error; err != nil {
			loadErrors.Inc()
			return 0, fmt.Errorf("unable to insert rows into %s: %w", table, err)
		}
	}
	loadedRows.Add(float64(len(rows)))

	if err := l.recordLoad(df, table, policy, len(rows)); err != nil {
		return len(rows), err
	}
	log.WithFields(logrus.Fields{
		"table":  table,
		"policy": policy,
		"rows":   len(rows),
	}).Info("table load complete")
	return len(rows), nil
}

func (l *Loader) createTable(df dataframe.DataFrame, table string) error {
	dialect := l.DB.Dialector.Name()
	defs := make([]string, df.Ncol())
	vars := []interface{}{clause.Table{Name: table}}
	for i, col := range df.Names() {
		defs[i] = "? " + columnType(dialect, df.Col(col).Type())
		vars = append(vars, clause.Column{Name: col})
	}
	ddl := fmt.Sprintf("CREATE TABLE ? (%s)", strings.Join(defs, ", "))
	if err := l.DB.Exec(ddl, vars...).Error; err != nil {
		return fmt.Errorf("unable to create table %s: %w", table, err)
	}
	return nil
}

// columnType maps a series type to the SQL type of dialect.
func columnType(dialect string, t series.Type) string {
	switch t {
	case series.Int:
		if dialect == "sqlite" {
			return "INTEGER"
		}
		return "BIGINT"
	case series.Float:
		switch dialect {
		case "postgres":
			return "DOUBLE PRECISION"
		case "sqlite":
			return "REAL"
		}
		return "DOUBLE"
	case series.Bool:
		return "BOOLEAN"
	}
	return "TEXT"
}

// recordLoad writes the audit row when the load_runs table is migrated.
func (l *Loader) recordLoad(df dataframe.DataFrame, table string, policy Policy, rows int) error {
	if !l.DB.Migrator().HasTable(&model.LoadRun{}) {
		log.Debug("load_runs table not found, skipping load audit")
		return nil
	}
	names, err := json.Marshal(df.Names())
	if err != nil {
		return err
	}
	run := model.LoadRun{
		RunID:       l.RunID,
		TargetTable: table,
		Policy:      string(policy),
		RowCount:    int64(rows),
		ColumnNames: datatypes.JSON(names),
		LoadedAt:    time.Now().UTC(),
	}
	if err := run.CreateLoadRun(l.DB); err != nil {
		return fmt.Errorf("unable to record load of %s: %w", table, err)
	}
	return nil
}
