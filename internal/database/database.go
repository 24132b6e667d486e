package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blogr/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Executor is the query surface shared by *sqlx.DB and *sqlx.Conn.
type Executor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type DB struct {
	*sqlx.DB
}

func New(db *sqlx.DB) *DB {
	return &DB{DB: db}
}

// DataSource returns the driver name and DSN described by cfg.
func DataSource(cfg config.DB) (string, string, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return DriverPostgres, fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DbHOST,
			cfg.DbPORT,
			cfg.DbUSER,
			cfg.DbPASSWORD,
			cfg.DbNAME,
			cfg.DbSSLMODE,
		), nil
	case DriverSQLite:
		return DriverSQLite, "file:" + cfg.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", nil
	default:
		return "", "", errors.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Connect opens the pool, checks it and applies the schema if the tables do
// not exist yet.
func Connect(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*DB, error) {
	driver, dsn, err := DataSource(cfg.DB)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DB.SQLitePath), 0o755); err != nil {
			return nil, errors.Wrap(err, "create instance directory")
		}
		log.WithField("path", cfg.DB.SQLitePath).Info("connecting to sqlite")
	} else {
		log.WithFields(logrus.Fields{"host": cfg.DB.DbHOST, "dbname": cfg.DB.DbNAME}).Info("connecting to postgres")
	}

	sqlxDB, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	sqlxDB.SetMaxOpenConns(25)
	sqlxDB.SetMaxIdleConns(5)
	sqlxDB.SetConnMaxLifetime(30 * time.Minute)

	db := New(sqlxDB)
	if err := db.Migrate(ctx); err != nil {
		sqlxDB.Close()
		return nil, err
	}

	if err := db.HealthCheck(ctx); err != nil {
		sqlxDB.Close()
		return nil, errors.Wrap(err, "database health check")
	}

	log.Info("connected to database")
	return db, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

func schema(driver string) (string, error) {
	b, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return "", errors.Wrapf(err, "no schema for driver %s", driver)
	}
	return string(b), nil
}

// Migrate creates the tables that do not exist. Existing data is kept.
func (db *DB) Migrate(ctx context.Context) error {
	sqlText, err := schema(db.DriverName())
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, sqlText); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

// Reset drops both tables and recreates them from the schema. All data is
// lost.
func (db *DB) Reset(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS posts`); err != nil {
		return errors.Wrap(err, "drop posts")
	}
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS users`); err != nil {
		return errors.Wrap(err, "drop users")
	}
	return db.Migrate(ctx)
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return errors.New("database connection is not initialized")
	}

	return db.PingContext(ctx)
}

// Handle returns the executor for ctx: the request's lazily opened connection
// when ctx carries a Scope, the pool otherwise.
func (db *DB) Handle(ctx context.Context) (Executor, error) {
	if scope := ScopeFrom(ctx); scope != nil {
		return scope.Handle(ctx)
	}
	return db.DB, nil
}
