package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cupoftea4/retail-pos/models"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	maxAttempts = 3
)

var retryDelay = 2 * time.Second

// ErrStaleRow reports a conditional update that lost a race with another
// transaction. WithTx retries the unit of work immediately.
var ErrStaleRow = errors.New("row changed by a concurrent transaction")

type Store struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

func NewStore(db *sql.DB, driver string, logger *zap.Logger) *Store {
	return &Store{db: db, driver: driver, logger: logger}
}

// Open connects to the configured engine and verifies the connection.
// SQLite DSNs may be a plain file path; foreign keys are always enabled.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	var err error
	switch driver {
	case DriverSQLite:
		dsn, err = sqliteDSN(dsn)
	case DriverMySQL:
		dsn, err = mysqlDSN(dsn)
	default:
		err = fmt.Errorf("unsupported driver %q: %w", driver, models.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// single writer; also keeps an in-memory database on one connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	return NewStore(db, driver, logger), nil
}

func sqliteDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "file:") {
		if !strings.Contains(dsn, "foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=foreign_keys(1)"
		}
		return dsn, nil
	}
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	return "file:" + dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
}

func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	// conditional updates compare matched rows, not changed rows
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func (s *Store) Driver() string { return s.driver }

func (s *Store) Close() error { return s.db.Close() }

// WithTx runs fn as one unit of work: the transaction is committed when fn
// returns nil and rolled back otherwise, including on panic. Transient engine
// errors restart the whole unit up to maxAttempts times, so fn must not keep
// side effects outside the transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if errors.Is(err, ErrStaleRow) {
			s.logger.Debug("optimistic update conflict, retrying", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		if err == nil || !isTransientError(err) {
			return err
		}
		s.logger.Warn("transaction failed, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, err)
}

func (s *Store) runTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			sqlTx.Rollback()
		}
	}()

	if err = fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

// Tx is the handle passed to a unit of work.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

func (t *Tx) countRows(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, classify(err)
	}
	return count, nil
}

// classify maps engine constraint errors onto the domain error kinds while
// keeping the driver error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062: // ER_DUP_ENTRY
			return fmt.Errorf("%w: %w", models.ErrDuplicateName, err)
		case 1451, 1452, 3819: // FK parent/child, CHECK constraint
			return fmt.Errorf("%w: %w", models.ErrIntegrity, err)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %w", models.ErrDuplicateName, err)
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
			sqlite3.SQLITE_CONSTRAINT_CHECK,
			sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %w", models.ErrIntegrity, err)
		}
	}
	return err
}

// isTransientError reports whether retrying the unit of work may succeed.
func isTransientError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1040, // ER_CON_COUNT_ERROR: Too many connections
			1205, // ER_LOCK_WAIT_TIMEOUT: Lock wait timeout exceeded
			1213, // ER_LOCK_DEADLOCK: Deadlock found
			2003, // CR_CONN_HOST_ERROR: Can't connect to MySQL server on 'host'
			2006, // CR_SERVER_GONE_ERROR: MySQL server has gone away
			2013: // CR_SERVER_LOST: Lost connection to MySQL server during query
			return true
		}
		return false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code() & 0xff
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return errors.Is(err, mysql.ErrInvalidConn)
}
