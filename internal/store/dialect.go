package store

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourorg/salesdash/internal/config"
)

// Dialect covers the SQL differences between the supported databases.
type Dialect interface {
	Name() string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	IsUniqueViolation(err error) bool
}

// DialectFor returns the dialect matching a configured DB_DRIVER.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverMySQL:
		return MySQL, nil
	case config.DriverPostgres:
		return Postgres, nil
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
}

var (
	MySQL    Dialect = mysqlDialect{}
	Postgres Dialect = postgresDialect{}
)

type mysqlDialect struct{}

func (mysqlDialect) Name() string           { return config.DriverMySQL }
func (mysqlDialect) Placeholder(int) string { return "?" }

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

func (mysqlDialect) IsUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

type postgresDialect struct{}

func (postgresDialect) Name() string             { return config.DriverPostgres }
func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// unique_violation
const pgUniqueViolation = "23505"

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
