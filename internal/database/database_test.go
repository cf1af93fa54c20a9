package database

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestDialectFor(t *testing.T) {
	c := qt.New(t)

	for driver, want := range map[string]Dialect{"pgx": DialectPostgres, "postgres": DialectPostgres, " SQLite ": DialectSQLite} {
		got, err := DialectFor(driver)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
	_, err := DialectFor("mysql")
	c.Assert(err, qt.ErrorMatches, `unsupported database driver "mysql"`)
}

func TestOpenSQLiteKeepsMemoryDatabaseAcrossPoolSettings(t *testing.T) {
	c := qt.New(t)
	db, dialect, err := Open(context.Background(), Config{
		Driver:          DriverSQLite,
		DSN:             ":memory:",
		MaxIdleConns:    5,
		ConnMaxIdle:     time.Millisecond,
		ConnMaxLifetime: time.Millisecond,
	})
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = db.Close() })
	c.Assert(dialect, qt.Equals, DialectSQLite)
	c.Assert(MigrateUp(db, dialect), qt.IsNil)

	time.Sleep(20 * time.Millisecond)

	var count int
	c.Assert(db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM jobs").Scan(&count), qt.IsNil)
	c.Assert(count, qt.Equals, 0)
	c.Assert(db.Stats().MaxOpenConnections, qt.Equals, 1)
}

func TestSQLiteDSNAddsPragmas(t *testing.T) {
	c := qt.New(t)

	c.Assert(sqliteDSN(""), qt.Equals, ":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	c.Assert(sqliteDSN("file:jobs.db?cache=shared"), qt.Equals, "file:jobs.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	c.Assert(sqliteDSN("file:jobs.db?_pragma=journal_mode(wal)"), qt.Equals, "file:jobs.db?_pragma=journal_mode(wal)")
}
