// Package testutil provides a disposable PostgreSQL database for integration
// tests. A single container is started per test binary; every DB call gets
// its own freshly created database inside it.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// BlogSQL creates and populates the blog tables used across the tests:
// users, roles, bios, articles, comments, tags and the article_tags join
// table.
//
//go:embed testdata/blog.sql
var BlogSQL string

var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error
)

// adminDSN returns the DSN of the server tests create databases in. A
// configured DATABASE_URL wins over starting a container.
func adminDSN() (string, error) {
	if cfg := GetDatabaseConfig(); cfg.URL != "" {
		return cfg.URL, nil
	}
	singletonOnce.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("PostgreSQL connection string: %w", err)
			return
		}
		// ryuk reaps the container when the test binary exits.
		singletonDSN = dsn
	})
	return singletonDSN, singletonErr
}

// DB returns a connection to a new empty database with ddl applied, dropped
// when the test completes. It skips the test under -short.
func DB(tb testing.TB, ddl ...string) *sql.DB {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping database test in short mode")
	}

	admin, err := adminDSN()
	require.NoError(tb, err, "failed to reach PostgreSQL")

	name := uniqueDBName("joinplan")
	require.NoError(tb, exec(context.Background(), admin, "CREATE DATABASE "+name), "failed to create test database")

	db, err := sql.Open("pgx", replaceDBName(admin, name))
	require.NoError(tb, err, "failed to connect to test database")
	require.NoError(tb, db.Ping(), "failed to ping test database")

	tb.Cleanup(func() {
		_ = db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = dropDatabase(ctx, admin, name)
	})

	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(tb, err, "failed to apply test DDL")
	}
	return db
}

// DSN returns the connection string of db's database, for code under test
// that opens its own connection. It skips the test under -short.
func DSN(tb testing.TB, ddl ...string) string {
	tb.Helper()
	db := DB(tb, ddl...)
	var name string
	require.NoError(tb, db.QueryRow("SELECT current_database()").Scan(&name))
	admin, err := adminDSN()
	require.NoError(tb, err)
	return replaceDBName(admin, name)
}

func uniqueDBName(prefix string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

func exec(ctx context.Context, dsn, stmt string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, stmt)
	return err
}

func dropDatabase(ctx context.Context, admin, name string) error {
	return exec(ctx, admin, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
}

// replaceDBName swaps the database name of a postgres:// DSN.
func replaceDBName(dsn, name string) string {
	i := strings.LastIndex(dsn, "/")
	if i < 0 {
		return dsn
	}
	rest := ""
	if q := strings.IndexByte(dsn[i:], '?'); q >= 0 {
		rest = dsn[i+q:]
	}
	return dsn[:i+1] + name + rest
}
