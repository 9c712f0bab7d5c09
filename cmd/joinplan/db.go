package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/pthm/joinplan/internal/cli"
)

// resolveDSN returns the flag value if set, otherwise the DSN from config.
func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return "", cli.ConfigError("database configuration", err)
	}
	return dsn, nil
}

// openDB opens and pings a connection with the configured driver
// ("postgres" is lib/pq, "pgx" is pgx's database/sql adapter).
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, cli.DBConnectError("connecting to database", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, cli.DBConnectError("connecting to database", err)
	}
	return db, nil
}
