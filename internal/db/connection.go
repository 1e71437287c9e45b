package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// OpenSessionDB opens the database/sql pool backing the postgres cookie
// session store and checks that it answers.
func OpenSessionDB(ctx context.Context, dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	sessionDB, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection for session store: %w", err)
	}
	sessionDB.SetMaxOpenConns(10)
	sessionDB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sessionDB.PingContext(pingCtx); err != nil {
		sessionDB.Close()
		return nil, fmt.Errorf("failed to ping database for session store: %w", err)
	}
	return sessionDB, nil
}
