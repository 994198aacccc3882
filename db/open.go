// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the database named by dbType ("sqlite" or "postgres") and
// verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	var driver, dsn string
	switch dbType {
	case "sqlite":
		driver, dsn = "sqlite", sqliteDSN(url)
	case "postgres":
		driver, dsn = "postgres", url
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dbType, err)
	}
	if dbType == "sqlite" {
		// One writer at a time; the election already serializes writes.
		conn.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s db: %w", dbType, err)
	}
	return conn, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
