package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	dbMaxOpenConns    = 20
	dbMaxIdleConns    = 10
	dbConnMaxLifetime = 30 * time.Minute
	dbPingTimeout     = 5 * time.Second

	maxTracedQueryLength = 512
	preparedBinaryOption = "disable_prepared_binary_result"
)

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn, err := postgresDSN(cfg.DBURL, cfg.DBDisablePreparedBinary)
	if err != nil {
		return nil, fmt.Errorf("parse DB_URL: %w", err)
	}

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dsnValue(dsn, "dbname")),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// postgresDSN turns DB_URL into lib/pq key/value form. URL input is
// converted; key/value input passes through. An explicit
// disable_prepared_binary_result in the input always wins.
func postgresDSN(raw string, disablePreparedBinary bool) (string, error) {
	dsn := strings.TrimSpace(raw)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		converted, err := pq.ParseURL(dsn)
		if err != nil {
			return "", err
		}
		dsn = converted
	}
	if disablePreparedBinary && dsnValue(dsn, preparedBinaryOption) == "" {
		dsn += " " + preparedBinaryOption + "=yes"
	}
	return dsn, nil
}

// dsnValue reads one key from a key/value DSN. Quoted values containing
// spaces are not supported.
func dsnValue(dsn, key string) string {
	for _, field := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(field, "=")
		if ok && k == key {
			return strings.Trim(v, `'"`)
		}
	}
	return ""
}

// traceQuery collapses whitespace so span attributes stay readable and bounded.
func traceQuery(query string) string {
	q := strings.Join(strings.Fields(query), " ")
	if len(q) > maxTracedQueryLength {
		return q[:maxTracedQueryLength] + "..."
	}
	return q
}
