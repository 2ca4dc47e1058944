package utils

import (
	"context"
	"database/sql"
	"fmt"
	"vnadmin/internal/config"
	"vnadmin/internal/logger"

	_ "github.com/lib/pq"
)

// OpenPostgres：按配置打开连接池并探活；批处理只需少量连接
func OpenPostgres(ctx context.Context, opts config.PostgresOptions) (*sql.DB, error) {
	db, err := sql.Open("postgres", opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s:%s: %w", opts.Host, opts.Port, err)
	}
	logger.L().Debug("postgres_open", "host", opts.Host, "db", opts.DB)
	return db, nil
}
