package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/swapbook/swapbook/swapbook"
	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/database/models"
)

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

// New opens the configured backend. Postgres gets a pgx pool for health and
// DDL plus a bun handle over pgdriver; SQLite gets a single-connection bun handle.
func New(ctx context.Context, cfg swapbook.DBConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLite(cfg.Path)
	case config.DriverPostgres, "":
		return newPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func newPostgres(ctx context.Context, cfg swapbook.DBConfig) (*DB, error) {
	var err error
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	for i := 0; i < config.DefaultMaxRetries; i++ {
		var conn net.Conn
		conn, err = net.DialTimeout("tcp", addr, config.NetworkDialTimeout)
		if err == nil {
			conn.Close()
			break
		}
		time.Sleep(config.DefaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", config.DefaultMaxRetries, err)
	}

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(buildBunDSN(cfg))))
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
	}
	return &DB{pool: pool, bunDB: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func buildConnString(cfg swapbook.DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func buildBunDSN(cfg swapbook.DBConfig) string {
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)
}

// NewSQLite opens a SQLite database at path. ":memory:" is accepted for tests.
// The pool is pinned to one connection so transactions serialize.
func NewSQLite(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_fk=1&_busy_timeout=5000", path)
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)
	return &DB{bunDB: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

// FromBun wraps an existing bun handle. Used by tests that manage their own
// connection, e.g. a testcontainers postgres.
func FromBun(db *bun.DB) *DB {
	return &DB{bunDB: db}
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) IsPostgres() bool {
	return db.bunDB.Dialect().Name() == dialect.PG
}

func (db *DB) ExecWithLog(ctx context.Context, query string, args ...interface{}) (int64, error) {
	start := time.Now()
	var (
		affected int64
		err      error
	)
	if db.pool != nil {
		var tag pgconn.CommandTag
		tag, err = db.pool.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
	} else {
		var res sql.Result
		res, err = db.bunDB.ExecContext(ctx, query, args...)
		if err == nil {
			affected, _ = res.RowsAffected()
		}
	}
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", query),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return 0, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", query),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", affected),
	)
	return affected, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates all tables and indexes. Safe to run repeatedly.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Swap)(nil),
		(*models.Notification)(nil),
	}

	for _, model := range tables {
		_, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_swaps_init_address ON swaps(init_address);",
		"CREATE INDEX IF NOT EXISTS idx_swaps_accept_address ON swaps(accept_address);",
		"CREATE INDEX IF NOT EXISTS idx_swaps_trade_id ON swaps(trade_id);",
		"CREATE INDEX IF NOT EXISTS idx_swaps_open_trade_id ON swaps(open_trade_id, status);",
		"CREATE INDEX IF NOT EXISTS idx_swaps_open_market ON swaps(created_at) WHERE swap_mode = 1 AND open_trade_id IS NULL AND status = 1;",
		// at most one completed offer per open-market group
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_swaps_group_winner ON swaps(open_trade_id) WHERE status = 2 AND open_trade_id IS NOT NULL;",
		"CREATE INDEX IF NOT EXISTS idx_notifications_receiver ON notifications(receiver_address, created_at);",
		"CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(receiver_address) WHERE is_read = false;",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connections are working
func (db *DB) Ping(ctx context.Context) error {
	if db.pool != nil {
		if err := db.pool.Ping(ctx); err != nil {
			return fmt.Errorf("pgxpool ping failed: %w", err)
		}
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}
