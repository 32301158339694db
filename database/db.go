package database

import (
	"context"
	"database/sql"
	"embed"

	"emperror.dev/errors"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
	migrate "github.com/rubenv/sql-migrate"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"

	// pgx driver for migrations
	_ "github.com/jackc/pgx/v4/stdlib"
)

// ErrNotFound is returned when a row does not exist
const ErrNotFound = errors.Sentinel("row not found")

// sq is a squirrel builder for postgres
var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

//go:embed migrations
var fs embed.FS

// DB wraps the pgx pool used for every query
type DB struct {
	*pgxpool.Pool
}

// New runs pending migrations and connects the pool
func New(ctx context.Context, url string) (*DB, error) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if _, err := Migrate(ctx, url); err != nil {
		return nil, err
	}

	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	return &DB{Pool: pool}, nil
}

// Migrate applies the embedded migrations and returns how many ran
func Migrate(ctx context.Context, url string) (int, error) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	db, err := sql.Open("pgx", url)
	if err != nil {
		return 0, errors.Wrap(err, "opening database")
	}

	// only migrations go through database/sql, queries use the native pool
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, errors.Wrap(err, "pinging database")
	}

	migrate.SetTable("migration_history")

	n, err := migrate.Exec(db, "postgres", migrationSource(), migrate.Up)
	if err != nil {
		return 0, errors.Wrap(err, "running migrations")
	}

	ctx = logging.AddValues(ctx, zap.Int("migrations", n))
	logger := logging.Logger(ctx)
	logger.Info("database_log")

	return n, nil
}

func migrationSource() *migrate.EmbedFileSystemMigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: fs,
		Root:       "migrations",
	}
}
