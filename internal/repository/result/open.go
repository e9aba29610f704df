package result

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wb-go/wbf/dbpg"
	_ "modernc.org/sqlite"

	"github.com/aliskhannn/watermarker/internal/config"
)

// Open connects to the journal database described by cfg, runs migrations
// and returns the repository with a function that closes the connection.
func Open(ctx context.Context, cfg config.Journal) (*Repository, func() error, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := dbpg.New(cfg.DSN, nil, &dbpg.Options{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to journal database: %w", err)
		}

		return migrated(ctx, NewRepository(db), db.Master.Close)

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open journal database: %w", err)
		}
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)

		return migrated(ctx, NewRepository(db), db.Close)

	default:
		return nil, nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}
}

func migrated(ctx context.Context, repo *Repository, closeFn func() error) (*Repository, func() error, error) {
	if err := repo.Migrate(ctx); err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	return repo, closeFn, nil
}
