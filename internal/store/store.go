package store

import (
	"context"
	"fmt"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/db"
	"github.com/geocoder89/commenthub/internal/repo"
	"github.com/geocoder89/commenthub/internal/repo/memory"
	"github.com/geocoder89/commenthub/internal/repo/mongodb"
	"github.com/geocoder89/commenthub/internal/repo/postgres"
	"github.com/geocoder89/commenthub/internal/service"
)

// Stores is the persistence backend picked by STORE_DRIVER.
type Stores struct {
	Driver   string
	Users    service.UserStore
	Comments service.CommentStore

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the configured backend and prepares it: the unique email
// index for mongo, the tables for postgres.
func Open(ctx context.Context, cfg config.Config, obs repo.Observer) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := db.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}

		database := client.Database(cfg.MongoDatabase)
		users := mongodb.NewUsersRepo(database, obs)

		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}

		return &Stores{
			Driver:   cfg.StoreDriver,
			Users:    users,
			Comments: mongodb.NewCommentsRepo(database, obs),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    client.Disconnect,
		}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}

		return &Stores{
			Driver:   cfg.StoreDriver,
			Users:    postgres.NewUsersRepo(pool, obs),
			Comments: postgres.NewCommentsRepo(pool, obs),
			ping:     pool.Ping,
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.StoreMemory:
		return &Stores{
			Driver:   cfg.StoreDriver,
			Users:    memory.NewUsersRepo(obs),
			Comments: memory.NewCommentsRepo(obs),
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnknownStore, cfg.StoreDriver)
}
