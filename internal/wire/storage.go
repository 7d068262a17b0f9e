package wire

import (
	"context"
	"fmt"

	"user-admin/internal/data/repository"
	"user-admin/pkg/cache"
	"user-admin/pkg/database"
	"user-admin/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Storage is the set of opened backends. DB and Redis are nil when unused.
type Storage struct {
	Repo  *repository.Repository
	DB    database.PgxIface
	Redis *redis.Client
}

// Pinger returns the backend probed by /health, or nil for in-memory storage.
func (s *Storage) Pinger() Pinger {
	if s.DB == nil {
		return nil
	}
	return s.DB
}

func (s *Storage) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

// OpenStorage selects the user store and the session store from config,
// migrating the schema when postgres is used.
func OpenStorage(ctx context.Context, config *utils.Config, logger *zap.Logger) (*Storage, error) {
	storage := &Storage{}

	switch config.App.Storage {
	case utils.StorageMemory:
		storage.Repo = repository.NewInMemoryRepository()
		logger.Warn("Using in-memory storage, data is lost on restart")

	case utils.StoragePostgres:
		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			return nil, err
		}
		storage.DB = db
		logger.Info("Database connected successfully")

		if err := database.Migrate(ctx, db, logger); err != nil {
			storage.Close()
			return nil, err
		}
		storage.Repo = repository.NewRepository(db, logger)

	default:
		return nil, fmt.Errorf("unknown storage %q", config.App.Storage)
	}

	switch config.Session.Store {
	case utils.StoragePostgres:
		if storage.DB == nil {
			storage.Close()
			return nil, fmt.Errorf("session store %q requires postgres storage", config.Session.Store)
		}

	case utils.StorageRedis:
		client, err := cache.InitRedis(ctx, config.Redis)
		if err != nil {
			storage.Close()
			return nil, err
		}
		storage.Redis = client
		storage.Repo.Session = repository.NewRedisSessionRepository(client, logger)
		logger.Info("Redis session store connected", zap.String("addr", config.Redis.Addr))

	case utils.StorageMemory:
		if storage.DB != nil {
			storage.Repo.Session = repository.NewInMemoryRepository().Session
		}

	default:
		storage.Close()
		return nil, fmt.Errorf("unknown session store %q", config.Session.Store)
	}

	return storage, nil
}
