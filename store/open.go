package store

import (
	"context"
	"fmt"

	"github.com/junaidrashid-git/cart-api/config"
)

// Open connects the backend selected by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DBDriver {
	case "mongo":
		m, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "postgres":
		g, err := OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}
