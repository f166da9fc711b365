package repository

import (
	"context"
	"fmt"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
	"github.com/locvowork/convexhub/apigateway/pkg/googlecloud"
)

// Store is an open backend exposing both collections. It is created once at
// startup and shared by every request.
type Store interface {
	Tasks() domain.TaskRepository
	ButtonPresses() domain.ButtonPressRepository
	Close() error
}

// Config selects and configures the backend.
type Config struct {
	Driver      string
	URL         string
	AccessToken string
	ProjectID   string
	Pool        PoolConfig
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "datastore":
		client, err := googlecloud.NewClient(ctx, cfg.ProjectID, googlecloud.Options{
			Endpoint:    cfg.URL,
			AccessToken: cfg.AccessToken,
		})
		if err != nil {
			return nil, err
		}
		return NewDatastoreStore(client), nil
	case "elastic":
		return OpenElastic(ctx, cfg.URL, cfg.AccessToken, nil)
	case "postgres", "mysql", "sqlite":
		return OpenSQL(ctx, cfg.Driver, cfg.URL, cfg.Pool)
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}
