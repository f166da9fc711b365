package repository

import (
	"context"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
	"github.com/locvowork/convexhub/apigateway/pkg/googlecloud"
)

// DatastoreStore serves both collections from Cloud Datastore kinds.
type DatastoreStore struct {
	client *googlecloud.Client
}

func NewDatastoreStore(client *googlecloud.Client) *DatastoreStore {
	return &DatastoreStore{client: client}
}

func (s *DatastoreStore) Close() error { return s.client.Close() }

func (s *DatastoreStore) Tasks() domain.TaskRepository { return datastoreTasks{s.client} }

func (s *DatastoreStore) ButtonPresses() domain.ButtonPressRepository {
	return datastorePresses{s.client}
}

func classifyDatastore(err error, write bool) error {
	if googlecloud.IsUnavailableError(err) {
		return domain.ErrStoreUnavailable
	}
	if write && googlecloud.IsRejectedError(err) {
		return domain.ErrWriteRejected
	}
	return nil
}

type datastoreTasks struct{ client *googlecloud.Client }

func (r datastoreTasks) List(ctx context.Context) ([]domain.Task, error) {
	entities, err := r.client.ListTasks(ctx)
	if err != nil {
		return nil, wrap(classifyDatastore, "tasks.list", false, err)
	}

	tasks := make([]domain.Task, 0, len(entities))
	for _, e := range entities {
		tasks = append(tasks, domain.Task{
			ID:          e.ID,
			Text:        e.Text,
			IsCompleted: e.IsCompleted,
			CreatedAt:   e.CreatedAt,
		})
	}
	return tasks, nil
}

type datastorePresses struct{ client *googlecloud.Client }

func (r datastorePresses) Insert(ctx context.Context, pressedAt string) error {
	err := r.client.InsertButtonPress(ctx, &googlecloud.ButtonPress{PressedAt: &pressedAt})
	return wrap(classifyDatastore, "button_presses.insert", true, err)
}

func (r datastorePresses) Count(ctx context.Context) (int, error) {
	n, err := r.client.CountButtonPresses(ctx)
	if err != nil {
		return 0, wrap(classifyDatastore, "button_presses.count", false, err)
	}
	return n, nil
}

func (r datastorePresses) Recent(ctx context.Context, limit int) ([]domain.ButtonPress, error) {
	entities, err := r.client.RecentButtonPresses(ctx, limit)
	if err != nil {
		return nil, wrap(classifyDatastore, "button_presses.recent", false, err)
	}

	presses := make([]domain.ButtonPress, 0, len(entities))
	for _, e := range entities {
		presses = append(presses, domain.ButtonPress{
			ID:        e.ID,
			PressedAt: e.PressedAt,
			CreatedAt: e.CreatedAt,
		})
	}
	return presses, nil
}
