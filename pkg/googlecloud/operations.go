package googlecloud

import (
	"context"
	"time"

	"cloud.google.com/go/datastore"
)

// ListTasks returns every Task entity in key order. The query is not ordered
// by created_at since Datastore drops entities lacking the sort property.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	query := datastore.NewQuery(KindTask)

	var tasks []Task
	keys, err := c.ds.GetAll(ctx, query, &tasks)
	if err != nil {
		return nil, err
	}

	for i, key := range keys {
		tasks[i].ID = KeyID(key)
	}
	return tasks, nil
}

// InsertButtonPress stores a new ButtonPress under an auto-generated id and
// stamps its creation time.
func (c *Client) InsertButtonPress(ctx context.Context, press *ButtonPress) error {
	if press.CreatedAt == nil {
		now := time.Now().UTC()
		press.CreatedAt = &now
	}

	// IncompleteKey will auto-generate an int64 ID
	key := datastore.IncompleteKey(KindButtonPress, nil)
	newKey, err := c.ds.Put(ctx, key, press)
	if err != nil {
		return err
	}
	press.ID = KeyID(newKey)
	return nil
}

// CountButtonPresses counts presses with a keys-only query.
func (c *Client) CountButtonPresses(ctx context.Context) (int, error) {
	query := datastore.NewQuery(KindButtonPress).KeysOnly()

	keys, err := c.ds.GetAll(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// RecentButtonPresses returns up to limit presses, newest first.
func (c *Client) RecentButtonPresses(ctx context.Context, limit int) ([]ButtonPress, error) {
	query := datastore.NewQuery(KindButtonPress).
		Order("-created_at").
		Limit(limit)

	var presses []ButtonPress
	keys, err := c.ds.GetAll(ctx, query, &presses)
	if err != nil {
		return nil, err
	}

	for i, key := range keys {
		presses[i].ID = KeyID(key)
	}
	return presses, nil
}
