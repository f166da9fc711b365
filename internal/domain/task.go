package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Task is a document of the tasks collection. Tasks are created and edited
// outside this service; here they are only read.
type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// MarshalJSON reports CreatedAt in TimestampLayout, or null when absent.
func (t Task) MarshalJSON() ([]byte, error) {
	var createdAt *string
	if t.CreatedAt != nil && !t.CreatedAt.IsZero() {
		s := FormatTimestamp(*t.CreatedAt)
		createdAt = &s
	}
	return json.Marshal(struct {
		ID          string  `json:"id"`
		Text        string  `json:"text"`
		IsCompleted bool    `json:"isCompleted"`
		CreatedAt   *string `json:"createdAt"`
	}{t.ID, t.Text, t.IsCompleted, createdAt})
}

// TaskStats are the header counters of the dashboard.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	InFlight  int `json:"inFlight"`
}

func NewTaskStats(tasks []Task) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.IsCompleted {
			stats.Completed++
		}
	}
	stats.InFlight = stats.Total - stats.Completed
	return stats
}

// TaskRepository reads the tasks collection.
type TaskRepository interface {
	// List returns every task in the store's iteration order.
	List(ctx context.Context) ([]Task, error)
}
