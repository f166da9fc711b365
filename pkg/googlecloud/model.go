package googlecloud

import (
	"strconv"
	"time"

	"cloud.google.com/go/datastore"
)

const (
	KindTask        = "Task"
	KindButtonPress = "ButtonPress"
)

// GetAll loads through these only when both Load and Save are present.
var (
	_ datastore.PropertyLoadSaver = (*Task)(nil)
	_ datastore.PropertyLoadSaver = (*ButtonPress)(nil)
)

// Task is a Task entity. Entities are schemaless, so it loads property by
// property and leaves CreatedAt nil when created_at is absent or not a
// timestamp.
type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   *time.Time `json:"created_at"`
}

func (t *Task) Load(props []datastore.Property) error {
	for _, p := range props {
		switch p.Name {
		case "text":
			if s, ok := p.Value.(string); ok {
				t.Text = s
			}
		case "is_completed":
			if b, ok := p.Value.(bool); ok {
				t.IsCompleted = b
			}
		case "created_at":
			t.CreatedAt = timestampValue(p.Value)
		}
	}
	return nil
}

func (t *Task) Save() ([]datastore.Property, error) {
	props := []datastore.Property{
		{Name: "text", Value: t.Text, NoIndex: true},
		{Name: "is_completed", Value: t.IsCompleted},
	}
	if t.CreatedAt != nil {
		props = append(props, datastore.Property{Name: "created_at", Value: *t.CreatedAt})
	}
	return props, nil
}

// ButtonPress is a ButtonPress entity. CreatedAt is written by Client at
// insert time and plays the role of the store's creation metadata.
type ButtonPress struct {
	ID        string
	PressedAt *string
	CreatedAt *time.Time
}

func (b *ButtonPress) Load(props []datastore.Property) error {
	for _, p := range props {
		switch p.Name {
		case "pressed_at":
			if s, ok := p.Value.(string); ok {
				b.PressedAt = &s
			}
		case "created_at":
			b.CreatedAt = timestampValue(p.Value)
		}
	}
	return nil
}

func (b *ButtonPress) Save() ([]datastore.Property, error) {
	var props []datastore.Property
	if b.PressedAt != nil {
		props = append(props, datastore.Property{Name: "pressed_at", Value: *b.PressedAt, NoIndex: true})
	}
	if b.CreatedAt != nil {
		props = append(props, datastore.Property{Name: "created_at", Value: *b.CreatedAt})
	}
	return props, nil
}

func timestampValue(v interface{}) *time.Time {
	ts, ok := v.(time.Time)
	if !ok || ts.IsZero() {
		return nil
	}
	return &ts
}

// KeyID renders a key's identifier, whether it is a name or a numeric id.
func KeyID(k *datastore.Key) string {
	if k == nil {
		return ""
	}
	if k.Name != "" {
		return k.Name
	}
	return strconv.FormatInt(k.ID, 10)
}
