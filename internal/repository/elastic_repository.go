package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

const (
	indexTasks         = "tasks"
	indexButtonPresses = "buttonpresses"

	scrollPageSize = 500

	// pressPipeline stamps created_at with the cluster's ingest time.
	pressPipeline = "buttonpresses-created-at"
)

const pressPipelineBody = `{
  "description": "stamps button presses with the ingest time",
  "processors": [
    {"set": {"field": "created_at", "value": "{{_ingest.timestamp}}"}}
  ]
}`

// ElasticStore keeps each collection in its own index. Inserts wait for a
// refresh so a following summary sees the new press.
type ElasticStore struct {
	client *elastic.Client
}

// OpenElastic connects to the cluster at url, authenticating every request
// with the API key token, and installs the ingest pipeline that assigns
// created_at to new presses.
func OpenElastic(ctx context.Context, url, token string, httpClient *http.Client) (*ElasticStore, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	}
	if token != "" {
		opts = append(opts, elastic.SetHeaders(http.Header{"Authorization": []string{"ApiKey " + token}}))
	}
	if httpClient != nil {
		opts = append(opts, elastic.SetHttpClient(httpClient))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create elastic client: %w", err)
	}

	if _, err := client.IngestPutPipeline(pressPipeline).BodyString(pressPipelineBody).Do(ctx); err != nil {
		client.Stop()
		return nil, wrap(classifyElastic, "pipeline.put", false, err)
	}
	return &ElasticStore{client: client}, nil
}

func (s *ElasticStore) Close() error {
	s.client.Stop()
	return nil
}

func (s *ElasticStore) Tasks() domain.TaskRepository { return elasticTasks{s.client} }

func (s *ElasticStore) ButtonPresses() domain.ButtonPressRepository {
	return elasticPresses{s.client}
}

func classifyElastic(err error, write bool) error {
	if elastic.IsConnErr(err) || elastic.IsTimeout(err) {
		return domain.ErrStoreUnavailable
	}
	var esErr *elastic.Error
	if errors.As(err, &esErr) {
		switch {
		case esErr.Status == http.StatusServiceUnavailable || esErr.Status == http.StatusGatewayTimeout:
			return domain.ErrStoreUnavailable
		case write && esErr.Status >= 400 && esErr.Status < 500:
			return domain.ErrWriteRejected
		}
	}
	return nil
}

type elasticTaskDoc struct {
	Text        string          `json:"text"`
	IsCompleted bool            `json:"is_completed"`
	CreatedAt   json.RawMessage `json:"created_at,omitempty"`
}

type elasticPressDoc struct {
	PressedAt *string         `json:"pressed_at,omitempty"`
	CreatedAt json.RawMessage `json:"created_at,omitempty"`
}

// parseTimestamp accepts an RFC 3339 string or epoch milliseconds and yields
// nil for anything else.
func parseTimestamp(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil
		}
		t = t.UTC()
		return &t
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	return nil
}

type elasticTasks struct{ client *elastic.Client }

func (r elasticTasks) List(ctx context.Context) ([]domain.Task, error) {
	scroll := r.client.Scroll(indexTasks).
		SortBy(elastic.NewFieldSort("created_at").Asc().UnmappedType("date")).
		Size(scrollPageSize)
	defer scroll.Clear(context.Background())

	tasks := make([]domain.Task, 0)
	for {
		res, err := scroll.Do(ctx)
		if err == io.EOF {
			return tasks, nil
		}
		if elastic.IsNotFound(err) {
			return tasks, nil
		}
		if err != nil {
			return nil, wrap(classifyElastic, "tasks.list", false, err)
		}
		if res.Hits == nil {
			return tasks, nil
		}
		for _, hit := range res.Hits.Hits {
			var doc elasticTaskDoc
			if err := json.Unmarshal(hit.Source, &doc); err != nil {
				return nil, fmt.Errorf("tasks.list: decode %s: %w", hit.Id, err)
			}
			tasks = append(tasks, domain.Task{
				ID:          hit.Id,
				Text:        doc.Text,
				IsCompleted: doc.IsCompleted,
				CreatedAt:   parseTimestamp(doc.CreatedAt),
			})
		}
	}
}

type elasticPresses struct{ client *elastic.Client }

func (r elasticPresses) Insert(ctx context.Context, pressedAt string) error {
	_, err := r.client.Index().
		Index(indexButtonPresses).
		Pipeline(pressPipeline).
		BodyJson(elasticPressDoc{PressedAt: &pressedAt}).
		Refresh("wait_for").
		Do(ctx)
	return wrap(classifyElastic, "button_presses.insert", true, err)
}

func (r elasticPresses) Count(ctx context.Context) (int, error) {
	n, err := r.client.Count(indexButtonPresses).Do(ctx)
	if elastic.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, wrap(classifyElastic, "button_presses.count", false, err)
	}
	return int(n), nil
}

// Recent orders by created_at and breaks ties on _seq_no, which follows
// insertion order within a shard. Presses in the same millisecond on a
// multi-shard index may still come back in either order.
func (r elasticPresses) Recent(ctx context.Context, limit int) ([]domain.ButtonPress, error) {
	res, err := r.client.Search(indexButtonPresses).
		SortBy(
			elastic.NewFieldSort("created_at").Desc().UnmappedType("date"),
			elastic.NewFieldSort("_seq_no").Desc(),
		).
		Size(limit).
		Do(ctx)
	if elastic.IsNotFound(err) {
		return []domain.ButtonPress{}, nil
	}
	if err != nil {
		return nil, wrap(classifyElastic, "button_presses.recent", false, err)
	}

	presses := make([]domain.ButtonPress, 0, limit)
	if res.Hits == nil {
		return presses, nil
	}
	for _, hit := range res.Hits.Hits {
		var doc elasticPressDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("button_presses.recent: decode %s: %w", hit.Id, err)
		}
		presses = append(presses, domain.ButtonPress{
			ID:        hit.Id,
			PressedAt: doc.PressedAt,
			CreatedAt: parseTimestamp(doc.CreatedAt),
		})
	}
	return presses, nil
}
