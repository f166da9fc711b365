package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

// fakeCluster answers the handful of endpoints the press repository uses and
// keeps documents in insertion order. Documents indexed through a pipeline
// get created_at stamped the way the ingest processor does.
type fakeCluster struct {
	mu        sync.Mutex
	docs      []map[string]interface{}
	authSeen  []string
	status    int
	pipelines map[string]string
	sorts     []string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authSeen = append(f.authSeen, r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"error":{"type":"cluster_block_exception","reason":"blocked"},"status":%d}`, f.status)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/_ingest/pipeline/"):
		body, _ := io.ReadAll(r.Body)
		if f.pipelines == nil {
			f.pipelines = make(map[string]string)
		}
		f.pipelines[strings.TrimPrefix(r.URL.Path, "/_ingest/pipeline/")] = string(body)
		fmt.Fprint(w, `{"acknowledged":true}`)
	case strings.HasSuffix(r.URL.Path, "/_doc"):
		var doc map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if pipeline := r.URL.Query().Get("pipeline"); pipeline != "" {
			if _, ok := f.pipelines[pipeline]; !ok {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":{"type":"illegal_argument_exception","reason":"pipeline does not exist"},"status":400}`)
				return
			}
			doc["created_at"] = time.Now().UTC().Format(time.RFC3339Nano)
		}
		f.docs = append(f.docs, doc)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"_index":"buttonpresses","_id":"doc-%d","_version":1,"result":"created"}`, len(f.docs))
	case strings.HasSuffix(r.URL.Path, "/_count"):
		fmt.Fprintf(w, `{"count":%d}`, len(f.docs))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		var body struct {
			Size int                      `json:"size"`
			Sort []map[string]interface{} `json:"sort"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, sort := range body.Sort {
			for field := range sort {
				f.sorts = append(f.sorts, field)
			}
		}
		hits := make([]map[string]interface{}, 0)
		for i := len(f.docs) - 1; i >= 0 && len(hits) < body.Size; i-- {
			hits = append(hits, map[string]interface{}{
				"_index":  "buttonpresses",
				"_id":     fmt.Sprintf("doc-%d", i+1),
				"_source": f.docs[i],
			})
		}
		resp := map[string]interface{}{
			"took": 1,
			"hits": map[string]interface{}{
				"total": map[string]interface{}{"value": len(f.docs), "relation": "eq"},
				"hits":  hits,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
	}
}

func openTestElastic(t *testing.T, cluster *fakeCluster) *ElasticStore {
	t.Helper()
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	s, err := OpenElastic(context.Background(), srv.URL, "test-key", srv.Client())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestElasticButtonPresses(t *testing.T) {
	cluster := &fakeCluster{}
	presses := openTestElastic(t, cluster).ButtonPresses()
	ctx := context.Background()

	n, err := presses.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	base := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, presses.Insert(ctx, domain.FormatTimestamp(base.Add(time.Duration(i)*time.Minute))))
	}

	n, err = presses.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recent, err := presses.Recent(ctx, domain.RecentPressLimit)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "doc-3", recent[0].ID)
	assert.Equal(t, "doc-1", recent[2].ID)
	if assert.NotNil(t, recent[0].PressedAt) {
		assert.Equal(t, "2024-04-02T12:02:00.000Z", *recent[0].PressedAt)
	}
	if assert.NotNil(t, recent[0].CreatedAt) {
		assert.WithinDuration(t, time.Now(), *recent[0].CreatedAt, time.Minute)
	}

	cluster.mu.Lock()
	defer cluster.mu.Unlock()
	assert.Contains(t, cluster.pipelines[pressPipeline], "_ingest.timestamp")
	assert.Equal(t, []string{"created_at", "_seq_no"}, cluster.sorts)
	for _, auth := range cluster.authSeen {
		assert.Equal(t, "ApiKey test-key", auth)
	}
}

func TestElasticNonTimestampMetadata(t *testing.T) {
	pressedAt := "2024-04-02T12:00:00.000Z"
	cluster := &fakeCluster{docs: []map[string]interface{}{
		{"pressed_at": pressedAt, "created_at": "not a date"},
		{"created_at": float64(1712059200000)},
	}}
	presses := openTestElastic(t, cluster).ButtonPresses()

	recent, err := presses.Recent(context.Background(), domain.RecentPressLimit)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Nil(t, recent[0].PressedAt)
	if assert.NotNil(t, recent[0].CreatedAt) {
		assert.Equal(t, int64(1712059200000), recent[0].CreatedAt.UnixMilli())
	}
	if assert.NotNil(t, recent[1].PressedAt) {
		assert.Equal(t, pressedAt, *recent[1].PressedAt)
	}
	assert.Nil(t, recent[1].CreatedAt)
}

func TestElasticErrors(t *testing.T) {
	cluster := &fakeCluster{}
	presses := openTestElastic(t, cluster).ButtonPresses()

	cluster.mu.Lock()
	cluster.status = http.StatusServiceUnavailable
	cluster.mu.Unlock()

	_, err := presses.Count(context.Background())
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))

	cluster.mu.Lock()
	cluster.status = http.StatusForbidden
	cluster.mu.Unlock()

	err = presses.Insert(context.Background(), domain.FormatTimestamp(time.Now()))
	assert.True(t, errors.Is(err, domain.ErrWriteRejected))
}

func TestOpenElasticUnreachable(t *testing.T) {
	srv := httptest.NewServer(&fakeCluster{status: http.StatusServiceUnavailable})
	defer srv.Close()

	_, err := OpenElastic(context.Background(), srv.URL, "test-key", srv.Client())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestElasticTasksEmpty(t *testing.T) {
	cluster := &fakeCluster{}
	store := openTestElastic(t, cluster)

	tasks, err := store.Tasks().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestParseTimestamp(t *testing.T) {
	assert.Nil(t, parseTimestamp(nil))
	assert.Nil(t, parseTimestamp(json.RawMessage(`true`)))
	assert.Nil(t, parseTimestamp(json.RawMessage(`"soon"`)))

	ts := parseTimestamp(json.RawMessage(`"2024-04-02T12:00:00.123Z"`))
	if assert.NotNil(t, ts) {
		assert.Equal(t, "2024-04-02T12:00:00.123Z", domain.FormatTimestamp(*ts))
	}
}
