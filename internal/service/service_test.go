package service_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
	"github.com/locvowork/convexhub/apigateway/internal/service"
)

// pressLog is an in-memory buttonPresses collection. failInsert makes the
// next inserts fail before anything is stored.
type pressLog struct {
	mu         sync.Mutex
	presses    []domain.ButtonPress
	failInsert error
	failRead   error
}

func (l *pressLog) Insert(_ context.Context, pressedAt string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failInsert != nil {
		return l.failInsert
	}
	created := time.Date(2024, 1, 1, 0, 0, len(l.presses), 0, time.UTC)
	l.presses = append(l.presses, domain.ButtonPress{
		ID:        strconv.Itoa(len(l.presses) + 1),
		PressedAt: &pressedAt,
		CreatedAt: &created,
	})
	return nil
}

func (l *pressLog) Count(context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failRead != nil {
		return 0, l.failRead
	}
	return len(l.presses), nil
}

func (l *pressLog) Recent(_ context.Context, limit int) ([]domain.ButtonPress, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failRead != nil {
		return nil, l.failRead
	}
	var out []domain.ButtonPress
	for i := len(l.presses) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.presses[i])
	}
	return out, nil
}

type taskList struct {
	tasks []domain.Task
	err   error
}

func (l *taskList) List(context.Context) ([]domain.Task, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make([]domain.Task, len(l.tasks))
	copy(out, l.tasks)
	return out, nil
}

// steppingClock returns T0, T0+1s, T0+2s, ...
func steppingClock(t0 time.Time) func() time.Time {
	var mu sync.Mutex
	next := t0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSummaryEmptyStore(t *testing.T) {
	svc := service.NewButtonPressService(&pressLog{})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.NotNil(t, summary.Entries)
	assert.Empty(t, summary.Entries)
}

func TestSummaryTracksPresses(t *testing.T) {
	tests := []struct {
		name        string
		presses     int
		wantEntries int
	}{
		{"one press", 1, 1},
		{"three presses", 3, 3},
		{"exactly five", 5, 5},
		{"seven presses", 7, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewButtonPressService(&pressLog{}, service.WithClock(steppingClock(t0)))
			ctx := context.Background()

			for i := 0; i < tt.presses; i++ {
				require.NoError(t, svc.Press(ctx))
			}

			summary, err := svc.Summary(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.presses, summary.Total)
			require.Len(t, summary.Entries, tt.wantEntries)

			for i, entry := range summary.Entries {
				want := domain.FormatTimestamp(t0.Add(time.Duration(tt.presses-1-i) * time.Second))
				if assert.NotNil(t, entry.PressedAt) {
					assert.Equal(t, want, *entry.PressedAt)
				}
				assert.NotNil(t, entry.CreatedAt)
			}
		})
	}
}

func TestPressIsNotIdempotent(t *testing.T) {
	svc := service.NewButtonPressService(&pressLog{})
	ctx := context.Background()

	before, err := svc.Summary(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Press(ctx))
	require.NoError(t, svc.Press(ctx))

	after, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Total+2, after.Total)
}

func TestPressFormatsISOTimestamp(t *testing.T) {
	log := &pressLog{}
	local := time.Date(2024, 6, 1, 14, 30, 15, 987654321, time.FixedZone("CEST", 2*3600))
	svc := service.NewButtonPressService(log, service.WithClock(func() time.Time { return local }))

	require.NoError(t, svc.Press(context.Background()))
	require.Len(t, log.presses, 1)
	assert.Equal(t, "2024-06-01T12:30:15.987Z", *log.presses[0].PressedAt)
}

func TestFailedPressLeavesNoRecord(t *testing.T) {
	log := &pressLog{}
	svc := service.NewButtonPressService(log)
	ctx := context.Background()

	driverErr := errors.New("dial tcp 10.0.0.1:443: connect: connection refused")
	log.failInsert = domain.NewStoreError(domain.ErrStoreUnavailable, "button_presses.insert", driverErr)

	err := svc.Press(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.True(t, errors.Is(err, driverErr))

	log.failInsert = nil
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.Entries)
}

func TestSummaryPropagatesReadErrors(t *testing.T) {
	log := &pressLog{failRead: domain.NewStoreError(domain.ErrStoreUnavailable, "button_presses.count", errors.New("timeout"))}
	svc := service.NewButtonPressService(log)

	summary, err := svc.Summary(context.Background())
	assert.Nil(t, summary)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestConcurrentPressesAreAllCounted(t *testing.T) {
	svc := service.NewButtonPressService(&pressLog{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Press(ctx))
		}()
	}
	wg.Wait()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.Total)
	assert.Len(t, summary.Entries, domain.RecentPressLimit)
}

func TestTaskServiceList(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := &taskList{tasks: []domain.Task{
		{ID: "a", Text: "Wire the store", IsCompleted: true, CreatedAt: &created},
		{ID: "b", Text: "No timestamp"},
	}}
	svc := service.NewTaskService(repo)

	tasks, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Nil(t, tasks[1].CreatedAt)
	assert.Len(t, repo.tasks, 2)

	empty, err := service.NewTaskService(&taskList{}).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = service.NewTaskService(&taskList{err: domain.NewStoreError(domain.ErrStoreUnavailable, "tasks.list", errors.New("down"))}).List(context.Background())
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}
