package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regsync/internal/registration/metrics"
	"regsync/internal/registration/models"
	"regsync/internal/registration/sources"
)

type fakeSource struct {
	kind  models.SourceKind
	body  string
	err   error
	block bool
	calls atomic.Int32
	user  atomic.Value
}

func (f *fakeSource) Kind() models.SourceKind { return f.kind }

func (f *fakeSource) Fetch(ctx context.Context, userID string) ([]byte, error) {
	f.calls.Add(1)
	f.user.Store(userID)
	if f.block {
		<-ctx.Done()
		return nil, sources.NewSourceError(sources.ErrorTimeout, f.kind, "fetch timed out", ctx.Err())
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func newTestService(t *testing.T, srcs ...sources.Source) (*Service, *metrics.Metrics) {
	t.Helper()
	registry, err := sources.NewRegistry(srcs...)
	require.NoError(t, err)

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := New(registry,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(m),
		WithFetchTimeout(50*time.Millisecond),
		WithClock(func() time.Time { return fixed }),
	)
	return svc, m
}

func TestServiceRun(t *testing.T) {
	gst := &fakeSource{kind: models.SourceGST, body: `[{"ticket_id":"GST_100","payment_status":"paid","user_id":42,"created_at":"2024-03-01T00:00:00Z"}]`}
	pvt := &fakeSource{kind: models.SourcePrivateLimited, body: `{"data":[{"ticket_id":"PVT_5","payment_id":"pay_1","user_id":"42","created_at":"2024-04-01T00:00:00Z"}]}`}
	svcs := &fakeSource{kind: models.SourceServices, err: errors.New("connection refused")}
	svc, m := newTestService(t, gst, pvt, svcs)

	result, err := svc.Run(context.Background(), " 42 ")

	require.NoError(t, err)
	assert.Equal(t, "42", result.UserID)
	assert.Equal(t, "42", gst.user.Load())
	require.Len(t, result.Records, 2)
	assert.Equal(t, "PVT_5", result.Records[0].TicketID)
	assert.Equal(t, "GST_100", result.Records[1].TicketID)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), result.FetchedAt)
	assert.Equal(t, 1, result.Stats.FailedFetches)

	require.Len(t, result.Sources, 3)
	assert.Equal(t, models.SourcePrivateLimited, result.Sources[0].Source)
	assert.True(t, result.Sources[0].OK)
	assert.Equal(t, 1, result.Sources[0].Records)
	assert.Equal(t, models.SourceServices, result.Sources[2].Source)
	assert.False(t, result.Sources[2].OK)
	assert.Equal(t, string(sources.ErrorInternal), result.Sources[2].Error)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetchOutcome.WithLabelValues("gst", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetchOutcome.WithLabelValues("services", "internal")))
}

func TestServiceRunAllSourcesFail(t *testing.T) {
	var srcs []sources.Source
	for _, kind := range models.SourceOrder {
		srcs = append(srcs, &fakeSource{kind: kind, err: errors.New("boom")})
	}
	svc, _ := newTestService(t, srcs...)

	result, err := svc.Run(context.Background(), "7")

	require.NoError(t, err)
	assert.NotNil(t, result.Records)
	assert.Empty(t, result.Records)
	assert.Equal(t, 5, result.Stats.FailedFetches)
	assert.Empty(t, result.LatestByBucket())
	assert.Empty(t, result.PaidOnly())
}

func TestServiceRunSlowSourceDoesNotBlockOthers(t *testing.T) {
	slow := &fakeSource{kind: models.SourceStartupIndia, block: true}
	fast := &fakeSource{kind: models.SourceGST, body: `[{"ticket_id":"GST_1","payment_status":"paid","user_id":"7"}]`}
	svc, _ := newTestService(t, slow, fast)

	start := time.Now()
	result, err := svc.Run(context.Background(), "7")

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "GST_1", result.Records[0].TicketID)
	assert.Equal(t, string(sources.ErrorTimeout), result.Sources[0].Error)
}

func TestServiceRunRequiresUser(t *testing.T) {
	src := &fakeSource{kind: models.SourceGST, body: `[]`}
	svc, _ := newTestService(t, src)

	_, err := svc.Run(context.Background(), "  ")

	assert.ErrorIs(t, err, ErrUserIDRequired)
	assert.Zero(t, src.calls.Load())
}

func TestServiceRunIsRepeatable(t *testing.T) {
	src := &fakeSource{kind: models.SourceServices, body: `[
		{"service_id":1,"payment_id":"p1","user_id":"3","service_status":"wip","created_at":"2024-01-02"},
		{"service_id":2,"payment_status":"paid","user_id":"3","service_status":"completed","created_at":"2024-01-03"}
	]`}
	svc, _ := newTestService(t, src)

	first, err := svc.Run(context.Background(), "3")
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), "3")
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, "2", first.LatestByBucket()[models.BucketResolved].RecordID)
}
