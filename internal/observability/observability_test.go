package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "litreview-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracingConfig_Enabled(t *testing.T) {
	assert.False(t, TracingConfig{}.Enabled())
	assert.False(t, TracingConfig{Exporter: "jaeger"}.Enabled())
	assert.True(t, TracingConfig{Exporter: "stdout"}.Enabled())
	assert.True(t, TracingConfig{Exporter: "otlp"}.Enabled())
}

func TestSpan_RecordsWithoutPanicking(t *testing.T) {
	span, ctx := NewSpan(context.Background(), "feed.home", attribute.Int("viewer_id", 1))
	require.NotNil(t, ctx)
	span.AddAttributes(attribute.Int("page", 2))
	span.SetError(errors.New("boom"))
	span.SetError(nil)
	span.End()

	var empty Span
	empty.AddAttributes(attribute.Int("page", 1))
	empty.End()
	assert.Empty(t, empty.TraceID())
}

func TestTrackFeed_ObservesLatency(t *testing.T) {
	before := testutil.CollectAndCount(FeedAssemblyLatency)
	TrackFeed("observability_test")()
	assert.GreaterOrEqual(t, testutil.CollectAndCount(FeedAssemblyLatency), before)

	TrackQuery("select", "tickets")()
	assert.Positive(t, testutil.CollectAndCount(DatabaseQueryLatency))
}
