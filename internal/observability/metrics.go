package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedAssemblyLatency records how long it takes to build one feed page.
	FeedAssemblyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "litreview_feed_assembly_seconds",
		Help:    "Feed page assembly latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})

	// FeedItemsServed counts feed items returned by kind.
	FeedItemsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "litreview_feed_items_served_total",
		Help: "Total number of feed items served by feed and kind",
	}, []string{"feed", "kind"})

	// SocialGraphMutations counts follow, unfollow and block operations by outcome.
	SocialGraphMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "litreview_social_graph_mutations_total",
		Help: "Total number of social graph mutations",
	}, []string{"operation", "outcome"})

	// PhotoUploads counts photo uploads by outcome.
	PhotoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "litreview_photo_uploads_total",
		Help: "Total number of photo uploads by outcome",
	}, []string{"outcome"})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "litreview_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "litreview_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NotificationsPublished counts notification events published by type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "litreview_notifications_published_total",
		Help: "Total number of notification events published",
	}, []string{"type"})

	// ActiveWebSockets is the gauge of open notification websockets.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "litreview_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "litreview_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackFeed returns a function that records feed assembly latency when called.
func TrackFeed(feed string) func() {
	start := time.Now()
	return func() {
		FeedAssemblyLatency.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	}
}
