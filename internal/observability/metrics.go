package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreQueryLatency records entity store latency by operation and collection.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_store_query_latency_seconds",
		Help:    "Entity store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	// ResolverOperations counts GraphQL operations by name and outcome.
	ResolverOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_graphql_operations_total",
		Help: "Total GraphQL operations by operation name and outcome",
	}, []string{"operation", "outcome"})

	// CacheLookups counts cache-aside lookups by result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_cache_lookups_total",
		Help: "Cache-aside lookups by result (hit, miss, error)",
	}, []string{"result"})

	// FeedSubscribers is the gauge of attached subscribers per topic.
	FeedSubscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "postboard_feed_subscribers",
		Help: "Number of live subscribers per topic",
	}, []string{"topic"})

	// FeedEventsPublished counts events published per topic.
	FeedEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_feed_events_published_total",
		Help: "Total change events published per topic",
	}, []string{"topic"})

	// FeedEventsDropped counts events dropped because a subscriber buffer was full.
	FeedEventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_feed_events_dropped_total",
		Help: "Total change events dropped due to backpressure",
	}, []string{"topic"})

	// WebSocketConnectionsTotal is the gauge of open subscription connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "postboard_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts outbound frames dropped by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// TrackQuery returns a function that records store latency when called (e.g. defer).
func TrackQuery(operation, collection string) func() {
	start := time.Now()
	return func() {
		StoreQueryLatency.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	}
}
