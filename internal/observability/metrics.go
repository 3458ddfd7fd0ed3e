// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by result (hit or miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"key", "result"})

	// NotificationsEmitted counts notification rows written, by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_notifications_emitted_total",
		Help: "Total notifications emitted by type",
	}, []string{"type"})

	// ModerationDecisions counts admin activate/reject decisions.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_moderation_decisions_total",
		Help: "Total moderation decisions by outcome",
	}, []string{"decision"})

	// UpvoteToggles counts upvote toggles by resulting action.
	UpvoteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_upvote_toggles_total",
		Help: "Upvote toggles by action (added, removed, conflict)",
	}, []string{"action"})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_rate_limited_total",
		Help: "Requests rejected by the rate limiter per resource",
	}, []string{"resource"})

	// WebSocketConnections is the gauge of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "launchpad_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)
