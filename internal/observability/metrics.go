package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alphaboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PathConflictRetries counts materialized-path collisions resolved by retry.
	// A steadily climbing rate means heavy concurrent replying under the same
	// parent comment.
	PathConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alphaboard_comment_path_conflict_retries_total",
		Help: "Total number of comment path assignment retries after a unique-index conflict",
	})

	// VotesCast counts vote mutations by target type and action.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alphaboard_votes_cast_total",
		Help: "Total number of vote mutations by target type and action",
	}, []string{"target_type", "action"})
)
