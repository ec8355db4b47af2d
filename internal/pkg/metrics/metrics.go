// Package metrics defines and registers the custom Prometheus metrics for the
// report API. It is the single source of truth for metric names, labels, and
// help strings. All metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reports"

// ── Report lifecycle ─────────────────────────────────────────────────────────

// ReportsCreatedTotal counts newly created reports.
// Label:
//   - category: the report category (e.g. "roads")
var ReportsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of reports created, by category.",
	},
	[]string{"category"},
)

// ReportsUpdatedTotal counts official updates per patched field.
// Label:
//   - field: "status", "assigned_official" or "category"
var ReportsUpdatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updated_total",
		Help:      "Total number of report fields changed by officials.",
	},
	[]string{"field"},
)

// UpvoteTogglesTotal counts upvote toggles by outcome.
// Label:
//   - result: "added" or "removed"
var UpvoteTogglesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upvote_toggles_total",
		Help:      "Total number of upvote toggles, labelled by result.",
	},
	[]string{"result"},
)

// ── Access control ───────────────────────────────────────────────────────────

// AccessDeniedTotal counts Forbidden outcomes.
// Label:
//   - reason: "role", "cross_tenant", "not_owner", "self_upvote", "invite"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests denied by the access-control layer.",
	},
	[]string{"reason"},
)

// ── Activity trail ───────────────────────────────────────────────────────────

// ActivityQueueDepth tracks entries waiting in each dispatcher worker channel.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityRecordedTotal counts persisted activity entries.
// Label:
//   - result: "ok", "error" or "dropped"
var ActivityRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_recorded_total",
		Help:      "Total number of activity entries handled by the recorder, by result.",
	},
	[]string{"result"},
)
