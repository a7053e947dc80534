// Package metrics defines and registers all custom Prometheus metrics for the
// storefront session service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; echoprometheus serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "unverified", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logouts.
// Label:
//   - role: role of the user that logged out, or "unknown"
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts, by role.",
	},
	[]string{"role"},
)

// IdentityResolutionsTotal counts identity lookups.
// Label:
//   - outcome: "authenticated", "provisional", "stale", "anonymous", "error"
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of identity resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Routing metrics ───────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route-guard decisions.
// Label:
//   - action: "allow", "redirect_login", "redirect_dashboard", "redirect_settings"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route-guard decisions, by action.",
	},
	[]string{"action"},
)

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartMutationsTotal counts cart mutations.
// Labels:
//   - op: "sync", "add", "update", "remove", "clear"
//   - mode: "guest" or "member"
//   - result: "ok" or "error"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart operations, by operation, cart mode and result.",
	},
	[]string{"op", "mode", "result"},
)

// ── Notice metrics ────────────────────────────────────────────────────────────

// NoticesDrainedTotal counts notices delivered to clients.
var NoticesDrainedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notices_drained_total",
		Help:      "Total number of notices delivered to clients.",
	},
)

// BackgroundQueueDepth tracks the backlog of each dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var BackgroundQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "background_queue_depth",
		Help:      "Current number of tasks pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// IdentityOutcome labels a resolution for IdentityResolutionsTotal.
func IdentityOutcome(authenticated, provisional, stale bool) string {
	switch {
	case !authenticated:
		return "anonymous"
	case stale:
		return "stale"
	case provisional:
		return "provisional"
	default:
		return "authenticated"
	}
}
