// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/haofuwu/service-market/internal/core/domain"
)

const namespace = "market"

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreMutationsTotal counts need and service-offer mutations.
// Labels:
//   - entity: "need" or "service_offer"
//   - op: "add", "update", "delete", "cancel", "accept", "reject"
//   - result: see ResultLabel
var StoreMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_mutations_total",
		Help:      "Total number of store mutations, by entity, operation and result.",
	},
	[]string{"entity", "op", "result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: see ResultLabel
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsernameChecksTotal counts uniqueness checks.
// Labels:
//   - mode: "local" or "remote"
//   - result: "unique", "taken" or a ResultLabel failure value
var UsernameChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "username_checks_total",
		Help:      "Total number of username uniqueness checks, by mode and result.",
	},
	[]string{"mode", "result"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard decisions.
// Labels:
//   - outcome: "allow" or "redirect"
//   - reason: the decision reason (e.g. "login_required")
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome and reason.",
	},
	[]string{"outcome", "reason"},
)

// ResultLabel maps an operation error onto a bounded label value.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNeedNotFound), errors.Is(err, domain.ErrServiceOfferNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrInvalidCredentials):
		return "unauthenticated"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrUserExists):
		return "taken"
	case errors.Is(err, domain.ErrUniquenessUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	default:
		return "error"
	}
}
