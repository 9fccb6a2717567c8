// Package metrics exposes the competition's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submissions counts scored and rejected tours by outcome.
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toptsp",
		Name:      "submissions_total",
		Help:      "Submitted tours by outcome.",
	}, []string{"outcome"})

	Improvements = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "toptsp",
		Name:      "improvements_total",
		Help:      "Submissions that improved a participant's best result.",
	})

	LeaderboardFrozen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "toptsp",
		Name:      "leaderboard_frozen",
		Help:      "1 while the public leaderboard is frozen.",
	})

	InstanceDimension = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "toptsp",
		Name:      "instance_dimension",
		Help:      "Node count of the active instance.",
	})
)

// Outcome labels for Submissions. Rejected tours are labelled by reason.
const (
	OutcomeAccepted    = "accepted"
	OutcomeEmptyInput  = "empty_input"
	OutcomeNonNumeric  = "non_numeric_token"
	OutcomeNonPositive = "non_positive_token"
	OutcomeWrongLength = "wrong_length"
	OutcomeDuplicate   = "duplicate_node"
	OutcomeMissingNode = "missing_node"
	OutcomeClosed      = "closed"
	OutcomeNoInst      = "no_instance"
	OutcomeUnknownUser = "unknown_user"
	OutcomeError       = "error"
)

func SetFrozen(frozen bool) {
	if frozen {
		LeaderboardFrozen.Set(1)
		return
	}
	LeaderboardFrozen.Set(0)
}
