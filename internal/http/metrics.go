package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsStarted counts improvement sessions started.
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "designd",
			Subsystem: "session",
			Name:      "sessions_started_total",
			Help:      "Total number of improvement sessions started",
		},
	)

	// ProposalsTotal counts proposal submissions by result.
	// Labels: result (accepted, discarded)
	ProposalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "designd",
			Subsystem: "session",
			Name:      "proposals_total",
			Help:      "Total proposal submissions by result",
		},
		[]string{"result"},
	)

	// DecisionsTotal counts human review decisions by verdict.
	// Labels: verdict (approved, rejected, revision)
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "designd",
			Subsystem: "session",
			Name:      "decisions_total",
			Help:      "Total human review decisions by verdict",
		},
		[]string{"verdict"},
	)

	// MemoryWrites counts durable memory writes by kind.
	// Labels: kind (approval, rejection, session, principle)
	MemoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "designd",
			Subsystem: "memory",
			Name:      "writes_total",
			Help:      "Total durable memory document writes by kind",
		},
		[]string{"kind"},
	)
)
