package ui

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculator_ui_submissions_total",
		Help: "Form submissions, by outcome.",
	}, []string{"outcome"})

	staleCompletionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calculator_ui_stale_completions_total",
		Help: "Completions dropped because a newer submission or a reset superseded them.",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "calculator_ui_sessions",
		Help: "Sessions currently held in memory.",
	})
)
