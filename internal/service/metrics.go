package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeCreated     = "created"
	outcomeDuplicate   = "duplicate"
	outcomeInvalid     = "invalid"
	outcomeNotFound    = "not_found"
	outcomeError       = "error"
	outcomeOK          = "ok"
	outcomeUnavailable = "unavailable"
	outcomeDisabled    = "disabled"
)

var (
	reviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_review_submissions_total",
			Help: "Review submissions by outcome",
		},
		[]string{"outcome"},
	)

	externalRatingLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_external_rating_lookups_total",
			Help: "External rating lookups made while composing book views, by outcome",
		},
		[]string{"outcome"},
	)
)
