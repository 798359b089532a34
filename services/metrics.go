package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_processed_total",
			Help: "Reviews written, by outcome (created or updated).",
		},
		[]string{"outcome"},
	)

	ordersReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_reconciled_total",
			Help: "Checkout confirmations, by result.",
		},
		[]string{"result"},
	)
)
