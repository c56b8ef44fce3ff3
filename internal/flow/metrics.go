package flow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_purchases_total",
		Help: "Completed purchases (deck generated, debited, and delivered)",
	})

	purchaseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_purchase_failures_total",
		Help: "Aborted purchases, labeled by the stage that failed",
	}, []string{"stage"})

	slidesSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_slides_sold_total",
		Help: "Slides produced across all completed purchases",
	})

	purchaseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bot_purchase_duration_seconds",
		Help:    "Wall time of the generate-render-debit-deliver pipeline",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
	})
)
