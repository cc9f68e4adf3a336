// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"jjc-attendance/internal/apperror"
)

var (
	CheckIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "checkins_total",
		Help:      "Check-in attempts by result.",
	}, []string{"result"})

	CheckOuts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "checkouts_total",
		Help:      "Check-out attempts by result.",
	}, []string{"result"})

	ArchiveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attendance",
		Name:      "photo_archive_seconds",
		Help:      "Latency of photo uploads to the archive.",
		Buckets:   prometheus.DefBuckets,
	})

	SummaryCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "summary_cache_total",
		Help:      "Per-user summary cache lookups by outcome.",
	}, []string{"outcome"})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})
)

func init() {
	prometheus.MustRegister(CheckIns, CheckOuts, ArchiveDuration, SummaryCache, RateLimited)
}

// Result turns an operation error into a low-cardinality label value.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	return apperror.KindOf(err).String()
}
