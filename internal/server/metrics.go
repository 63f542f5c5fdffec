package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests",
		},
		[]string{"status"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "request_duration_seconds",
			Help: "Duration of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)
	cacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "answer_cache_hits_total",
			Help: "Total number of answer cache hits",
		},
	)
	cacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "answer_cache_misses_total",
			Help: "Total number of answer cache misses",
		},
	)
	ingestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestions_total",
			Help: "Total number of document ingestions",
		},
		[]string{"status"},
	)
	elementsIngested = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "elements_ingested",
			Help: "Number of elements stored across completed ingestions",
		},
	)
)

func init() {
	prometheus.MustRegister(chatRequestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(cacheMissesTotal)
	prometheus.MustRegister(ingestionsTotal)
	prometheus.MustRegister(elementsIngested)
}
