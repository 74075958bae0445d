// Package metrics hält die Prometheus-Kollektoren des Dienstes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PDFResolutions zählt Abrufversuche pro Quelle und Ergebnis
	// (ok, timeout, unreachable, status, not_pdf).
	PDFResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_resolution_total",
			Help: "Outbound PDF fetch attempts by source and result.",
		},
		[]string{"source", "result"},
	)

	IngestedDocuments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingested_documents_total",
			Help: "Total number of documents written by the ingestion job.",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, PDFResolutions, IngestedDocuments)
}
