package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bsmrisk"

// Metrics are the server's Prometheus collectors.
type Metrics struct {
	// HTTP requests by route template and status code
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP request latency by route template
	HTTPRequestDuration *prometheus.HistogramVec
	// Surface cells evaluated, by status
	SurfaceCellsTotal *prometheus.CounterVec
	// Surfaces returned truncated after cancellation
	SurfacesTruncated prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"route", "code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		SurfaceCellsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "surface",
			Name:      "cells_total",
			Help:      "Sensitivity surface cells by final status",
		}, []string{"status"}),
		SurfacesTruncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "surface",
			Name:      "truncated_total",
			Help:      "Sensitivity surfaces cut short by cancellation",
		}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SurfaceCellsTotal,
		m.SurfacesTruncated,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
