// Package telemetry exposes the Prometheus metrics and the OpenTelemetry
// tracer used by the server.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveChargingSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chargegrid_active_charging_sessions",
		Help: "Number of charging sessions currently in progress",
	})

	EnergyDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargegrid_energy_delivered_kwh_total",
		Help: "Total energy delivered across finished sessions, in kWh",
	})

	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargegrid_reservations_total",
		Help: "Reservation operations by outcome",
	}, []string{"operation", "outcome"})

	ReservationsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargegrid_reservations_swept_total",
		Help: "Expired reservations closed by the background sweep",
	})

	SessionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargegrid_session_conflicts_total",
		Help: "Session starts rejected because the socket was taken",
	})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chargegrid_database_latency_seconds",
		Help:    "Latency of database queries",
		Buckets: prometheus.DefBuckets,
	})
)
