package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas del motor de asignación. Registradas en el registry por defecto;
// /metrics las expone vía promhttp.
var (
	// AllocationAttempts cuenta asignaciones terminadas por outcome:
	// success, exhausted, fatal.
	AllocationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asignador",
		Name:      "allocation_attempts_total",
		Help:      "Intentos de asignación por resultado.",
	}, []string{"outcome"})

	// OverlapConflicts cuenta candidatos abandonados por solape de hold
	// (contención esperada, absorbida localmente).
	OverlapConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "asignador",
		Name:      "hold_overlap_conflicts_total",
		Help:      "Conflictos de solape por candidato durante la reserva.",
	})

	// RetrySleeps cuenta backoffs dormidos por deadlock/serialización.
	RetrySleeps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "asignador",
		Name:      "retry_sleeps_total",
		Help:      "Reintentos con backoff por conflicto reintentable.",
	})

	// ReleasedQty acumula unidades devueltas por el flujo de liberación.
	ReleasedQty = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "asignador",
		Name:      "released_qty_total",
		Help:      "Unidades liberadas de holds activos.",
	})

	// AllocationDuration observa la duración total de Allocate (incluye
	// reintentos).
	AllocationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "asignador",
		Name:      "allocation_duration_seconds",
		Help:      "Duración de la operación de asignación.",
		Buckets:   prometheus.DefBuckets,
	})
)
