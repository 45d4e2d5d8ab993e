package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotsCalibrated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "graphintel",
		Subsystem: "ingest",
		Name:      "snapshots_calibrated_total",
		Help:      "Raw graph snapshots successfully calibrated.",
	})
	calibrationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphintel",
		Subsystem: "ingest",
		Name:      "calibration_failures_total",
		Help:      "Calibration failures by error code.",
	}, []string{"code"})
	decodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "graphintel",
		Subsystem: "ingest",
		Name:      "decode_failures_total",
		Help:      "Kafka messages that failed to decode as raw graph requests.",
	})
	calibrationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "graphintel",
		Subsystem: "ingest",
		Name:      "calibration_seconds",
		Help:      "Wall time of one calibration run.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})
	explainsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphintel",
		Subsystem: "ingest",
		Name:      "explains_generated_total",
		Help:      "Explain blocks generated, by mode.",
	}, []string{"mode"})
)
