package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	successStatus = "success"
	errorStatus   = "error"
)

var (
	rotations        *prometheus.CounterVec
	rotationDuration *prometheus.HistogramVec
	sessions         *prometheus.CounterVec
)

func initSnapshot() {
	rotations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rotator",
		Name:      "rotations_total",
		Help:      "Rotations of dataset versions by status",
	}, []string{"dataset", "status"})
	register(rotations)

	rotationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rotator",
		Name:      "rotation_duration_seconds",
		Help:      "Duration of switch update and working table preparation",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"dataset"})
	register(rotationDuration)

	sessions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "sessions_total",
		Help:      "Version sessions by unit of work outcome",
	}, []string{"dataset", "outcome"})
	register(sessions)
}

//Rotation counts one rotation of dataset which took duration: error status if err isn't nil
func Rotation(dataset string, duration time.Duration, err error) {
	if !Enabled() {
		return
	}

	status := successStatus
	if err != nil {
		status = errorStatus
	}
	rotations.WithLabelValues(dataset, status).Inc()
	rotationDuration.WithLabelValues(dataset).Observe(duration.Seconds())
}

//Session counts one version session of dataset with outcome of its unit of work
func Session(dataset, outcome string) {
	if Enabled() {
		sessions.WithLabelValues(dataset, outcome).Inc()
	}
}
