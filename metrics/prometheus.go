package metrics

import (
	"github.com/jitsucom/snapshotview/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "snapshotview"

//Registry is nil until Init: every metric function is a no-op then
var Registry *prometheus.Registry

func Enabled() bool {
	return Registry != nil
}

//Init creates the registry with process and go collectors and registers all snapshot view metrics
func Init() {
	logging.Info("✅ Initializing Prometheus metrics..")

	Registry = prometheus.NewRegistry()
	Registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	initSnapshot()
}

func register(collector prometheus.Collector) {
	Registry.MustRegister(collector)
}
