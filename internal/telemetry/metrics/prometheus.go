package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// BuildInfo labels the constant fittrack_build_info gauge.
type BuildInfo struct {
	Version     string
	Environment string
}

// SetupPrometheus creates the registry served by the metrics server.
// Go runtime and process collectors are always registered, plus any extra ones (the db pool collector).
func SetupPrometheus(info BuildInfo, extraCollectors ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fittrack",
		Name:      "build_info",
		Help:      "Always 1, labeled with the running version and environment.",
		ConstLabels: prometheus.Labels{
			"version":     info.Version,
			"environment": info.Environment,
		},
	})
	buildInfo.Set(1)

	promRegistry.MustRegister(
		buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: "fittrack"}),
	)

	for _, c := range extraCollectors {
		promRegistry.MustRegister(c)
	}

	return promRegistry
}
