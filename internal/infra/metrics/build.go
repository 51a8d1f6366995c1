package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A constant metric with labels for version, commit and service.",
	},
	[]string{"version", "commit", "service"},
)

func SetBuildInfo(version, commit, service string) {
	buildInfo.WithLabelValues(version, commit, service).Set(1)
}
