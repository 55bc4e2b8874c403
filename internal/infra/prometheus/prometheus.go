package prometheus

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sifan077/Rinku/config"
)

const (
	metricsPath       = "/metrics"
	defaultPort       = 9090
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
)

// Handler serves the default registry, which holds every rinku_* collector
// plus the Go runtime and process collectors.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}),
	)
}

// NewServer returns the metrics listener. It runs beside the API on its own
// port so scrapes never pass through the API middleware chain.
func NewServer(cfg config.PrometheusConfig) *http.Server {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, Handler())

	return &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
}
