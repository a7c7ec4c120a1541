package observability

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"hirescope/internal/config"
	"hirescope/internal/errors"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// newPrometheusExporter registers the OTel exporter on a private registry
// together with the Go runtime and process collectors.
func newPrometheusExporter() (metric.Reader, http.Handler, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return exporter, handler, nil
}

// startPrometheusServer serves the metrics endpoint on its own port.
func startPrometheusServer(handler http.Handler, cfg config.PrometheusConfig, logger *errors.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Endpoint, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Prometheus metrics server listening", "addr", server.Addr, "path", cfg.Endpoint)
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Prometheus server stopped")
		}
	}()
	return server
}
