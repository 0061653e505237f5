package metrics

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	PricesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbot_prices_total", Help: "Prices pushed into the rolling window"},
		[]string{"symbol"},
	)
	RejectedPricesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbot_rejected_prices_total", Help: "Non-finite prices dropped before the window"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbot_signals_total", Help: "Signals produced by evaluation"},
		[]string{"strategy", "signal"},
	)
	WindowLength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "signalbot_window_length", Help: "Current rolling window length"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(PricesTotal, RejectedPricesTotal, SignalsTotal, WindowLength)
}

// Serve binds addr and exposes /metrics in the background. Bind failures
// are returned; later server errors are logged.
func Serve(addr string, logger zerolog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", srv.Addr).Msg("metrics server stopped")
		}
	}()
	return srv, nil
}
