package monitor

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gamesrv/driftwatch/pkg/logger"
)

var (
	// PollCycles counts completed registry poll cycles.
	PollCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "driftwatch_poll_cycles_total",
		Help: "Completed registry poll cycles",
	})
	// DriftDetected counts positive drift detections per package.
	DriftDetected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driftwatch_drift_detected_total",
		Help: "Positive drift detections",
	}, []string{"package"})
	// OracleUnknown counts drift checks that could not be completed.
	OracleUnknown = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driftwatch_oracle_unknown_total",
		Help: "Drift checks with an unknown outcome",
	}, []string{"package"})
	// BroadcastsSent counts console lines delivered to players.
	BroadcastsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "driftwatch_broadcasts_sent_total",
		Help: "Console broadcasts sent to the game server",
	})
	// ExtensionsGranted counts grace-period extensions consumed.
	ExtensionsGranted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "driftwatch_extensions_granted_total",
		Help: "Grace-period extensions granted mid-countdown",
	})
	// CountdownRemaining is the seconds left in an active grace countdown.
	CountdownRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "driftwatch_countdown_remaining_seconds",
		Help: "Seconds remaining in the active grace countdown",
	})
)

var registerOnce sync.Once

// InitMetrics registers the collectors and starts an HTTP server exposing
// them on addr. An empty addr disables the endpoint; collectors still
// work, they are just not exported.
func InitMetrics(addr string) {
	registerOnce.Do(func() {
		prometheus.MustRegister(PollCycles, DriftDetected, OracleUnknown,
			BroadcastsSent, ExtensionsGranted, CountdownRemaining)
	})

	if addr == "" {
		return
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		logger.Log.Info("Metrics server starting", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Log.Error("Metrics server failed", "err", err)
		}
	}()
}
