package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoginAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ghc_login_attempts_total",
		Help: "Total number of device logins started",
	})
	LoginsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ghc_logins_in_flight",
		Help: "Number of device logins currently polling for a token",
	})
	// result is one of: token, pending, slow_down, expired, denied, error,
	// empty, network, protocol.
	TokenPolls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ghc_token_polls_total",
		Help: "Token endpoint polls grouped by classified response",
	}, []string{"result"})
	LoginOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ghc_login_outcomes_total",
		Help: "Terminal login outcomes grouped by status (ok/error)",
	}, []string{"status"})
	CredentialWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ghc_credential_writes_total",
		Help: "Credential store mutations grouped by operation and result",
	}, []string{"operation", "result"})
)

func init() {
	prometheus.MustRegister(LoginAttempts)
	prometheus.MustRegister(LoginsInFlight)
	prometheus.MustRegister(TokenPolls)
	prometheus.MustRegister(LoginOutcomes)
	prometheus.MustRegister(CredentialWrites)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics, for
// applications embedding the login packages in a long-running process.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// WriteTextfile dumps the default registry in the text exposition format,
// for the node exporter textfile collector. The write is atomic.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
