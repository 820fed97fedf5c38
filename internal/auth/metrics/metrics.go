// Package metrics exposes Prometheus counters for sign-in flows and session
// tokens.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services report to.
type Recorder interface {
	OAuthFlow(provider, outcome string)
	TokensIssued()
	TokensRevoked(n int)
	TokenRefresh(outcome string)
}

// Nop discards everything. Used when no registry is configured and in tests.
type Nop struct{}

func (Nop) OAuthFlow(string, string) {}
func (Nop) TokensIssued()            {}
func (Nop) TokensRevoked(int)        {}
func (Nop) TokenRefresh(string)      {}

// Collector is the Prometheus backed Recorder.
type Collector struct {
	oauthFlows    *prometheus.CounterVec
	tokensIssued  prometheus.Counter
	tokensRevoked prometheus.Counter
	tokenRefresh  *prometheus.CounterVec
}

// New registers the auth metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		oauthFlows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beatme_oauth_flows_total",
			Help: "Completed OAuth sign-in flows by provider and outcome.",
		}, []string{"provider", "outcome"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beatme_tokens_issued_total",
			Help: "Session token pairs issued.",
		}),
		tokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beatme_tokens_revoked_total",
			Help: "Session token store entries deleted by revocation.",
		}),
		tokenRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beatme_token_refresh_total",
			Help: "Refresh attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.oauthFlows, c.tokensIssued, c.tokensRevoked, c.tokenRefresh)
	return c
}

func (c *Collector) OAuthFlow(provider, outcome string) {
	c.oauthFlows.WithLabelValues(provider, outcome).Inc()
}

func (c *Collector) TokensIssued() { c.tokensIssued.Inc() }

func (c *Collector) TokensRevoked(n int) {
	if n > 0 {
		c.tokensRevoked.Add(float64(n))
	}
}

func (c *Collector) TokenRefresh(outcome string) {
	c.tokenRefresh.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
