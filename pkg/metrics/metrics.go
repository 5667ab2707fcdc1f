package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Claim outcome label values
const (
	ResultSuccess             = "success"
	ResultAlreadyClaimed      = "already_claimed"
	ResultInvalidSignature    = "invalid_signature"
	ResultInvalidProof        = "invalid_proof"
	ResultInvalidAmount       = "invalid_amount"
	ResultDisbursementFailure = "disbursement_failure"
	ResultError               = "error"
)

var (
	// ============================================
	// Claims
	// ============================================
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdrop_claims_total",
			Help: "Total number of claim attempts by result",
		},
		[]string{"result"},
	)

	ClaimDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airdrop_claim_duration_seconds",
			Help:    "Claim processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	ClaimedAccounts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airdrop_claimed_accounts",
		Help: "Number of accounts that have claimed",
	})

	// ClaimedAmount is approximate; amounts are converted to float64
	ClaimedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airdrop_claimed_amount_total",
		Help: "Total base units disbursed (approximate)",
	})

	ClaimRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdrop_claim_rollbacks_total",
			Help: "Claim records reverted or left in place after a failed disbursement",
		},
		[]string{"outcome"},
	)

	// ============================================
	// Events
	// ============================================
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdrop_events_published_total",
			Help: "Total number of Claimed events published",
		},
		[]string{"sink"},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdrop_events_failed_total",
			Help: "Total number of Claimed events that could not be published",
		},
		[]string{"sink"},
	)

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airdrop_events_dropped_total",
		Help: "Total number of Claimed events for committed claims that could not be queued",
	})

	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airdrop_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	// ============================================
	// HTTP
	// ============================================
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdrop_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airdrop_http_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})

	PersistenceStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airdrop_persistence_status",
		Help: "Persistence health (1=healthy, 0=unhealthy)",
	})
)
