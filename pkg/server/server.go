package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/airdrop"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/allocations"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/metrics"
)

/*
Server exposes the ClaimLedger over HTTP.

Claim flow:
  GET /proofs/{account}:
    - Returns the account's allocation, leaf and proof from the published merkle file
  GET /message-hash?account=&amount=  (or GET /typed-data for eth_signTypedData_v4):
    - Returns the digest the account must sign
  POST /claim:
    - Request: { account, amount, proof[], v, r, s } or { ..., signature }
    - Anyone may submit; only the account's signature and eligibility matter
    - Response: the committed claim record
    - Rate limited with a token bucket shared by all callers

Error mapping for POST /claim:
  already claimed      409
  invalid signature    401
  invalid proof        403
  invalid amount/body  400
  disbursement failure 502
  anything else        500

Read-only:
  GET /merkle-root, GET /airdrop-token, GET /claims/{account}, GET /health, GET /metrics
*/

const (
	DefaultReadHeaderTimeout = 10 * time.Second
	maxRequestBodyBytes      = 64 * 1024
)

type ServerConfig struct {
	Port      int
	RateLimit float64
	RateBurst int
}

// Server handles HTTP requests for the airdrop
type Server struct {
	ledger     *airdrop.ClaimLedger
	proofs     *allocations.OutputFile
	limiter    *rate.Limiter
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer creates a new server instance. proofs may be nil, in which case
// GET /proofs/{account} answers 404.
func NewServer(cfg *ServerConfig, ledger *airdrop.ClaimLedger, proofs *allocations.OutputFile, logger *zap.Logger) *Server {
	s := &Server{
		ledger:  ledger,
		proofs:  proofs,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  logger,
	}

	mux := http.NewServeMux()

	mux.Handle("POST /claim", s.instrument("/claim", s.rateLimited(http.HandlerFunc(s.handleClaim))))

	mux.Handle("GET /message-hash", s.instrument("/message-hash", http.HandlerFunc(s.handleMessageHash)))
	mux.Handle("GET /typed-data", s.instrument("/typed-data", http.HandlerFunc(s.handleTypedData)))
	mux.Handle("GET /merkle-root", s.instrument("/merkle-root", http.HandlerFunc(s.handleMerkleRoot)))
	mux.Handle("GET /airdrop-token", s.instrument("/airdrop-token", http.HandlerFunc(s.handleAirdropToken)))
	mux.Handle("GET /claims/{account}", s.instrument("/claims", http.HandlerFunc(s.handleClaimStatus)))
	mux.Handle("GET /proofs/{account}", s.instrument("/proofs", http.HandlerFunc(s.handleProof)))

	mux.Handle("GET /health", s.instrument("/health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go func() {
		s.logger.Sugar().Infow("Starting HTTP server", "port", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Sugar().Errorw("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop waits for in-flight requests, so no claim is cut off mid-disbursement
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// GetHandler returns the HTTP handler (for testing)
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			metrics.RateLimited.Inc()
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequests.WithLabelValues(route, fmt.Sprintf("%d", rec.status)).Inc()
	})
}
