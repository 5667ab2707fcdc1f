package server

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/airdrop"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/metrics"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// handleClaim handles POST /claim
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var body types.ClaimRequestV1
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "failed to parse request: "+err.Error())
		return
	}

	req, err := body.ToClaimRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	record, err := s.ledger.Claim(r.Context(), req)
	if err != nil {
		status, code := claimErrorStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Sugar().Errorw("Claim failed", "account", req.Account.Hex(), "error", err)
			writeError(w, status, code, "internal error")
			return
		}
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, types.NewClaimResponseV1(record))
}

// claimErrorStatus maps the claim error taxonomy onto HTTP
func claimErrorStatus(err error) (int, string) {
	code := airdrop.ResultLabel(err)
	switch {
	case errors.Is(err, airdrop.ErrAlreadyClaimed):
		return http.StatusConflict, code
	case errors.Is(err, airdrop.ErrInvalidSignature):
		return http.StatusUnauthorized, code
	case errors.Is(err, airdrop.ErrInvalidProof):
		return http.StatusForbidden, code
	case errors.Is(err, airdrop.ErrInvalidAmount):
		return http.StatusBadRequest, code
	case errors.Is(err, airdrop.ErrDisbursementFailure):
		return http.StatusBadGateway, code
	default:
		return http.StatusInternalServerError, code
	}
}

// handleMessageHash handles GET /message-hash?account=&amount=
func (s *Server) handleMessageHash(w http.ResponseWriter, r *http.Request) {
	account, amount, ok := parseAccountAmount(w, r)
	if !ok {
		return
	}

	digest, err := s.ledger.GetMessageHash(account, amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, airdrop.ResultLabel(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, &types.MessageHashResponseV1{
		Account: account.Hex(),
		Amount:  amount.String(),
		Digest:  digest.Hex(),
	})
}

// handleTypedData handles GET /typed-data?account=&amount= and returns the
// eth_signTypedData_v4 payload for the claim
func (s *Server) handleTypedData(w http.ResponseWriter, r *http.Request) {
	account, amount, ok := parseAccountAmount(w, r)
	if !ok {
		return
	}
	if _, err := s.ledger.GetMessageHash(account, amount); err != nil {
		writeError(w, http.StatusBadRequest, airdrop.ResultLabel(err), err.Error())
		return
	}

	typed := s.ledger.GetDomain().TypedData(account, amount)
	// uint256 as a decimal string keeps full precision in JavaScript wallets
	typed.Message["amount"] = amount.String()

	writeJSON(w, http.StatusOK, typed)
}

// handleMerkleRoot handles GET /merkle-root
func (s *Server) handleMerkleRoot(w http.ResponseWriter, _ *http.Request) {
	root := s.ledger.GetMerkleRoot()
	writeJSON(w, http.StatusOK, &types.MerkleRootResponseV1{MerkleRoot: hexutil.Encode(root[:])})
}

// handleAirdropToken handles GET /airdrop-token
func (s *Server) handleAirdropToken(w http.ResponseWriter, _ *http.Request) {
	tok := s.ledger.GetAirdropToken()
	writeJSON(w, http.StatusOK, &types.AirdropTokenResponseV1{
		Token:   tok.Address().Hex(),
		Reserve: tok.Reserve().Hex(),
	})
}

// handleClaimStatus handles GET /claims/{account}
func (s *Server) handleClaimStatus(w http.ResponseWriter, r *http.Request) {
	account, ok := parseAccount(w, r.PathValue("account"))
	if !ok {
		return
	}

	record, err := s.ledger.GetClaim(account)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load claim", "account", account.Hex(), "error", err)
		writeError(w, http.StatusInternalServerError, metrics.ResultError, "internal error")
		return
	}

	resp := &types.ClaimStatusResponseV1{Account: account.Hex(), Claimed: record != nil}
	if record != nil {
		resp.Claim = types.NewClaimResponseV1(record)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleProof handles GET /proofs/{account}
func (s *Server) handleProof(w http.ResponseWriter, r *http.Request) {
	account, ok := parseAccount(w, r.PathValue("account"))
	if !ok {
		return
	}

	if s.proofs == nil {
		writeError(w, http.StatusNotFound, "not_found", "proofs are not served")
		return
	}
	entry, found := s.proofs.Lookup(account)
	if !found {
		writeError(w, http.StatusNotFound, "not_eligible", "account is not in the eligibility set")
		return
	}

	writeJSON(w, http.StatusOK, &types.ProofResponseV1{
		Account: account.Hex(),
		Amount:  entry.Amount,
		Leaf:    entry.Leaf,
		Proof:   entry.Proof,
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.ledger.HealthCheck(); err != nil {
		metrics.PersistenceStatus.Set(0)
		writeJSON(w, http.StatusServiceUnavailable, &types.HealthResponseV1{Status: "unhealthy", Error: err.Error()})
		return
	}
	metrics.PersistenceStatus.Set(1)
	writeJSON(w, http.StatusOK, &types.HealthResponseV1{Status: "ok"})
}

func parseAccount(w http.ResponseWriter, raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid account address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func parseAccountAmount(w http.ResponseWriter, r *http.Request) (common.Address, *big.Int, bool) {
	account, ok := parseAccount(w, r.URL.Query().Get("account"))
	if !ok {
		return common.Address{}, nil, false
	}
	amount, err := types.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return common.Address{}, nil, false
	}
	return account, amount, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, &types.ErrorResponseV1{Error: message, Code: code})
}
