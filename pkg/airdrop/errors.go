package airdrop

import (
	"errors"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/metrics"
)

var (
	// ErrAlreadyClaimed is returned when the account has a prior successful claim
	ErrAlreadyClaimed = errors.New("account has already claimed")

	// ErrInvalidSignature is returned when the signature does not authorize the
	// (account, amount) pair under this ledger's domain
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidProof is returned when (account, amount) is not provable under the root
	ErrInvalidProof = errors.New("invalid merkle proof")

	// ErrDisbursementFailure is returned when the token transfer failed
	ErrDisbursementFailure = errors.New("disbursement failed")

	// ErrInvalidAmount is returned for nil, zero, negative or wider than 256-bit amounts
	ErrInvalidAmount = errors.New("invalid claim amount")
)

// ResultLabel maps a Claim error onto its metrics label.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrAlreadyClaimed):
		return metrics.ResultAlreadyClaimed
	case errors.Is(err, ErrInvalidSignature):
		return metrics.ResultInvalidSignature
	case errors.Is(err, ErrInvalidProof):
		return metrics.ResultInvalidProof
	case errors.Is(err, ErrInvalidAmount):
		return metrics.ResultInvalidAmount
	case errors.Is(err, ErrDisbursementFailure):
		return metrics.ResultDisbursementFailure
	default:
		return metrics.ResultError
	}
}
