package persistence

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// AirdropState identifies the airdrop a claim store belongs to. Claim records
// are only meaningful for the root, token and domain they were made under.
type AirdropState struct {
	// MerkleRoot is the hex encoded eligibility root
	MerkleRoot string `json:"merkleRoot"`

	// TokenAddress is the token claims are paid in
	TokenAddress string `json:"tokenAddress"`

	// ChainID and VerifyingContract identify the signing domain
	ChainID           string `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`

	// CreatedAt is the Unix timestamp the state was first saved
	CreatedAt int64 `json:"createdAt"`
}

// Matches returns an error describing the first field that differs from other.
func (s *AirdropState) Matches(other *AirdropState) error {
	if s == nil || other == nil {
		return fmt.Errorf("cannot compare nil airdrop state")
	}
	if s.MerkleRoot != other.MerkleRoot {
		return fmt.Errorf("merkle root mismatch: stored %s, configured %s", s.MerkleRoot, other.MerkleRoot)
	}
	if s.TokenAddress != other.TokenAddress {
		return fmt.Errorf("token address mismatch: stored %s, configured %s", s.TokenAddress, other.TokenAddress)
	}
	if s.ChainID != other.ChainID {
		return fmt.Errorf("chain id mismatch: stored %s, configured %s", s.ChainID, other.ChainID)
	}
	if s.VerifyingContract != other.VerifyingContract {
		return fmt.Errorf("verifying contract mismatch: stored %s, configured %s", s.VerifyingContract, other.VerifyingContract)
	}
	return nil
}

// SortClaims orders records by ClaimedAt, breaking ties by account.
func SortClaims(records []*types.ClaimRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].ClaimedAt != records[j].ClaimedAt {
			return records[i].ClaimedAt < records[j].ClaimedAt
		}
		return bytes.Compare(records[i].Account.Bytes(), records[j].Account.Bytes()) < 0
	})
}

// CopyClaimRecord returns a deep copy of record.
func CopyClaimRecord(record *types.ClaimRecord) *types.ClaimRecord {
	if record == nil {
		return nil
	}
	copied := *record
	if record.Amount != nil {
		copied.Amount = new(big.Int).Set(record.Amount)
	}
	return &copied
}
