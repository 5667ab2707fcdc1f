package types

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// SignatureLength is the length of a packed r || s || v signature
const SignatureLength = 65

// Allocation is a single (account, amount) eligibility entry committed to by the merkle root.
type Allocation struct {
	Account common.Address
	Amount  *big.Int
}

type jsonAllocation struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

// MarshalJSON encodes the amount as a decimal string so 256-bit values survive
// JSON tooling that parses numbers as doubles.
func (a Allocation) MarshalJSON() ([]byte, error) {
	amount := "0"
	if a.Amount != nil {
		amount = a.Amount.String()
	}
	return json.Marshal(&jsonAllocation{
		Account: a.Account.Hex(),
		Amount:  amount,
	})
}

// UnmarshalJSON accepts decimal or 0x-prefixed hex amounts.
func (a *Allocation) UnmarshalJSON(data []byte) error {
	var raw jsonAllocation
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !common.IsHexAddress(raw.Account) {
		return fmt.Errorf("invalid account address: %q", raw.Account)
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return err
	}
	a.Account = common.HexToAddress(raw.Account)
	a.Amount = amount
	return nil
}

// ParseAmount parses a decimal or 0x-prefixed hex string into a uint256-bounded integer.
func ParseAmount(s string) (*big.Int, error) {
	amount, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative: %q", s)
	}
	return amount, nil
}

// Signature is a secp256k1 signature split into its EVM components.
type Signature struct {
	V uint8
	R [32]byte
	S [32]byte
}

// SignatureFromBytes splits a packed 65 byte r || s || v signature.
func SignatureFromBytes(sig []byte) (*Signature, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("invalid signature length: expected %d bytes, got %d", SignatureLength, len(sig))
	}
	s := &Signature{V: sig[64]}
	copy(s.R[:], sig[0:32])
	copy(s.S[:], sig[32:64])
	return s, nil
}

// Bytes packs the signature as r || s || v.
func (s *Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out[0:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

func (s *Signature) String() string {
	return hexutil.Encode(s.Bytes())
}

// ClaimRequest carries everything a claimant submits. The submitter of the
// request is irrelevant; only Account's signature and eligibility matter.
type ClaimRequest struct {
	Account   common.Address
	Amount    *big.Int
	Proof     [][32]byte
	Signature *Signature
}

// ClaimRecord is the durable record of a successful claim.
type ClaimRecord struct {
	ClaimID   string         `json:"claimId"`
	Account   common.Address `json:"account"`
	Amount    *big.Int       `json:"amount"`
	ClaimedAt int64          `json:"claimedAt"`
}

// ClaimedEvent is emitted exactly once per successful claim.
type ClaimedEvent struct {
	ClaimID   string         `json:"claimId"`
	Account   common.Address `json:"account"`
	Amount    *big.Int       `json:"amount"`
	Timestamp int64          `json:"timestamp"`
}

// NewClaimedEvent derives the event from the record that was committed.
func NewClaimedEvent(record *ClaimRecord) *ClaimedEvent {
	return &ClaimedEvent{
		ClaimID:   record.ClaimID,
		Account:   record.Account,
		Amount:    new(big.Int).Set(record.Amount),
		Timestamp: record.ClaimedAt,
	}
}
