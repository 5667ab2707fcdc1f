package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ClaimRequestV1 is the HTTP body of POST /claim. The signature is given either
// packed in Signature or split into V, R and S.
type ClaimRequestV1 struct {
	Account   string   `json:"account"`
	Amount    string   `json:"amount"`
	Proof     []string `json:"proof"`
	Signature string   `json:"signature,omitempty"`
	V         uint8    `json:"v,omitempty"`
	R         string   `json:"r,omitempty"`
	S         string   `json:"s,omitempty"`
}

// ToClaimRequest decodes the wire form. Failures here are malformed input,
// not claim outcomes.
func (c *ClaimRequestV1) ToClaimRequest() (*ClaimRequest, error) {
	if !common.IsHexAddress(c.Account) {
		return nil, fmt.Errorf("invalid account address: %q", c.Account)
	}
	amount, err := ParseAmount(c.Amount)
	if err != nil {
		return nil, err
	}

	proof := make([][32]byte, 0, len(c.Proof))
	for i, p := range c.Proof {
		h, err := decodeBytes32(p)
		if err != nil {
			return nil, fmt.Errorf("invalid proof element %d: %w", i, err)
		}
		proof = append(proof, h)
	}

	sig, err := c.signature()
	if err != nil {
		return nil, err
	}

	return &ClaimRequest{
		Account:   common.HexToAddress(c.Account),
		Amount:    amount,
		Proof:     proof,
		Signature: sig,
	}, nil
}

func (c *ClaimRequestV1) signature() (*Signature, error) {
	if c.Signature != "" {
		raw, err := hexutil.Decode(c.Signature)
		if err != nil {
			return nil, fmt.Errorf("invalid signature: %w", err)
		}
		return SignatureFromBytes(raw)
	}

	if c.R == "" || c.S == "" {
		return nil, fmt.Errorf("signature is required")
	}
	r, err := decodeBytes32(c.R)
	if err != nil {
		return nil, fmt.Errorf("invalid r: %w", err)
	}
	s, err := decodeBytes32(c.S)
	if err != nil {
		return nil, fmt.Errorf("invalid s: %w", err)
	}
	return &Signature{V: c.V, R: r, S: s}, nil
}

func decodeBytes32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexutil.Decode(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// ClaimResponseV1 is a committed claim as returned over HTTP
type ClaimResponseV1 struct {
	ClaimID   string `json:"claimId"`
	Account   string `json:"account"`
	Amount    string `json:"amount"`
	ClaimedAt int64  `json:"claimedAt"`
}

func NewClaimResponseV1(record *ClaimRecord) *ClaimResponseV1 {
	return &ClaimResponseV1{
		ClaimID:   record.ClaimID,
		Account:   record.Account.Hex(),
		Amount:    record.Amount.String(),
		ClaimedAt: record.ClaimedAt,
	}
}

type ClaimStatusResponseV1 struct {
	Account string           `json:"account"`
	Claimed bool             `json:"claimed"`
	Claim   *ClaimResponseV1 `json:"claim,omitempty"`
}

type MessageHashResponseV1 struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
	Digest  string `json:"digest"`
}

type MerkleRootResponseV1 struct {
	MerkleRoot string `json:"merkleRoot"`
}

type AirdropTokenResponseV1 struct {
	Token   string `json:"token"`
	Reserve string `json:"reserve"`
}

type ProofResponseV1 struct {
	Account string   `json:"account"`
	Amount  string   `json:"amount"`
	Leaf    string   `json:"leaf"`
	Proof   []string `json:"proof"`
}

type HealthResponseV1 struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponseV1 carries a machine readable code alongside the message
type ErrorResponseV1 struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
