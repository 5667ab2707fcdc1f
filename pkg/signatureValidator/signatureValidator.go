package signatureValidator

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

/*
Claim signature checks

A claim carries a secp256k1 signature (v, r, s) over the EIP-712 claim digest.
The signer is recovered from the digest and compared to the account being
credited.

Accepted encodings:
  - v is 27 or 28 (legacy Ethereum form) or 0 or 1 (raw recovery id)
  - r and s must lie in [1, n-1]
  - s must lie in the lower half of the curve order

Rejecting high-s values keeps each (digest, signer) pair to one valid signature.
Any recovery failure is reported as an invalid signature, never as a panic.
*/

// ErrRecoveryFailed is returned when no signer can be recovered from a signature
var ErrRecoveryFailed = errors.New("signature recovery failed")

// RecoverSigner returns the address that produced sig over digest.
func RecoverSigner(digest common.Hash, sig *types.Signature) (common.Address, error) {
	if sig == nil {
		return common.Address{}, fmt.Errorf("%w: signature is nil", ErrRecoveryFailed)
	}

	recoveryID, err := normalizeV(sig.V)
	if err != nil {
		return common.Address{}, err
	}

	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if !crypto.ValidateSignatureValues(recoveryID, r, s, true) {
		return common.Address{}, fmt.Errorf("%w: signature values out of range", ErrRecoveryFailed)
	}

	raw := make([]byte, types.SignatureLength)
	copy(raw[0:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = recoveryID

	pubKey, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// IsValidSignature reports whether sig over digest was produced by expected.
// It returns false on any recovery failure.
func IsValidSignature(expected common.Address, digest common.Hash, sig *types.Signature) bool {
	signer, err := RecoverSigner(digest, sig)
	if err != nil {
		return false
	}
	return signer == expected
}

func normalizeV(v uint8) (uint8, error) {
	switch v {
	case 0, 1:
		return v, nil
	case 27, 28:
		return v - 27, nil
	default:
		return 0, fmt.Errorf("%w: invalid recovery byte %d", ErrRecoveryFailed, v)
	}
}

// IsCanonical reports whether sig's v byte and (r, s) values would be accepted,
// independent of any digest.
func IsCanonical(sig *types.Signature) bool {
	if sig == nil {
		return false
	}
	recoveryID, err := normalizeV(sig.V)
	if err != nil {
		return false
	}
	return crypto.ValidateSignatureValues(recoveryID, new(big.Int).SetBytes(sig.R[:]), new(big.Int).SetBytes(sig.S[:]), true)
}
