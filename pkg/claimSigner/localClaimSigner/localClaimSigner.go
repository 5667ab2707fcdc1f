package localClaimSigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// LocalClaimSigner signs with a private key held in process memory.
type LocalClaimSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

func NewLocalClaimSigner(privateKey *ecdsa.PrivateKey) *LocalClaimSigner {
	return &LocalClaimSigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// NewLocalClaimSignerFromHex parses a hex private key with or without 0x prefix.
func NewLocalClaimSignerFromHex(hexKey string) (*LocalClaimSigner, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return NewLocalClaimSigner(privateKey), nil
}

func (l *LocalClaimSigner) Address(_ context.Context) (common.Address, error) {
	return l.address, nil
}

func (l *LocalClaimSigner) SignDigest(ctx context.Context, digest common.Hash) (*types.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(digest.Bytes(), l.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	sig[64] += 27

	return types.SignatureFromBytes(sig)
}
