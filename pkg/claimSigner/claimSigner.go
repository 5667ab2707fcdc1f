package claimSigner

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/typedData"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// IClaimSigner produces claim authorizations for a single account.
type IClaimSigner interface {
	// Address returns the account the signer signs for
	Address(ctx context.Context) (common.Address, error)

	// SignDigest signs a 32 byte digest, returning v as 27 or 28
	SignDigest(ctx context.Context, digest common.Hash) (*types.Signature, error)
}

// SignedClaim is a claim authorization ready to submit.
type SignedClaim struct {
	Account   common.Address
	Amount    *big.Int
	Digest    common.Hash
	Signature *types.Signature
}

// SignClaim authorizes the signer's own account to claim amount under domain.
func SignClaim(ctx context.Context, signer IClaimSigner, domain *typedData.Domain, amount *big.Int) (*SignedClaim, error) {
	account, err := signer.Address(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get signer address: %w", err)
	}

	digest, err := domain.ClaimDigest(account, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to build claim digest: %w", err)
	}

	sig, err := signer.SignDigest(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to sign claim digest: %w", err)
	}

	return &SignedClaim{
		Account:   account,
		Amount:    new(big.Int).Set(amount),
		Digest:    digest,
		Signature: sig,
	}, nil
}
