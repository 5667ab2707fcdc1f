// Package typedData builds the EIP-712 digest a recipient signs to authorize a claim.
package typedData

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/util"
)

const (
	// DefaultName and DefaultVersion are the domain values claim signers expect.
	DefaultName    = "MerkleAirdrop"
	DefaultVersion = "1"

	ClaimTypeName   = "AirdropClaim"
	ClaimTypeString = "AirdropClaim(address account,uint256 amount)"
	domainString    = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
)

var (
	// ClaimTypeHash is keccak256("AirdropClaim(address account,uint256 amount)")
	ClaimTypeHash = crypto.Keccak256Hash([]byte(ClaimTypeString))

	domainTypeHash = crypto.Keccak256Hash([]byte(domainString))
)

// Domain identifies one deployment of the claim ledger. A signature produced
// for one domain never verifies under another.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// NewDomain returns the domain for the ledger at verifyingContract on chainID.
func NewDomain(chainID *big.Int, verifyingContract common.Address) *Domain {
	return &Domain{
		Name:              DefaultName,
		Version:           DefaultVersion,
		ChainID:           new(big.Int).Set(chainID),
		VerifyingContract: verifyingContract,
	}
}

// Validate checks the domain is usable for hashing.
func (d *Domain) Validate() error {
	if d == nil {
		return fmt.Errorf("domain is nil")
	}
	if d.Name == "" {
		return fmt.Errorf("domain name is required")
	}
	if d.Version == "" {
		return fmt.Errorf("domain version is required")
	}
	if d.ChainID == nil || d.ChainID.Sign() <= 0 {
		return fmt.Errorf("domain chain id must be positive")
	}
	if d.ChainID.BitLen() > 256 {
		return fmt.Errorf("domain chain id exceeds uint256")
	}
	return nil
}

// Separator returns the EIP-712 domain separator.
func (d *Domain) Separator() common.Hash {
	data := make([]byte, 0, 5*32)
	data = append(data, domainTypeHash.Bytes()...)
	data = append(data, crypto.Keccak256([]byte(d.Name))...)
	data = append(data, crypto.Keccak256([]byte(d.Version))...)
	data = append(data, math.U256Bytes(new(big.Int).Set(d.ChainID))...)
	data = append(data, common.LeftPadBytes(d.VerifyingContract.Bytes(), 32)...)
	return crypto.Keccak256Hash(data)
}

// HashClaimStruct returns keccak256(abi.encode(ClaimTypeHash, account, amount)).
func HashClaimStruct(account common.Address, amount *big.Int) (common.Hash, error) {
	encoded, err := util.EncodeTypedStruct(ClaimTypeHash, account, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode claim struct: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// ClaimDigest returns keccak256(0x1901 || domainSeparator || structHash), the
// value a recipient signs to authorize a claim of amount to account.
func (d *Domain) ClaimDigest(account common.Address, amount *big.Int) (common.Hash, error) {
	structHash, err := HashClaimStruct(account, amount)
	if err != nil {
		return common.Hash{}, err
	}
	return HashTypedDataV4(d.Separator(), structHash), nil
}

// HashTypedDataV4 combines a domain separator and struct hash into the final digest.
func HashTypedDataV4(separator common.Hash, structHash common.Hash) common.Hash {
	data := make([]byte, 0, 2+32+32)
	data = append(data, 0x19, 0x01)
	data = append(data, separator.Bytes()...)
	data = append(data, structHash.Bytes()...)
	return crypto.Keccak256Hash(data)
}

// TypedData renders the claim as an eth_signTypedData_v4 payload, for wallets
// that sign structured data rather than raw digests.
func (d *Domain) TypedData(account common.Address, amount *big.Int) apitypes.TypedData {
	chainID := math.HexOrDecimal256(*new(big.Int).Set(d.ChainID))
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			ClaimTypeName: {
				{Name: "account", Type: "address"},
				{Name: "amount", Type: "uint256"},
			},
		},
		PrimaryType: ClaimTypeName,
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           d.Version,
			ChainId:           &chainID,
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"account": account.Hex(),
			"amount":  new(big.Int).Set(amount),
		},
	}
}
