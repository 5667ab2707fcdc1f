package merkle

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/util"
)

// BuildMerkleTree creates a binary merkle tree from airdrop allocations.
// Leaves keep the order of the input, which is the order the eligibility list
// was published in.
//
// Pairs are hashed in ascending byte order so proofs carry no left/right flags.
// If there's an odd number of nodes at any level, the last node is paired with
// the zero hash.
func BuildMerkleTree(allocs []*types.Allocation) (*MerkleTree, error) {
	if len(allocs) == 0 {
		return nil, fmt.Errorf("cannot build merkle tree from empty allocation list")
	}

	leaves := make([][32]byte, len(allocs))
	accountIndex := make(map[common.Address]int, len(allocs))
	for i, alloc := range allocs {
		if err := ValidateAllocation(alloc); err != nil {
			return nil, fmt.Errorf("allocation %d: %w", i, err)
		}
		if prev, exists := accountIndex[alloc.Account]; exists {
			return nil, fmt.Errorf("allocation %d: account %s already allocated at index %d", i, alloc.Account.Hex(), prev)
		}
		accountIndex[alloc.Account] = i

		leaf, err := HashLeaf(alloc.Account, alloc.Amount)
		if err != nil {
			return nil, fmt.Errorf("allocation %d: %w", i, err)
		}
		leaves[i] = leaf
	}

	// Build tree levels bottom-up
	levels := make([][][32]byte, 0)
	levels = append(levels, leaves)

	currentLevel := leaves
	for len(currentLevel) > 1 {
		nextLevel := make([][32]byte, 0, (len(currentLevel)+1)/2)

		for i := 0; i < len(currentLevel); i += 2 {
			var right [32]byte
			if i+1 < len(currentLevel) {
				right = currentLevel[i+1]
			}
			nextLevel = append(nextLevel, hashPair(currentLevel[i], right))
		}

		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	copied := make([]*types.Allocation, len(allocs))
	for i, alloc := range allocs {
		copied[i] = &types.Allocation{Account: alloc.Account, Amount: new(big.Int).Set(alloc.Amount)}
	}

	return &MerkleTree{
		Leaves:       leaves,
		Root:         currentLevel[0],
		Allocations:  copied,
		levels:       levels,
		accountIndex: accountIndex,
	}, nil
}

// GenerateProof creates a merkle proof for the leaf at the given index.
func (mt *MerkleTree) GenerateProof(leafIndex int) (*MerkleProof, error) {
	if leafIndex < 0 || leafIndex >= len(mt.Leaves) {
		return nil, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves)", leafIndex, len(mt.Leaves))
	}

	proof := make([][32]byte, 0, len(mt.levels)-1)
	index := leafIndex

	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]

		siblingIndex := index ^ 1
		var sibling [32]byte
		if siblingIndex < len(currentLevel) {
			sibling = currentLevel[siblingIndex]
		}
		proof = append(proof, sibling)

		index = index / 2
	}

	alloc := mt.Allocations[leafIndex]
	return &MerkleProof{
		LeafIndex: leafIndex,
		Account:   alloc.Account,
		Amount:    new(big.Int).Set(alloc.Amount),
		Leaf:      mt.Leaves[leafIndex],
		Proof:     proof,
	}, nil
}

// ProofForAccount looks up the allocation for account and returns its proof.
func (mt *MerkleTree) ProofForAccount(account common.Address) (*MerkleProof, error) {
	index, ok := mt.accountIndex[account]
	if !ok {
		return nil, fmt.Errorf("account %s is not part of the allocation list", account.Hex())
	}
	return mt.GenerateProof(index)
}

// Verify checks the proof against root.
func (p *MerkleProof) Verify(root [32]byte) bool {
	if p == nil {
		return false
	}
	return VerifyProof(p.Proof, root, p.Leaf)
}

// VerifyProof folds the proof over leaf with sorted-pair hashing and compares
// the result to root. An empty proof is only valid when root equals leaf.
func VerifyProof(proof [][32]byte, root [32]byte, leaf [32]byte) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}
	return computed == root
}

// HashLeaf derives the leaf for an allocation:
// keccak256(bytes.concat(keccak256(abi.encode(account, amount))))
//
// The second round keeps a 64 byte internal node from ever being accepted as a leaf.
func HashLeaf(account common.Address, amount *big.Int) ([32]byte, error) {
	encoded, err := util.EncodeAllocation(account, amount)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to encode allocation: %w", err)
	}

	inner := crypto.Keccak256(encoded)
	return [32]byte(crypto.Keccak256Hash(inner)), nil
}

// ValidateAllocation enforces the eligibility list policy: a non-zero account
// and an amount in (0, 2^256).
func ValidateAllocation(alloc *types.Allocation) error {
	if alloc == nil {
		return fmt.Errorf("allocation is nil")
	}
	if alloc.Account == (common.Address{}) {
		return fmt.Errorf("allocation account cannot be the zero address")
	}
	if alloc.Amount == nil || alloc.Amount.Sign() <= 0 {
		return fmt.Errorf("allocation amount for %s must be positive", alloc.Account.Hex())
	}
	if alloc.Amount.BitLen() > 256 {
		return fmt.Errorf("allocation amount for %s exceeds uint256", alloc.Account.Hex())
	}
	return nil
}

// hashPair computes keccak256 over the two hashes concatenated in ascending order.
func hashPair(a, b [32]byte) [32]byte {
	data := make([]byte, 64)
	if bytes.Compare(a[:], b[:]) <= 0 {
		copy(data[0:32], a[:])
		copy(data[32:64], b[:])
	} else {
		copy(data[0:32], b[:])
		copy(data[32:64], a[:])
	}

	return [32]byte(crypto.Keccak256Hash(data))
}
