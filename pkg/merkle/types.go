package merkle

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// MerkleTree represents a binary merkle tree built from airdrop allocations.
// The tree uses keccak256 hashing with sorted pairs for Solidity compatibility.
type MerkleTree struct {
	// Leaves contains the leaf hashes in allocation order
	Leaves [][32]byte

	// Root is the merkle root hash
	Root [32]byte

	// Allocations are the entries the leaves were derived from
	Allocations []*types.Allocation

	// levels stores all tree levels for proof generation
	// levels[0] = leaves, levels[len-1] = root
	levels [][][32]byte

	// accountIndex maps an account to its leaf index
	accountIndex map[common.Address]int
}

// MerkleProof represents a proof that an allocation is included in the tree.
// The proof consists of sibling hashes along the path from leaf to root.
type MerkleProof struct {
	// LeafIndex is the index of the leaf in the leaves array
	LeafIndex int

	Account common.Address
	Amount  *big.Int

	// Leaf is the hash of the allocation being proven
	Leaf [32]byte

	// Proof contains the sibling hashes from leaf to root
	// proof[0] is the sibling of the leaf, proof[len-1] is near the root
	Proof [][32]byte
}
