// Package allocations reads and writes the eligibility input file consumed by
// `airdropTool make-merkle` and the proofs file it produces.
package allocations

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// InputFile is the list of eligible accounts and their allocations.
type InputFile struct {
	Allocations []*types.Allocation `json:"allocations"`
}

// OutputEntry is one account's leaf and proof.
type OutputEntry struct {
	Account string   `json:"account"`
	Amount  string   `json:"amount"`
	Leaf    string   `json:"leaf"`
	Proof   []string `json:"proof"`
}

// OutputFile is the generated merkle root together with every account's proof.
type OutputFile struct {
	MerkleRoot  string         `json:"merkleRoot"`
	TotalAmount string         `json:"totalAmount"`
	Claims      []*OutputEntry `json:"claims"`
}

// ReadInput loads and validates an input file.
func ReadInput(path string) ([]*types.Allocation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read input file %s", path)
	}

	var input InputFile
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, errors.Wrapf(err, "failed to parse input file %s", path)
	}
	if len(input.Allocations) == 0 {
		return nil, errors.Errorf("input file %s has no allocations", path)
	}
	for i, alloc := range input.Allocations {
		if err := merkle.ValidateAllocation(alloc); err != nil {
			return nil, errors.Wrapf(err, "invalid allocation at index %d", i)
		}
	}
	return input.Allocations, nil
}

// WriteInput writes allocations as an input file.
func WriteInput(path string, allocs []*types.Allocation) error {
	return writeJSON(path, &InputFile{Allocations: allocs})
}

// GenerateDefaultInput writes an input file giving every account the same amount.
func GenerateDefaultInput(path string, accounts []common.Address, amount *big.Int) error {
	if len(accounts) == 0 {
		return errors.New("at least one account is required")
	}
	if amount == nil {
		return errors.New("amount is required")
	}
	allocs := make([]*types.Allocation, 0, len(accounts))
	for _, account := range accounts {
		allocs = append(allocs, &types.Allocation{Account: account, Amount: new(big.Int).Set(amount)})
	}
	for i, alloc := range allocs {
		if err := merkle.ValidateAllocation(alloc); err != nil {
			return errors.Wrapf(err, "invalid allocation at index %d", i)
		}
	}
	return WriteInput(path, allocs)
}

// BuildOutput generates a proof for every allocation in tree.
func BuildOutput(tree *merkle.MerkleTree) (*OutputFile, error) {
	out := &OutputFile{
		MerkleRoot: hexutil.Encode(tree.Root[:]),
		Claims:     make([]*OutputEntry, 0, len(tree.Allocations)),
	}

	total := new(big.Int)
	for i, alloc := range tree.Allocations {
		proof, err := tree.GenerateProof(i)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate proof for %s", alloc.Account.Hex())
		}
		entry := &OutputEntry{
			Account: alloc.Account.Hex(),
			Amount:  alloc.Amount.String(),
			Leaf:    hexutil.Encode(proof.Leaf[:]),
			Proof:   make([]string, 0, len(proof.Proof)),
		}
		for _, sibling := range proof.Proof {
			entry.Proof = append(entry.Proof, hexutil.Encode(sibling[:]))
		}
		out.Claims = append(out.Claims, entry)
		total.Add(total, alloc.Amount)
	}
	out.TotalAmount = total.String()

	return out, nil
}

// WriteOutput writes an output file.
func WriteOutput(path string, out *OutputFile) error {
	return writeJSON(path, out)
}

// ReadOutput loads an output file and checks that its entries rebuild to its root.
func ReadOutput(path string) (*OutputFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read merkle file %s", path)
	}

	var out OutputFile
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrapf(err, "failed to parse merkle file %s", path)
	}
	if err := out.Verify(); err != nil {
		return nil, errors.Wrapf(err, "merkle file %s is inconsistent", path)
	}
	return &out, nil
}

// Root decodes the merkle root.
func (o *OutputFile) Root() ([32]byte, error) {
	return decodeHash(o.MerkleRoot)
}

// Allocations returns the entries as allocations in file order.
func (o *OutputFile) Allocations() ([]*types.Allocation, error) {
	allocs := make([]*types.Allocation, 0, len(o.Claims))
	for i, entry := range o.Claims {
		if !common.IsHexAddress(entry.Account) {
			return nil, errors.Errorf("invalid account at index %d: %q", i, entry.Account)
		}
		amount, err := types.ParseAmount(entry.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid amount at index %d", i)
		}
		allocs = append(allocs, &types.Allocation{Account: common.HexToAddress(entry.Account), Amount: amount})
	}
	return allocs, nil
}

// Verify rebuilds the tree from the entries and checks the root and every proof.
func (o *OutputFile) Verify() error {
	root, err := o.Root()
	if err != nil {
		return err
	}
	allocs, err := o.Allocations()
	if err != nil {
		return err
	}
	tree, err := merkle.BuildMerkleTree(allocs)
	if err != nil {
		return errors.Wrap(err, "failed to rebuild tree")
	}
	if tree.Root != root {
		return errors.Errorf("root mismatch: file has %s, entries build %s", o.MerkleRoot, hexutil.Encode(tree.Root[:]))
	}
	for i, entry := range o.Claims {
		proof, err := entry.DecodeProof()
		if err != nil {
			return errors.Wrapf(err, "invalid proof at index %d", i)
		}
		if !merkle.VerifyProof(proof, root, tree.Leaves[i]) {
			return errors.Errorf("proof for %s does not verify", entry.Account)
		}
	}
	return nil
}

// Lookup returns the entry for account.
func (o *OutputFile) Lookup(account common.Address) (*OutputEntry, bool) {
	for _, entry := range o.Claims {
		if common.HexToAddress(entry.Account) == account {
			return entry, true
		}
	}
	return nil, false
}

// DecodeProof decodes the entry's sibling hashes.
func (e *OutputEntry) DecodeProof() ([][32]byte, error) {
	proof := make([][32]byte, 0, len(e.Proof))
	for _, s := range e.Proof {
		h, err := decodeHash(s)
		if err != nil {
			return nil, err
		}
		proof = append(proof, h)
	}
	return proof, nil
}

func decodeHash(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexutil.Decode(s)
	if err != nil {
		return out, errors.Wrapf(err, "invalid hash %q", s)
	}
	if len(b) != 32 {
		return out, errors.Errorf("hash must be 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode file")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
