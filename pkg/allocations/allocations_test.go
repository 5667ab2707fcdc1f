package allocations

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/merkle"
)

var (
	jacob   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	someone = common.HexToAddress("0x2222222222222222222222222222222222222222")
	third   = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func Test_InputRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input", "whitelist.json")

	require.NoError(t, GenerateDefaultInput(path, []common.Address{jacob, someone}, ether(25)))

	allocs, err := ReadInput(path)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, jacob, allocs[0].Account)
	assert.Equal(t, someone, allocs[1].Account)
	assert.Equal(t, 0, allocs[0].Amount.Cmp(ether(25)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"25000000000000000000"`)
}

func Test_ReadInputRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"not json":       `{`,
		"empty":          `{"allocations":[]}`,
		"zero amount":    `{"allocations":[{"account":"0x1111111111111111111111111111111111111111","amount":"0"}]}`,
		"bad address":    `{"allocations":[{"account":"0x11","amount":"1"}]}`,
		"negative":       `{"allocations":[{"account":"0x1111111111111111111111111111111111111111","amount":"-1"}]}`,
		"zero address":   `{"allocations":[{"account":"0x0000000000000000000000000000000000000000","amount":"1"}]}`,
		"garbage amount": `{"allocations":[{"account":"0x1111111111111111111111111111111111111111","amount":"ten"}]}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := ReadInput(path)
			require.Error(t, err)
		})
	}

	_, err := ReadInput(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func Test_GenerateDefaultInputInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.Error(t, GenerateDefaultInput(path, nil, ether(1)))
	require.Error(t, GenerateDefaultInput(path, []common.Address{jacob}, nil))
	require.Error(t, GenerateDefaultInput(path, []common.Address{jacob}, big.NewInt(0)))
}

func Test_OutputRoundTrip(t *testing.T) {
	allocsPath := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, GenerateDefaultInput(allocsPath, []common.Address{jacob, someone, third}, ether(25)))
	allocs, err := ReadInput(allocsPath)
	require.NoError(t, err)

	tree, err := merkle.BuildMerkleTree(allocs)
	require.NoError(t, err)

	out, err := BuildOutput(tree)
	require.NoError(t, err)
	assert.Equal(t, ether(75).String(), out.TotalAmount)
	require.Len(t, out.Claims, 3)
	assert.Equal(t, "0xa6aed4c9", out.MerkleRoot[:10])

	path := filepath.Join(t.TempDir(), "output.json")
	require.NoError(t, WriteOutput(path, out))

	loaded, err := ReadOutput(path)
	require.NoError(t, err)

	root, err := loaded.Root()
	require.NoError(t, err)
	assert.Equal(t, tree.Root, root)

	entry, ok := loaded.Lookup(someone)
	require.True(t, ok)
	proof, err := entry.DecodeProof()
	require.NoError(t, err)

	expected, err := tree.ProofForAccount(someone)
	require.NoError(t, err)
	assert.Equal(t, expected.Proof, proof)

	_, ok = loaded.Lookup(common.HexToAddress("0x4444444444444444444444444444444444444444"))
	assert.False(t, ok)
}

func Test_ReadOutputRejectsTampering(t *testing.T) {
	tree, err := merkle.BuildMerkleTree(nil)
	require.Error(t, err)
	require.Nil(t, tree)

	allocsPath := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, GenerateDefaultInput(allocsPath, []common.Address{jacob, someone, third}, ether(25)))
	allocs, err := ReadInput(allocsPath)
	require.NoError(t, err)
	tree, err = merkle.BuildMerkleTree(allocs)
	require.NoError(t, err)

	t.Run("inflated amount", func(t *testing.T) {
		out, err := BuildOutput(tree)
		require.NoError(t, err)
		out.Claims[0].Amount = ether(1000).String()

		path := filepath.Join(t.TempDir(), "output.json")
		require.NoError(t, WriteOutput(path, out))
		_, err = ReadOutput(path)
		require.Error(t, err)
	})

	t.Run("swapped proof", func(t *testing.T) {
		out, err := BuildOutput(tree)
		require.NoError(t, err)
		out.Claims[0].Proof, out.Claims[2].Proof = out.Claims[2].Proof, out.Claims[0].Proof

		path := filepath.Join(t.TempDir(), "output.json")
		require.NoError(t, WriteOutput(path, out))
		_, err = ReadOutput(path)
		require.Error(t, err)
	})

	t.Run("short root", func(t *testing.T) {
		out, err := BuildOutput(tree)
		require.NoError(t, err)
		out.MerkleRoot = "0x1234"
		require.Error(t, out.Verify())
	})
}
