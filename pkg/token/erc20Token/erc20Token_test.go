package erc20Token

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token"
)

// anvil's first default account
const testPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func testConfig() *ERC20TokenConfig {
	return &ERC20TokenConfig{
		TokenAddress: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		PrivateKey:   testPrivateKey,
		ChainID:      big.NewInt(31337),
	}
}

func TestNewERC20Token(t *testing.T) {
	tok, err := NewERC20Token(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, testConfig().TokenAddress, tok.Address())

	key, err := crypto.HexToECDSA(testPrivateKey[2:])
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), tok.Reserve())
	require.Equal(t, DefaultReceiptTimeout, tok.receiptTimeout)
}

func TestNewERC20TokenInvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(cfg *ERC20TokenConfig)
	}{
		{"zero token address", func(cfg *ERC20TokenConfig) { cfg.TokenAddress = common.Address{} }},
		{"empty private key", func(cfg *ERC20TokenConfig) { cfg.PrivateKey = "" }},
		{"malformed private key", func(cfg *ERC20TokenConfig) { cfg.PrivateKey = "0x1234" }},
		{"missing chain id", func(cfg *ERC20TokenConfig) { cfg.ChainID = nil }},
		{"zero chain id", func(cfg *ERC20TokenConfig) { cfg.ChainID = big.NewInt(0) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)
			tok, err := NewERC20Token(cfg, nil, zap.NewNop())
			require.Error(t, err)
			require.Nil(t, tok)
		})
	}

	_, err := NewERC20Token(nil, nil, zap.NewNop())
	require.Error(t, err)
}

func TestERC20TokenTransferRejectsBeforeChainAccess(t *testing.T) {
	tok, err := NewERC20Token(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000cc")

	require.ErrorIs(t, tok.Transfer(ctx, common.Address{}, big.NewInt(1)), token.ErrInvalidRecipient)
	require.ErrorIs(t, tok.Transfer(ctx, recipient, big.NewInt(0)), token.ErrZeroAmount)
	require.ErrorIs(t, tok.Transfer(ctx, recipient, nil), token.ErrZeroAmount)
}

// fakeChain answers the calls a transfer makes: balanceOf, fee and nonce
// lookups, submission and an immediately successful receipt.
type fakeChain struct {
	bind.ContractBackend

	balance *big.Int

	mu   sync.Mutex
	sent []*ethereumTypes.Transaction
}

func (f *fakeChain) CallContract(_ context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return common.LeftPadBytes(f.balance.Bytes(), 32), nil
}

func (f *fakeChain) HeaderByNumber(_ context.Context, _ *big.Int) (*ethereumTypes.Header, error) {
	return &ethereumTypes.Header{Number: big.NewInt(1), BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (f *fakeChain) SuggestGasTipCap(_ context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeChain) PendingCodeAt(_ context.Context, _ common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeChain) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	return 60_000, nil
}

func (f *fakeChain) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	return 0, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *ethereumTypes.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) TransactionReceipt(_ context.Context, _ common.Hash) (*ethereumTypes.Receipt, error) {
	return &ethereumTypes.Receipt{Status: ethereumTypes.ReceiptStatusSuccessful, BlockNumber: big.NewInt(7)}, nil
}

func TestERC20TokenTransfer(t *testing.T) {
	chain := &fakeChain{balance: big.NewInt(100)}
	core, logs := observer.New(zapcore.InfoLevel)

	tok, err := NewERC20Token(testConfig(), chain, zap.New(core))
	require.NoError(t, err)

	recipient := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	require.NoError(t, tok.Transfer(context.Background(), recipient, big.NewInt(5)))

	require.Len(t, chain.sent, 1)
	tx := chain.sent[0]
	assert.Equal(t, testConfig().TokenAddress, *tx.To())

	submitted := logs.FilterMessage("Submitted token transfer").All()
	require.Len(t, submitted, 1)
	fields := submitted[0].ContextMap()
	assert.Equal(t, tx.Hash().Hex(), fields["txHash"])
	assert.Equal(t, tok.Reserve().Hex(), fields["from"])
	assert.Equal(t, recipient.Hex(), fields["to"])
	assert.Equal(t, "5", fields["amount"])

	confirmed := logs.FilterMessage("Token transfer confirmed").All()
	require.Len(t, confirmed, 1)
	assert.Equal(t, uint64(7), confirmed[0].ContextMap()["blockNumber"])
}

func TestERC20TokenTransferInsufficientReserve(t *testing.T) {
	chain := &fakeChain{balance: big.NewInt(1)}
	tok, err := NewERC20Token(testConfig(), chain, zap.NewNop())
	require.NoError(t, err)

	recipient := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	err = tok.Transfer(context.Background(), recipient, big.NewInt(5))
	require.ErrorIs(t, err, token.ErrInsufficientBalance)
	assert.Empty(t, chain.sent)
}
