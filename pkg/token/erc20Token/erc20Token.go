package erc20Token

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/middleware-bindings/IERC20"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token"
)

const DefaultReceiptTimeout = 2 * time.Minute

// Backend is the chain access the token needs: contract calls, transaction
// submission and receipt lookups. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type ERC20TokenConfig struct {
	TokenAddress common.Address
	// PrivateKey is the hex encoded key of the reserve account holding the airdrop supply
	PrivateKey     string
	ChainID        *big.Int
	ReceiptTimeout time.Duration
}

// ERC20Token pays claims out of an ERC-20 balance held by a reserve key.
type ERC20Token struct {
	contract       *IERC20.IERC20
	backend        Backend
	txOpts         *bind.TransactOpts
	address        common.Address
	receiptTimeout time.Duration
	logger         *zap.Logger
}

func NewERC20Token(cfg *ERC20TokenConfig, backend Backend, logger *zap.Logger) (*ERC20Token, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.TokenAddress == (common.Address{}) {
		return nil, fmt.Errorf("token address cannot be the zero address")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key cannot be empty")
	}
	if cfg.ChainID == nil || cfg.ChainID.Sign() <= 0 {
		return nil, fmt.Errorf("chain id must be positive")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	txOpts, err := bind.NewKeyedTransactorWithChainID(privateKey, cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	contract, err := IERC20.NewIERC20(cfg.TokenAddress, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to bind token contract: %w", err)
	}

	receiptTimeout := cfg.ReceiptTimeout
	if receiptTimeout == 0 {
		receiptTimeout = DefaultReceiptTimeout
	}

	return &ERC20Token{
		contract:       contract,
		backend:        backend,
		txOpts:         txOpts,
		address:        cfg.TokenAddress,
		receiptTimeout: receiptTimeout,
		logger:         logger,
	}, nil
}

func (t *ERC20Token) Address() common.Address {
	return t.address
}

// Reserve returns the address of the key that signs transfers.
func (t *ERC20Token) Reserve() common.Address {
	return t.txOpts.From
}

func (t *ERC20Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := t.contract.BalanceOf(&bind.CallOpts{Context: ctx}, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", account.Hex(), err)
	}
	return balance, nil
}

// Transfer submits transfer(to, amount) from the reserve and waits for the receipt.
//
// Errors before broadcast and reverted receipts leave balances unchanged. If the
// transaction was broadcast but no receipt was observed, ErrOutcomeUnknown is returned.
func (t *ERC20Token) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return token.ErrInvalidRecipient
	}
	if amount == nil || amount.Sign() <= 0 {
		return token.ErrZeroAmount
	}

	balance, err := t.BalanceOf(ctx, t.Reserve())
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: reserve %s has %s, needs %s", token.ErrInsufficientBalance, t.Reserve().Hex(), balance.String(), amount.String())
	}

	opts := *t.txOpts
	opts.Context = ctx

	tx, err := t.contract.Transfer(&opts, to, amount)
	if err != nil {
		return fmt.Errorf("failed to submit transfer: %w", err)
	}

	t.logger.Sugar().Infow("Submitted token transfer",
		"txHash", tx.Hash().Hex(),
		"from", opts.From.Hex(),
		"to", to.Hex(),
		"amount", amount.String(),
	)

	waitCtx, cancel := context.WithTimeout(ctx, t.receiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, t.backend, tx)
	if err != nil {
		return fmt.Errorf("%w: tx %s: %v", token.ErrOutcomeUnknown, tx.Hash().Hex(), err)
	}
	if receipt.Status != ethereumTypes.ReceiptStatusSuccessful {
		return fmt.Errorf("transfer reverted in tx %s", tx.Hash().Hex())
	}

	t.logger.Sugar().Infow("Token transfer confirmed",
		"txHash", tx.Hash().Hex(),
		"blockNumber", receipt.BlockNumber.Uint64(),
	)
	return nil
}
