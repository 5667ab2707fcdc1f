package token

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientBalance is returned when the reserve cannot cover a transfer
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidRecipient is returned for transfers to the zero address
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrZeroAmount is returned for transfers of a nil, zero or negative amount
	ErrZeroAmount = errors.New("transfer amount must be positive")

	// ErrOutcomeUnknown is returned when a transfer was broadcast but its result
	// could not be observed. The transfer may or may not have happened.
	ErrOutcomeUnknown = errors.New("transfer outcome unknown")
)

// IAirdropToken is the fungible token capability the claim ledger pays out of.
// The ledger's own reserve is the implicit source of every transfer.
type IAirdropToken interface {
	// Address identifies the token (the contract address for on-chain tokens)
	Address() common.Address

	// Transfer moves amount from the reserve to the recipient. A failed transfer
	// must leave balances unchanged unless ErrOutcomeUnknown is returned.
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error

	// BalanceOf returns the current balance of account
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)

	// Reserve returns the address transfers are paid from
	Reserve() common.Address
}
