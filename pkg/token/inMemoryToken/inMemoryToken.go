package inMemoryToken

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token"
)

// InMemoryToken is a fungible balance ledger held in process memory.
// Arithmetic is 256-bit and overflow checked, matching an ERC-20.
type InMemoryToken struct {
	address  common.Address
	reserve  common.Address
	balances map[common.Address]*uint256.Int
	supply   *uint256.Int
	mu       sync.RWMutex
}

// NewInMemoryToken creates a token identified by address whose transfers are
// paid from reserve.
func NewInMemoryToken(address common.Address, reserve common.Address) *InMemoryToken {
	return &InMemoryToken{
		address:  address,
		reserve:  reserve,
		balances: make(map[common.Address]*uint256.Int),
		supply:   new(uint256.Int),
	}
}

func (t *InMemoryToken) Address() common.Address {
	return t.address
}

func (t *InMemoryToken) Reserve() common.Address {
	return t.reserve
}

// Mint credits amount to account.
func (t *InMemoryToken) Mint(account common.Address, amount *big.Int) error {
	if account == (common.Address{}) {
		return token.ErrInvalidRecipient
	}
	value, err := toUint256(amount)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	newSupply, overflow := new(uint256.Int).AddOverflow(t.supply, value)
	if overflow {
		return fmt.Errorf("mint of %s overflows total supply", amount.String())
	}
	t.supply = newSupply
	t.balances[account] = new(uint256.Int).Add(t.balanceOf(account), value)
	return nil
}

// Transfer moves amount from the reserve to the recipient.
func (t *InMemoryToken) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	return t.TransferFrom(ctx, t.reserve, to, amount)
}

// TransferFrom moves amount between two accounts. Balances are left untouched on failure.
func (t *InMemoryToken) TransferFrom(ctx context.Context, from common.Address, to common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return token.ErrInvalidRecipient
	}
	value, err := toUint256(amount)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fromBalance := t.balanceOf(from)
	if fromBalance.Lt(value) {
		return fmt.Errorf("%w: %s has %s, needs %s", token.ErrInsufficientBalance, from.Hex(), fromBalance.Dec(), value.Dec())
	}

	t.balances[from] = new(uint256.Int).Sub(fromBalance, value)
	t.balances[to] = new(uint256.Int).Add(t.balanceOf(to), value)
	return nil
}

func (t *InMemoryToken) BalanceOf(_ context.Context, account common.Address) (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balanceOf(account).ToBig(), nil
}

// TotalSupply returns the sum of all minted amounts.
func (t *InMemoryToken) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.supply.ToBig()
}

// balanceOf must be called with the lock held
func (t *InMemoryToken) balanceOf(account common.Address) *uint256.Int {
	if balance, ok := t.balances[account]; ok {
		return balance
	}
	return new(uint256.Int)
}

func toUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, token.ErrZeroAmount
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, fmt.Errorf("amount %s exceeds uint256", amount.String())
	}
	return value, nil
}
