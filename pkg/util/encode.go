package util

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytes32Type, _ = abi.NewType("bytes32", "", nil)
)

// EncodeAllocation returns abi.encode(account, amount).
func EncodeAllocation(account common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil {
		return nil, fmt.Errorf("amount cannot be nil")
	}
	arguments := abi.Arguments{{Type: addressType}, {Type: uint256Type}}

	encoded, err := arguments.Pack(account, amount)
	if err != nil {
		return nil, err
	}

	return encoded, nil
}

// EncodeTypedStruct returns abi.encode(typeHash, account, amount), the
// EIP-712 encodeData of a struct with one address and one uint256 member.
func EncodeTypedStruct(typeHash [32]byte, account common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil {
		return nil, fmt.Errorf("amount cannot be nil")
	}
	arguments := abi.Arguments{{Type: bytes32Type}, {Type: addressType}, {Type: uint256Type}}

	encoded, err := arguments.Pack(typeHash, account, amount)
	if err != nil {
		return nil, err
	}

	return encoded, nil
}
