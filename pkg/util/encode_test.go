package util

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEncodeAllocation(t *testing.T) {
	account := common.HexToAddress("0x00000000000000000000000000000000000000a1")

	encoded, err := EncodeAllocation(account, big.NewInt(25))
	require.NoError(t, err)
	require.Len(t, encoded, 64)

	// address is left padded into the first word, amount big-endian in the second
	require.Equal(t, account.Bytes(), encoded[12:32])
	require.Equal(t, byte(25), encoded[63])
}

func TestEncodeAllocation_Errors(t *testing.T) {
	account := common.HexToAddress("0x00000000000000000000000000000000000000a1")

	_, err := EncodeAllocation(account, nil)
	require.Error(t, err)

	_, err = EncodeTypedStruct([32]byte{}, account, nil)
	require.Error(t, err)
}

func TestEncodeTypedStruct(t *testing.T) {
	typeHash := [32]byte{0xaa}
	account := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	encoded, err := EncodeTypedStruct(typeHash, account, big.NewInt(7))
	require.NoError(t, err)
	require.Len(t, encoded, 96)
	require.Equal(t, typeHash[:], encoded[0:32])
	require.Equal(t, account.Bytes(), encoded[44:64])
	require.Equal(t, byte(7), encoded[95])
}
