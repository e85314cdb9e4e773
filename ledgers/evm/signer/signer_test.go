package signer

import (
	"math/big"
	"testing"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestNewSignerInvalidKey(t *testing.T) {
	_, err := NewSigner("not-a-key")
	require.Error(t, err)
}

func TestSignTx(t *testing.T) {
	s, err := NewSigner(testPrivateKey)
	require.NoError(t, err)
	assert.NotEqual(t, s.Address().Hex(), "0x0000000000000000000000000000000000000000")

	tx := ethtypes.NewTransaction(0, s.Address(), big.NewInt(0), 21000, big.NewInt(1), nil)
	signed, err := s.SignTx(tx, big.NewInt(1))
	require.NoError(t, err)

	chainSigner := ethtypes.LatestSignerForChainID(big.NewInt(1))
	from, err := ethtypes.Sender(chainSigner, signed)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), from)
}
