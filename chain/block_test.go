package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenesisBlockIsValid(t *testing.T) {
	coinbase, err := NewCoinbaseTransaction(testAddress(t), "")
	require.NoError(t, err)

	genesis, err := NewGenesisBlock(coinbase)
	require.NoError(t, err)
	assert.Equal(t, "", genesis.PrevHash)
	assert.Equal(t, 0, genesis.Height)
	assert.NotEmpty(t, genesis.Hash)

	pow := NewProofOfWork(genesis)
	valid, err := pow.Validate()
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestBlockSerializeRoundTrip(t *testing.T) {
	coinbase, err := NewCoinbaseTransaction(testAddress(t), "")
	require.NoError(t, err)
	genesis, err := NewGenesisBlock(coinbase)
	require.NoError(t, err)

	data, err := genesis.Serialize()
	require.NoError(t, err)

	got, err := DeserializeBlock(data)
	require.NoError(t, err)
	assert.Equal(t, genesis.Hash, got.Hash)
	assert.Equal(t, genesis.Nonce, got.Nonce)
	assert.Equal(t, genesis.Height, got.Height)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, genesis.Transactions[0].ID, got.Transactions[0].ID)
}

func TestHashTransactionsStableForSameSequence(t *testing.T) {
	c1, err := NewCoinbaseTransaction(testAddress(t), "fixed memo")
	require.NoError(t, err)
	c2, err := NewCoinbaseTransaction(testAddress(t), "fixed memo")
	require.NoError(t, err)

	b1 := &Block{Transactions: []*Transaction{c1}}
	b2 := &Block{Transactions: []*Transaction{c1}}
	b3 := &Block{Transactions: []*Transaction{c2}}

	h1, err := b1.HashTransactions()
	require.NoError(t, err)
	h2, err := b2.HashTransactions()
	require.NoError(t, err)
	h3, err := b3.HashTransactions()
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
