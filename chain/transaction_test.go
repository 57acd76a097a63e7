package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoinbaseTransactionIsCoinbase(t *testing.T) {
	tx, err := NewCoinbaseTransaction(testAddress(t), "")
	require.NoError(t, err)
	assert.True(t, tx.IsCoinbase())
	require.Len(t, tx.Outputs, 1)
	assert.Equal(t, coinbaseReward, tx.Outputs[0].Value)
	assert.NotEmpty(t, tx.ID)
}

func TestCoinbaseDefaultMemo(t *testing.T) {
	addr := testAddress(t)
	tx, err := NewCoinbaseTransaction(addr, "")
	require.NoError(t, err)
	assert.Contains(t, string(tx.Inputs[0].PubKey), addr)
}

func TestTransactionSerializeRoundTrip(t *testing.T) {
	tx, err := NewCoinbaseTransaction(testAddress(t), "memo")
	require.NoError(t, err)

	data, err := tx.Serialize()
	require.NoError(t, err)

	got, err := DeserializeTransaction(data)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, tx.Outputs, got.Outputs)
}

func TestCoinbaseVerifyTriviallyTrue(t *testing.T) {
	tx, err := NewCoinbaseTransaction(testAddress(t), "")
	require.NoError(t, err)
	ok, err := tx.Verify(nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
