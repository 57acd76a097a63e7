package chain

import (
	"errors"
	"testing"

	"lumenchain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndOpenBlockChain(t *testing.T) {
	cfg := testConfig(t)
	addrA := testAddress(t)

	bc, err := CreateBlockChain(cfg, addrA, nil)
	require.NoError(t, err)
	tip := bc.Tip()
	require.NoError(t, bc.Close())

	reopened, err := OpenBlockChain(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, tip, reopened.Tip())
}

func TestOpenBlockChainWithoutCreateFails(t *testing.T) {
	cfg := testConfig(t)
	_, err := OpenBlockChain(cfg, nil)
	assert.ErrorIs(t, err, errs.ErrNotInitialized)
}

func TestSendEndToEndUpdatesUTXO(t *testing.T) {
	cfg := testConfig(t)

	wallets, err := OpenWallets(cfg, nil)
	require.NoError(t, err)
	defer wallets.Close()

	addrA, err := wallets.CreateWallet()
	require.NoError(t, err)
	addrB, err := wallets.CreateWallet()
	require.NoError(t, err)

	bc, err := CreateBlockChain(cfg, addrA, nil)
	require.NoError(t, err)
	defer bc.Close()

	utxoSet, err := OpenUTXOSet(cfg, bc, nil)
	require.NoError(t, err)
	defer utxoSet.Close()
	require.NoError(t, utxoSet.Reindex())

	tx, err := NewTransaction(addrA, addrB, 40, bc, utxoSet, wallets)
	require.NoError(t, err)

	coinbase, err := NewCoinbaseTransaction(addrA, "")
	require.NoError(t, err)

	block, err := bc.MineBlock([]*Transaction{coinbase, tx})
	require.NoError(t, err)
	require.NoError(t, utxoSet.Update(block))

	bPKH := HashPubKey(mustWallet(t, wallets, addrB).PublicKey)
	bOuts, err := utxoSet.FindUTXO(bPKH)
	require.NoError(t, err)
	bBalance := 0
	for _, o := range bOuts {
		bBalance += o.Value
	}
	assert.Equal(t, 40, bBalance)

	aPKH := HashPubKey(mustWallet(t, wallets, addrA).PublicKey)
	aOuts, err := utxoSet.FindUTXO(aPKH)
	require.NoError(t, err)
	aBalance := 0
	for _, o := range aOuts {
		aBalance += o.Value
	}
	// genesis 100 is spent whole (40 to B), change 60 comes back, plus the
	// new block's coinbase 100: 60 + 100.
	assert.Equal(t, 160, aBalance)

	ok, err := utxoSet.VerifyAgainstReindex()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckConservationRejectsOverspend(t *testing.T) {
	cfg := testConfig(t)
	addrA := testAddress(t)

	bc, err := CreateBlockChain(cfg, addrA, nil)
	require.NoError(t, err)
	defer bc.Close()

	genesis, err := bc.FindTransaction(genesisTxID(t, bc))
	require.NoError(t, err)

	bogus := &Transaction{
		Inputs: []TXInput{{TxID: genesis.ID, OutputIndex: 0}},
		Outputs: []TXOutput{
			{Value: genesis.Outputs[0].Value * 10, PubKeyHash: genesis.Outputs[0].PubKeyHash},
		},
	}

	err = bc.checkConservation(bogus)
	assert.True(t, errors.Is(err, errs.ErrInvalidTransaction))
}

func mustWallet(t *testing.T, wallets *Wallets, address string) *Wallet {
	t.Helper()
	w, ok := wallets.GetWallet(address)
	require.True(t, ok)
	return w
}

func genesisTxID(t *testing.T, bc *BlockChain) string {
	t.Helper()
	it := bc.Iterator()
	var last *Block
	for {
		block, err := it.Next()
		require.NoError(t, err)
		if block == nil {
			break
		}
		last = block
	}
	require.NotNil(t, last)
	return last.Transactions[0].ID
}
