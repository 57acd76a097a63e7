package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWalletSaveAllAndReopenPersists(t *testing.T) {
	cfg := testConfig(t)

	wallets, err := OpenWallets(cfg, nil)
	require.NoError(t, err)

	address, err := wallets.CreateWallet()
	require.NoError(t, err)
	require.NoError(t, wallets.SaveAll())
	require.NoError(t, wallets.Close())

	reopened, err := OpenWallets(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	w, ok := reopened.GetWallet(address)
	require.True(t, ok)
	assert.Equal(t, address, w.Address())
	assert.Contains(t, reopened.GetAllAddresses(), address)
}

func TestCreateWalletWithoutSaveDoesNotPersist(t *testing.T) {
	cfg := testConfig(t)

	wallets, err := OpenWallets(cfg, nil)
	require.NoError(t, err)
	address, err := wallets.CreateWallet()
	require.NoError(t, err)
	require.NoError(t, wallets.Close())

	reopened, err := OpenWallets(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	_, ok := reopened.GetWallet(address)
	assert.False(t, ok)
}
