package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsToCurrentDir(t *testing.T) {
	c := New("")
	assert.Equal(t, ".", c.RootDir)
}

func TestNamespacePaths(t *testing.T) {
	c := New("/tmp/lumenchain-data")
	assert.Equal(t, filepath.Join("/tmp/lumenchain-data", "blocks.db"), c.BlocksDB())
	assert.Equal(t, filepath.Join("/tmp/lumenchain-data", "utxos.db"), c.UTXODB())
	assert.Equal(t, filepath.Join("/tmp/lumenchain-data", "wallets.db"), c.WalletsDB())
}
