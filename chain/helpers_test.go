package chain

import (
	"testing"

	"lumenchain/config"

	"github.com/stretchr/testify/require"
)

// testAddress returns a freshly derived, well-formed address with no
// backing wallet persisted anywhere.
func testAddress(t *testing.T) string {
	t.Helper()
	w, err := NewWallet()
	require.NoError(t, err)
	return w.Address()
}

// testConfig returns a Config rooted at a fresh temporary directory.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.New(t.TempDir())
}
