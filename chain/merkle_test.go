package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerkleRootDeterministic(t *testing.T) {
	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	root1 := MerkleRoot(leaves)
	root2 := MerkleRoot(leaves)
	require.NotEmpty(t, root1)
	assert.Equal(t, root1, root2)
}

func TestMerkleRootSensitiveToOrder(t *testing.T) {
	root1 := MerkleRoot([][]byte{[]byte("a"), []byte("b")})
	root2 := MerkleRoot([][]byte{[]byte("b"), []byte("a")})
	assert.NotEqual(t, root1, root2)
}

func TestMerkleRootHandlesOddCount(t *testing.T) {
	root := MerkleRoot([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	assert.Len(t, root, 32)
}

func TestMerkleRootEmpty(t *testing.T) {
	assert.Nil(t, MerkleRoot(nil))
}
