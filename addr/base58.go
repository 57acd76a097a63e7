// Package addr implements the address codec spec.md treats as an
// external collaborator: Base58-with-checksum encoding of a public-key
// hash, wrapped in a small scheme/hash-type envelope. Adapted from the
// teacher's utils/base58.go.
package addr

import (
	"bytes"
	"math/big"
)

var alphabet = []byte("123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz")
var base = int64(len(alphabet))

// base58Encode returns the base58 encoding of input.
func base58Encode(input []byte) []byte {
	var encoded []byte
	x := big.NewInt(0).SetBytes(input)
	baseInt := big.NewInt(base)
	zero := big.NewInt(0)
	mod := &big.Int{}

	for x.Cmp(zero) != 0 {
		x.DivMod(x, baseInt, mod)
		encoded = append(encoded, alphabet[mod.Int64()])
	}
	reverse(encoded)

	for _, b := range input {
		if b != 0x00 {
			break
		}
		encoded = append([]byte{alphabet[0]}, encoded...)
	}
	return encoded
}

// base58Decode reverses base58Encode.
func base58Decode(input []byte) []byte {
	result := big.NewInt(0)
	leadingZeroes := 0

	for _, b := range input {
		if b != alphabet[0] {
			break
		}
		leadingZeroes++
	}

	payload := input[leadingZeroes:]
	for _, b := range payload {
		idx := bytes.IndexByte(alphabet, b)
		result.Mul(result, big.NewInt(base))
		result.Add(result, big.NewInt(int64(idx)))
	}

	decoded := result.Bytes()
	return append(bytes.Repeat([]byte{0x00}, leadingZeroes), decoded...)
}

func reverse(data []byte) {
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
}
