package addr

import (
	"bytes"
	"crypto/sha256"

	"lumenchain/errs"
)

// Scheme names the address encoding scheme. Only Base58 is implemented;
// the field exists so the envelope can grow without breaking callers.
type Scheme byte

// HashType names what kind of hash Body carries.
type HashType byte

const (
	// SchemeBase58 is the only scheme lumenchain encodes/decodes.
	SchemeBase58 Scheme = 0x00

	// HashTypeScript marks Body as a public-key-hash locking a
	// pay-to-pubkey-hash-style output, the only kind this chain uses.
	HashTypeScript HashType = 0x00

	checksumLen = 4
	// PubKeyHashLen is the fixed width of the RIPEMD-160 hash an
	// Address's Body carries.
	PubKeyHashLen = 20
)

// Address is the decoded form of a Base58-with-checksum address: a
// scheme/hash-type envelope around a public-key-hash body.
type Address struct {
	Scheme   Scheme
	HashType HashType
	Body     []byte
}

// Encode renders a into its Base58-with-checksum wire form.
func (a Address) Encode() string {
	versioned := append([]byte{byte(a.Scheme), byte(a.HashType)}, a.Body...)
	checksum := checksum(versioned)
	full := append(versioned, checksum...)
	return string(base58Encode(full))
}

// Decode parses s into an Address, verifying its checksum. Invariant:
// a successfully decoded Address always has len(Body) == PubKeyHashLen.
func Decode(s string) (Address, error) {
	full := base58Decode([]byte(s))
	if len(full) < 2+checksumLen {
		return Address{}, errs.ErrParseError
	}

	scheme := Scheme(full[0])
	hashType := HashType(full[1])
	body := full[2 : len(full)-checksumLen]
	wantChecksum := full[len(full)-checksumLen:]

	gotChecksum := checksum(full[:len(full)-checksumLen])
	if !bytes.Equal(wantChecksum, gotChecksum) {
		return Address{}, errs.ErrParseError
	}
	if len(body) != PubKeyHashLen {
		return Address{}, errs.ErrParseError
	}

	return Address{Scheme: scheme, HashType: hashType, Body: body}, nil
}

// New wraps a 20-byte public-key hash in the default scheme/hash-type
// envelope. Call Encode on the result for the string form.
func New(pubKeyHash []byte) Address {
	return Address{Scheme: SchemeBase58, HashType: HashTypeScript, Body: pubKeyHash}
}

// Valid reports whether s decodes and round-trips to a well-formed
// address without erroring.
func Valid(s string) bool {
	_, err := Decode(s)
	return err == nil
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLen]
}
