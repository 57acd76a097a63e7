package chain

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"

	"lumenchain/addr"
	"lumenchain/errs"

	"golang.org/x/crypto/ripemd160"
)

// Wallet is an Ed25519 keypair: a 64-byte private key and its 32-byte
// public key, as specified by spec.md §2 C1/§3.
type Wallet struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// NewWallet derives a fresh keypair from 32 bytes of secure randomness.
func NewWallet() (*Wallet, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, errs.Storage("NewWallet", err)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Wallet{PrivateKey: priv, PublicKey: pub}, nil
}

// Address derives w's Base58-with-checksum address from its public key.
func (w *Wallet) Address() string {
	pkh := HashPubKey(w.PublicKey)
	return addr.New(pkh).Encode()
}

// HashPubKey returns RIPEMD160(SHA256(pubKey)), the 20-byte public-key
// hash ("PKH") that outputs lock to and addresses encode.
func HashPubKey(pubKey []byte) []byte {
	sha := sha256.Sum256(pubKey)
	hasher := ripemd160.New()
	hasher.Write(sha[:])
	return hasher.Sum(nil)
}

// ValidateAddress reports whether address is a well-formed, checksum-
// valid lumenchain address.
func ValidateAddress(address string) bool {
	return addr.Valid(address)
}

// DecodeAddress returns the public-key hash encoded in address.
func DecodeAddress(address string) ([]byte, error) {
	decoded, err := addr.Decode(address)
	if err != nil {
		return nil, err
	}
	return decoded.Body, nil
}
