package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"math"
	"math/big"

	"lumenchain/errs"
)

// targetBits is the proof-of-work difficulty: the block hash must begin
// with this many zero hex characters (targetBits*4 leading zero bits).
const targetBits = 4

// maxNonce bounds the search; mining terminates with probability 1 long
// before reaching it for any realistic targetBits.
const maxNonce = math.MaxInt64

// ProofOfWork mines or validates a single block against targetBits.
type ProofOfWork struct {
	block  *Block
	target *big.Int
}

// NewProofOfWork builds the miner/validator for block.
func NewProofOfWork(block *Block) *ProofOfWork {
	target := big.NewInt(1)
	target.Lsh(target, uint(256-targetBits*4))
	return &ProofOfWork{block: block, target: target}
}

func (pow *ProofOfWork) hashFor(nonce int) ([32]byte, error) {
	header, err := pow.block.header(nonce)
	if err != nil {
		return [32]byte{}, err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(header); err != nil {
		return [32]byte{}, errs.Codec("ProofOfWork.hashFor", err)
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// Run searches nonces starting at 0 until the resulting hash satisfies
// the target, returning the winning nonce and its hex digest.
func (pow *ProofOfWork) Run() (int, string, error) {
	var hashInt big.Int
	nonce := 0

	for nonce < maxNonce {
		hash, err := pow.hashFor(nonce)
		if err != nil {
			return 0, "", err
		}
		hashInt.SetBytes(hash[:])
		if hashInt.Cmp(pow.target) == -1 {
			return nonce, hex.EncodeToString(hash[:]), nil
		}
		nonce++
	}
	return 0, "", errs.Storage("ProofOfWork.Run", errExhaustedNonceSpace)
}

// Validate reports whether block.Nonce actually satisfies the target.
func (pow *ProofOfWork) Validate() (bool, error) {
	hash, err := pow.hashFor(pow.block.Nonce)
	if err != nil {
		return false, err
	}
	if hex.EncodeToString(hash[:]) != pow.block.Hash {
		return false, nil
	}
	var hashInt big.Int
	hashInt.SetBytes(hash[:])
	return hashInt.Cmp(pow.target) == -1, nil
}

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const errExhaustedNonceSpace sentinelError = "exhausted nonce space without finding a valid proof of work"
