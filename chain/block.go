package chain

import (
	"bytes"
	"encoding/gob"
	"time"

	"lumenchain/errs"
)

// Block packages a set of transactions, links to the previous block by
// hash, and carries the nonce that satisfies the mining target.
type Block struct {
	Timestamp    int64
	PrevHash     string
	Transactions []*Transaction
	Nonce        int
	Hash         string
	Height       int
}

// blockHeader is the exact preimage hashed to produce a Block's Hash:
// everything but the Hash field itself, with the transaction list
// summarized by its Merkle root (spec.md §4.1).
type blockHeader struct {
	Timestamp int64
	TxDigest  []byte
	PrevHash  string
	Nonce     int
	Height    int
}

func (b *Block) header(nonce int) (blockHeader, error) {
	digest, err := b.HashTransactions()
	if err != nil {
		return blockHeader{}, err
	}
	return blockHeader{
		Timestamp: b.Timestamp,
		TxDigest:  digest,
		PrevHash:  b.PrevHash,
		Nonce:     nonce,
		Height:    b.Height,
	}, nil
}

// HashTransactions returns the Merkle root over this block's transaction
// ids — a deterministic summary of the exact transaction sequence.
func (b *Block) HashTransactions() ([]byte, error) {
	leaves := make([][]byte, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		leaves = append(leaves, []byte(tx.ID))
	}
	return MerkleRoot(leaves), nil
}

// NewBlock mines and returns a new block carrying txs, linked to
// prevHash at height.
func NewBlock(txs []*Transaction, prevHash string, height int) (*Block, error) {
	block := &Block{
		Timestamp:    time.Now().Unix(),
		PrevHash:     prevHash,
		Transactions: txs,
		Height:       height,
	}

	pow := NewProofOfWork(block)
	nonce, hash, err := pow.Run()
	if err != nil {
		return nil, err
	}
	block.Nonce = nonce
	block.Hash = hash
	return block, nil
}

// NewGenesisBlock mines the first block of a chain, carrying exactly
// the given coinbase transaction.
func NewGenesisBlock(coinbase *Transaction) (*Block, error) {
	return NewBlock([]*Transaction{coinbase}, "", 0)
}

// Serialize gob-encodes b.
func (b *Block) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, errs.Codec("Block.Serialize", err)
	}
	return buf.Bytes(), nil
}

// DeserializeBlock reverses Serialize.
func DeserializeBlock(data []byte) (*Block, error) {
	var b Block
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, errs.Codec("DeserializeBlock", err)
	}
	return &b, nil
}
