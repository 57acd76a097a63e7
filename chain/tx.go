package chain

import (
	"bytes"
	"encoding/gob"

	"lumenchain/addr"
	"lumenchain/errs"
)

// TXInput spends a previously unspent output. For a coinbase input
// TxID is empty, OutputIndex is -1, Signature is empty and PubKey
// carries an arbitrary memo instead of a real key.
type TXInput struct {
	TxID        string
	OutputIndex int
	Signature   []byte
	PubKey      []byte
}

// UsesKey reports whether the input was signed by the holder of
// pubKeyHash.
func (in *TXInput) UsesKey(pubKeyHash []byte) bool {
	return bytes.Equal(HashPubKey(in.PubKey), pubKeyHash)
}

// TXOutput locks a value to the holder of the private key matching
// PubKeyHash. Outputs carry no script; a public-key-hash match is the
// only spending condition this chain knows.
type TXOutput struct {
	Value      int
	PubKeyHash []byte
}

// Lock sets out's PubKeyHash from the body of address.
func (out *TXOutput) Lock(address string) error {
	a, err := addr.Decode(address)
	if err != nil {
		return err
	}
	out.PubKeyHash = a.Body
	return nil
}

// IsLockedWithKey reports whether out is spendable by pubKeyHash.
func (out *TXOutput) IsLockedWithKey(pubKeyHash []byte) bool {
	return bytes.Equal(out.PubKeyHash, pubKeyHash)
}

// NewTXOutput builds a TXOutput of value locked to address.
func NewTXOutput(value int, address string) (*TXOutput, error) {
	out := &TXOutput{Value: value}
	if err := out.Lock(address); err != nil {
		return nil, err
	}
	return out, nil
}

// TXOutputs is the unspent-output collection the UTXO index stores for
// a single transaction id. It is keyed by the output's original
// position in the owning transaction's output list, not by position
// within this (possibly sparse, post-spend) collection — the fix for
// the index-shifting bug spec.md §9 calls out: compacting a dense list
// when an output is spent silently renumbers the outputs that remain,
// breaking any later input that references them by original index.
type TXOutputs struct {
	Outputs map[int]TXOutput
}

// Serialize gob-encodes outs.
func (outs TXOutputs) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(outs); err != nil {
		return nil, errs.Codec("TXOutputs.Serialize", err)
	}
	return buf.Bytes(), nil
}

// DeserializeTXOutputs reverses Serialize.
func DeserializeTXOutputs(data []byte) (TXOutputs, error) {
	var outs TXOutputs
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&outs); err != nil {
		return TXOutputs{}, errs.Codec("DeserializeTXOutputs", err)
	}
	return outs, nil
}
