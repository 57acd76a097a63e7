package chain

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	"lumenchain/errs"
)

// coinbaseReward is the fixed payout a miner receives for sealing a
// block, paid via the block's coinbase transaction.
const coinbaseReward = 100

// Transaction is a UTXO-model transaction: zero or more inputs spending
// prior outputs, and one or more new outputs.
type Transaction struct {
	ID      string
	Inputs  []TXInput
	Outputs []TXOutput
}

// NewCoinbaseTransaction builds the reward transaction that opens a
// block. memo defaults to "Reward to '<receiver>'" when empty.
func NewCoinbaseTransaction(receiverAddress, memo string) (*Transaction, error) {
	if memo == "" {
		memo = fmt.Sprintf("Reward to '%s'", receiverAddress)
	}
	out, err := NewTXOutput(coinbaseReward, receiverAddress)
	if err != nil {
		return nil, err
	}
	tx := &Transaction{
		Inputs:  []TXInput{{TxID: "", OutputIndex: -1, Signature: nil, PubKey: []byte(memo)}},
		Outputs: []TXOutput{*out},
	}
	id, err := tx.computeHash()
	if err != nil {
		return nil, err
	}
	tx.ID = id
	return tx, nil
}

// NewTransaction builds, signs and returns a transaction moving amount
// from senderAddress to receiverAddress, per spec.md §4.2. bc performs
// the signing (it must look up the prior transactions each input
// references).
func NewTransaction(senderAddress, receiverAddress string, amount int, bc *BlockChain, utxoSet *UTXOSet, wallets *Wallets) (*Transaction, error) {
	sender, ok := wallets.GetWallet(senderAddress)
	if !ok {
		return nil, errs.ErrUnknownAddress
	}
	if _, ok := wallets.GetWallet(receiverAddress); !ok {
		return nil, errs.ErrUnknownAddress
	}

	senderPKH := HashPubKey(sender.PublicKey)
	accumulated, spendable, err := utxoSet.FindSpendableOutputs(senderPKH, amount)
	if err != nil {
		return nil, err
	}
	if accumulated < amount {
		return nil, errs.InsufficientFunds(accumulated)
	}

	var inputs []TXInput
	for txid, outputIndices := range spendable {
		for _, outIdx := range outputIndices {
			inputs = append(inputs, TXInput{
				TxID:        txid,
				OutputIndex: outIdx,
				Signature:   nil,
				PubKey:      sender.PublicKey,
			})
		}
	}

	receiverOut, err := NewTXOutput(amount, receiverAddress)
	if err != nil {
		return nil, err
	}
	outputs := []TXOutput{*receiverOut}
	if accumulated > amount {
		changeOut, err := NewTXOutput(accumulated-amount, senderAddress)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, *changeOut)
	}

	tx := &Transaction{Inputs: inputs, Outputs: outputs}
	id, err := tx.computeHash()
	if err != nil {
		return nil, err
	}
	tx.ID = id

	if err := bc.SignTransaction(tx, sender.PrivateKey); err != nil {
		return nil, err
	}
	return tx, nil
}

// IsCoinbase reports whether tx is a coinbase transaction: a single
// input with an empty txid and output index -1.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].TxID == "" && tx.Inputs[0].OutputIndex == -1
}

// computeHash returns the hex SHA-256 of tx serialized with ID cleared.
func (tx *Transaction) computeHash() (string, error) {
	clone := *tx
	clone.ID = ""
	data, err := clone.serialize()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (tx Transaction) serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tx); err != nil {
		return nil, errs.Codec("Transaction.serialize", err)
	}
	return buf.Bytes(), nil
}

// Serialize gob-encodes tx as-is (ID included).
func (tx Transaction) Serialize() ([]byte, error) { return tx.serialize() }

// DeserializeTransaction reverses Serialize.
func DeserializeTransaction(data []byte) (Transaction, error) {
	var tx Transaction
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&tx); err != nil {
		return Transaction{}, errs.Codec("DeserializeTransaction", err)
	}
	return tx, nil
}

// trimmedCopy clones tx with every input's Signature and PubKey cleared.
func (tx *Transaction) trimmedCopy() Transaction {
	inputs := make([]TXInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = TXInput{TxID: in.TxID, OutputIndex: in.OutputIndex}
	}
	outputs := make([]TXOutput, len(tx.Outputs))
	copy(outputs, tx.Outputs)
	return Transaction{ID: tx.ID, Inputs: inputs, Outputs: outputs}
}

// Sign signs every input of tx with privateKey, given prevTxs — the map
// of transactions referenced by tx's inputs, keyed by their hex id — per
// the per-input preimage in spec.md §4.2/§9.
func (tx *Transaction) Sign(privateKey ed25519.PrivateKey, prevTxs map[string]Transaction) error {
	if tx.IsCoinbase() {
		return nil
	}

	for _, in := range tx.Inputs {
		if _, ok := prevTxs[in.TxID]; !ok {
			return errs.MissingPrevTx(in.TxID)
		}
	}

	trimmed := tx.trimmedCopy()
	for i, in := range trimmed.Inputs {
		prevTx := prevTxs[in.TxID]
		trimmed.Inputs[i].Signature = nil
		trimmed.Inputs[i].PubKey = prevTx.Outputs[tx.Inputs[i].OutputIndex].PubKeyHash

		preimageID, err := trimmed.computeHash()
		if err != nil {
			return err
		}
		trimmed.Inputs[i].PubKey = nil

		signature := ed25519.Sign(privateKey, []byte(preimageID))
		tx.Inputs[i].Signature = signature
	}
	return nil
}

// Verify checks every input's signature against prevTxs, mirroring Sign.
// A coinbase transaction trivially verifies true.
func (tx *Transaction) Verify(prevTxs map[string]Transaction) (bool, error) {
	if tx.IsCoinbase() {
		return true, nil
	}

	for _, in := range tx.Inputs {
		if _, ok := prevTxs[in.TxID]; !ok {
			return false, errs.MissingPrevTx(in.TxID)
		}
	}

	trimmed := tx.trimmedCopy()
	for i, in := range tx.Inputs {
		prevTx := prevTxs[in.TxID]
		trimmed.Inputs[i].Signature = nil
		trimmed.Inputs[i].PubKey = prevTx.Outputs[in.OutputIndex].PubKeyHash

		preimageID, err := trimmed.computeHash()
		if err != nil {
			return false, err
		}
		trimmed.Inputs[i].PubKey = nil

		if !ed25519.Verify(in.PubKey, []byte(preimageID), in.Signature) {
			return false, nil
		}
	}
	return true, nil
}
