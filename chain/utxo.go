package chain

import (
	"errors"
	"sort"

	"lumenchain/config"
	"lumenchain/kv"

	"github.com/sirupsen/logrus"
)

const utxoBucket = "utxos"

// UTXOSet is the materialized view of every unspent output, mirroring
// the chain and updated incrementally as blocks arrive. It owns the
// utxo KV namespace exclusively.
type UTXOSet struct {
	store *kv.Store
	bc    *BlockChain
	log   *logrus.Entry
}

// OpenUTXOSet opens (creating if necessary) the UTXO namespace backing
// bc.
func OpenUTXOSet(cfg config.Config, bc *BlockChain, log *logrus.Entry) (*UTXOSet, error) {
	store, err := kv.Open(cfg.UTXODB(), utxoBucket)
	if err != nil {
		return nil, err
	}
	return &UTXOSet{store: store, bc: bc, log: log}, nil
}

// Close releases the utxo namespace handle.
func (u *UTXOSet) Close() error { return u.store.Close() }

// Reindex wipes the utxo namespace and rebuilds it from a full rescan
// of the chain (spec.md §4.4).
func (u *UTXOSet) Reindex() error {
	snapshot, err := u.computeFromChain()
	if err != nil {
		return err
	}
	if err := u.store.Reset(); err != nil {
		return err
	}
	for txid, outs := range snapshot {
		data, err := outs.Serialize()
		if err != nil {
			return err
		}
		if err := u.store.Put([]byte(txid), data); err != nil {
			return err
		}
	}
	if u.log != nil {
		u.log.WithField("transactions", len(snapshot)).Info("reindexed UTXO set")
	}
	return nil
}

// computeFromChain performs the reverse (tip-to-genesis) scan described
// in spec.md §4.4: by the time a transaction's defining block is
// visited, every block that could spend one of its outputs (necessarily
// a later, already-visited block) has already recorded its spends.
func (u *UTXOSet) computeFromChain() (map[string]TXOutputs, error) {
	spent := make(map[string]map[int]bool)
	result := make(map[string]TXOutputs)

	it := u.bc.Iterator()
	for {
		block, err := it.Next()
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}

		for _, tx := range block.Transactions {
			unspent := TXOutputs{Outputs: make(map[int]TXOutput)}
			for idx, out := range tx.Outputs {
				if spent[tx.ID] != nil && spent[tx.ID][idx] {
					continue
				}
				unspent.Outputs[idx] = out
			}
			if len(unspent.Outputs) > 0 {
				result[tx.ID] = unspent
			}

			if !tx.IsCoinbase() {
				for _, in := range tx.Inputs {
					if spent[in.TxID] == nil {
						spent[in.TxID] = make(map[int]bool)
					}
					spent[in.TxID][in.OutputIndex] = true
				}
			}
		}
	}
	return result, nil
}

// Update applies the effects of a newly mined tip block to the index
// incrementally, per spec.md §4.4: each input's referenced output is
// removed (and the entry dropped if it becomes empty), then every
// output of the new transaction is inserted as unspent.
func (u *UTXOSet) Update(block *Block) error {
	for _, tx := range block.Transactions {
		if !tx.IsCoinbase() {
			for _, in := range tx.Inputs {
				if err := u.removeSpentOutput(in.TxID, in.OutputIndex); err != nil {
					return err
				}
			}
		}

		outs := TXOutputs{Outputs: make(map[int]TXOutput, len(tx.Outputs))}
		for idx, out := range tx.Outputs {
			outs.Outputs[idx] = out
		}
		data, err := outs.Serialize()
		if err != nil {
			return err
		}
		if err := u.store.Put([]byte(tx.ID), data); err != nil {
			return err
		}
	}
	return nil
}

func (u *UTXOSet) removeSpentOutput(txid string, outputIndex int) error {
	raw, err := u.store.Get([]byte(txid))
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	outs, err := DeserializeTXOutputs(raw)
	if err != nil {
		return err
	}
	delete(outs.Outputs, outputIndex)
	if len(outs.Outputs) == 0 {
		return u.store.Delete([]byte(txid))
	}
	data, err := outs.Serialize()
	if err != nil {
		return err
	}
	return u.store.Put([]byte(txid), data)
}

// sentinelStop signals FindSpendableOutputs that enough value has been
// accumulated and the scan can stop early.
type sentinelStop struct{}

func (sentinelStop) Error() string { return "stop" }

// FindSpendableOutputs greedily scans the index for outputs locked to
// pubKeyHash until amount is met, returning the accumulated value and
// the original output indices selected per transaction.
func (u *UTXOSet) FindSpendableOutputs(pubKeyHash []byte, amount int) (int, map[string][]int, error) {
	accumulated := 0
	unspent := make(map[string][]int)

	err := u.store.ForEach(func(key, value []byte) error {
		if accumulated >= amount {
			return sentinelStop{}
		}
		txid := string(key)
		outs, err := DeserializeTXOutputs(value)
		if err != nil {
			return err
		}

		indices := make([]int, 0, len(outs.Outputs))
		for idx := range outs.Outputs {
			indices = append(indices, idx)
		}
		sort.Ints(indices)

		for _, idx := range indices {
			if accumulated >= amount {
				break
			}
			out := outs.Outputs[idx]
			if out.IsLockedWithKey(pubKeyHash) {
				accumulated += out.Value
				unspent[txid] = append(unspent[txid], idx)
			}
		}
		return nil
	})
	var stop sentinelStop
	if err != nil && !errors.As(err, &stop) {
		return 0, nil, err
	}
	return accumulated, unspent, nil
}

// FindUTXO returns every output currently locked to pubKeyHash.
func (u *UTXOSet) FindUTXO(pubKeyHash []byte) ([]TXOutput, error) {
	var result []TXOutput
	err := u.store.ForEach(func(key, value []byte) error {
		outs, err := DeserializeTXOutputs(value)
		if err != nil {
			return err
		}
		for _, out := range outs.Outputs {
			if out.IsLockedWithKey(pubKeyHash) {
				result = append(result, out)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CountTransactions returns the number of distinct transaction ids
// currently holding at least one unspent output.
func (u *UTXOSet) CountTransactions() (int, error) {
	count := 0
	err := u.store.ForEach(func(key, value []byte) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// snapshot materializes the index's current contents as a multiset of
// (txid, output_index, value, pub_key_hash) tuples, for comparison
// against a fresh reindex.
func (u *UTXOSet) snapshot() (map[string]TXOutputs, error) {
	result := make(map[string]TXOutputs)
	err := u.store.ForEach(func(key, value []byte) error {
		outs, err := DeserializeTXOutputs(value)
		if err != nil {
			return err
		}
		result[string(key)] = outs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VerifyAgainstReindex reports whether the index's current contents
// equal what a full reindex would produce, without mutating the store —
// the central correctness property spec.md §3/§8 describe.
func (u *UTXOSet) VerifyAgainstReindex() (bool, error) {
	current, err := u.snapshot()
	if err != nil {
		return false, err
	}
	fresh, err := u.computeFromChain()
	if err != nil {
		return false, err
	}
	return sameContents(current, fresh), nil
}

func sameContents(a, b map[string]TXOutputs) bool {
	if len(a) != len(b) {
		return false
	}
	for txid, aOuts := range a {
		bOuts, ok := b[txid]
		if !ok || len(aOuts.Outputs) != len(bOuts.Outputs) {
			return false
		}
		for idx, out := range aOuts.Outputs {
			other, ok := bOuts.Outputs[idx]
			if !ok || other.Value != out.Value || string(other.PubKeyHash) != string(out.PubKeyHash) {
				return false
			}
		}
	}
	return true
}
