package chain

import (
	"crypto/ed25519"

	"lumenchain/config"
	"lumenchain/errs"
	"lumenchain/kv"

	"github.com/sirupsen/logrus"
)

const blocksBucket = "blocks"
const lastKey = "LAST"

const genesisCoinbaseMemo = "lumenchain genesis block"

// BlockChain owns the chain KV namespace exclusively: every block is
// stored under its own hex hash, plus a reserved "LAST" key holding the
// current tip's hash.
type BlockChain struct {
	tip   string
	store *kv.Store
	log   *logrus.Entry
}

// CreateBlockChain wipes the chain namespace and mines a fresh genesis
// block paying the coinbase reward to address.
func CreateBlockChain(cfg config.Config, address string, log *logrus.Entry) (*BlockChain, error) {
	store, err := kv.Open(cfg.BlocksDB(), blocksBucket)
	if err != nil {
		return nil, err
	}
	if err := store.Reset(); err != nil {
		_ = store.Close()
		return nil, err
	}

	coinbase, err := NewCoinbaseTransaction(address, genesisCoinbaseMemo)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	genesis, err := NewGenesisBlock(coinbase)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	data, err := genesis.Serialize()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.Put([]byte(genesis.Hash), data); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.Put([]byte(lastKey), []byte(genesis.Hash)); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.Flush(); err != nil {
		_ = store.Close()
		return nil, err
	}

	if log != nil {
		log.WithField("hash", genesis.Hash).Info("created chain with genesis block")
	}
	return &BlockChain{tip: genesis.Hash, store: store, log: log}, nil
}

// OpenBlockChain opens a chain namespace that already has a head.
func OpenBlockChain(cfg config.Config, log *logrus.Entry) (*BlockChain, error) {
	store, err := kv.Open(cfg.BlocksDB(), blocksBucket)
	if err != nil {
		return nil, err
	}
	tipBytes, err := store.Get([]byte(lastKey))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if tipBytes == nil {
		_ = store.Close()
		return nil, errs.ErrNotInitialized
	}
	return &BlockChain{tip: string(tipBytes), store: store, log: log}, nil
}

// Close releases the chain namespace handle.
func (bc *BlockChain) Close() error { return bc.store.Close() }

// Tip returns the current head's hash.
func (bc *BlockChain) Tip() string { return bc.tip }

// MineBlock verifies every non-coinbase transaction in txs (including
// the input/output conservation check per spec.md §9), mines a new
// block atop the current head, persists it, advances the head, and
// returns the mined block.
func (bc *BlockChain) MineBlock(txs []*Transaction) (*Block, error) {
	for _, tx := range txs {
		if tx.IsCoinbase() {
			continue
		}
		ok, err := bc.VerifyTransaction(tx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.ErrInvalidTransaction
		}
		if err := bc.checkConservation(tx); err != nil {
			return nil, err
		}
	}

	block, err := NewBlock(txs, bc.tip, bc.height()+1)
	if err != nil {
		return nil, err
	}

	data, err := block.Serialize()
	if err != nil {
		return nil, err
	}
	if err := bc.store.Put([]byte(block.Hash), data); err != nil {
		return nil, err
	}
	if err := bc.store.Put([]byte(lastKey), []byte(block.Hash)); err != nil {
		return nil, err
	}
	bc.tip = block.Hash

	if bc.log != nil {
		bc.log.WithField("hash", block.Hash).WithField("height", block.Height).Info("mined block")
	}
	return block, nil
}

// checkConservation enforces that tx's referenced input values sum to
// at least its declared output values — spec.md §8 property 9 / §9's
// resolved Open Question. Any positive difference is an unused,
// implicit fee.
func (bc *BlockChain) checkConservation(tx *Transaction) error {
	prevTxs, err := bc.getPrevTxs(tx)
	if err != nil {
		return err
	}

	inputSum := 0
	for _, in := range tx.Inputs {
		prevTx := prevTxs[in.TxID]
		inputSum += prevTx.Outputs[in.OutputIndex].Value
	}
	outputSum := 0
	for _, out := range tx.Outputs {
		outputSum += out.Value
	}
	if inputSum < outputSum {
		return errs.ErrInvalidTransaction
	}
	return nil
}

// height returns the tip block's height, or -1 if the chain is empty
// (never persisted).
func (bc *BlockChain) height() int {
	tipData, err := bc.store.Get([]byte(bc.tip))
	if err != nil || tipData == nil {
		return -1
	}
	block, err := DeserializeBlock(tipData)
	if err != nil {
		return -1
	}
	return block.Height
}

// ChainIterator yields blocks from the head back to genesis. It is
// lazy, finite and not restartable: a fresh traversal needs a fresh
// Iterator() call.
type ChainIterator struct {
	store       *kv.Store
	currentHash string
	done        bool
}

// Iterator starts a new head-to-genesis traversal.
func (bc *BlockChain) Iterator() *ChainIterator {
	return &ChainIterator{store: bc.store, currentHash: bc.tip}
}

// Next returns the next block in the traversal, or (nil, nil) once
// genesis has already been yielded.
func (it *ChainIterator) Next() (*Block, error) {
	if it.done {
		return nil, nil
	}
	data, err := it.store.Get([]byte(it.currentHash))
	if err != nil {
		return nil, err
	}
	if data == nil {
		it.done = true
		return nil, nil
	}
	block, err := DeserializeBlock(data)
	if err != nil {
		return nil, err
	}
	if block.PrevHash == "" {
		it.done = true
	} else {
		it.currentHash = block.PrevHash
	}
	return block, nil
}

// FindTransaction linearly scans the chain for the transaction with the
// given hex id.
func (bc *BlockChain) FindTransaction(id string) (Transaction, error) {
	it := bc.Iterator()
	for {
		block, err := it.Next()
		if err != nil {
			return Transaction{}, err
		}
		if block == nil {
			break
		}
		for _, tx := range block.Transactions {
			if tx.ID == id {
				return *tx, nil
			}
		}
	}
	return Transaction{}, errs.ErrNotFound
}

// getPrevTxs resolves, for every input of tx, the transaction its
// output belongs to, keyed by hex transaction id.
func (bc *BlockChain) getPrevTxs(tx *Transaction) (map[string]Transaction, error) {
	prevTxs := make(map[string]Transaction, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if _, ok := prevTxs[in.TxID]; ok {
			continue
		}
		prevTx, err := bc.FindTransaction(in.TxID)
		if err != nil {
			if err == errs.ErrNotFound {
				return nil, errs.MissingPrevTx(in.TxID)
			}
			return nil, err
		}
		prevTxs[prevTx.ID] = prevTx
	}
	return prevTxs, nil
}

// SignTransaction signs every input of tx with privateKey, resolving
// the referenced prior transactions from the chain.
func (bc *BlockChain) SignTransaction(tx *Transaction, privateKey ed25519.PrivateKey) error {
	prevTxs, err := bc.getPrevTxs(tx)
	if err != nil {
		return err
	}
	return tx.Sign(privateKey, prevTxs)
}

// VerifyTransaction verifies every input of tx, resolving the
// referenced prior transactions from the chain.
func (bc *BlockChain) VerifyTransaction(tx *Transaction) (bool, error) {
	prevTxs, err := bc.getPrevTxs(tx)
	if err != nil {
		return false, err
	}
	return tx.Verify(prevTxs)
}
