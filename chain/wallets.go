package chain

import (
	"bytes"
	"encoding/gob"

	"lumenchain/config"
	"lumenchain/errs"
	"lumenchain/kv"

	"github.com/sirupsen/logrus"
)

const walletsBucket = "wallets"

// Wallets is the in-memory, bolt-backed wallet store (C3). It owns the
// wallets KV namespace exclusively.
type Wallets struct {
	store     *kv.Store
	byAddress map[string]*Wallet
	log       *logrus.Entry
}

// OpenWallets loads every wallet persisted under cfg's wallets namespace
// into memory. A namespace that doesn't exist yet opens empty.
func OpenWallets(cfg config.Config, log *logrus.Entry) (*Wallets, error) {
	store, err := kv.Open(cfg.WalletsDB(), walletsBucket)
	if err != nil {
		return nil, err
	}
	w := &Wallets{store: store, byAddress: make(map[string]*Wallet), log: log}

	err = store.ForEach(func(key, value []byte) error {
		wallet, err := deserializeWallet(value)
		if err != nil {
			return err
		}
		w.byAddress[string(key)] = wallet
		return nil
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the wallets namespace handle.
func (w *Wallets) Close() error { return w.store.Close() }

// CreateWallet generates a fresh keypair, derives its address, adds it
// to the in-memory set and returns the address. Callers must call
// SaveAll to persist it.
func (w *Wallets) CreateWallet() (string, error) {
	wallet, err := NewWallet()
	if err != nil {
		return "", err
	}
	address := wallet.Address()
	w.byAddress[address] = wallet
	if w.log != nil {
		w.log.WithField("address", address).Info("created wallet")
	}
	return address, nil
}

// GetWallet returns the wallet stored under address, if any.
func (w *Wallets) GetWallet(address string) (*Wallet, bool) {
	wallet, ok := w.byAddress[address]
	return wallet, ok
}

// GetAllAddresses returns every address currently known, in no
// particular order.
func (w *Wallets) GetAllAddresses() []string {
	addrs := make([]string, 0, len(w.byAddress))
	for a := range w.byAddress {
		addrs = append(addrs, a)
	}
	return addrs
}

// SaveAll writes every in-memory wallet back to the store and flushes.
func (w *Wallets) SaveAll() error {
	for address, wallet := range w.byAddress {
		data, err := serializeWallet(wallet)
		if err != nil {
			return err
		}
		if err := w.store.Put([]byte(address), data); err != nil {
			return err
		}
	}
	return w.store.Flush()
}

func serializeWallet(w *Wallet) ([]byte, error) {
	var buf bytes.Buffer
	rec := struct {
		PrivateKey []byte
		PublicKey  []byte
	}{PrivateKey: w.PrivateKey, PublicKey: w.PublicKey}
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, errs.Codec("serializeWallet", err)
	}
	return buf.Bytes(), nil
}

func deserializeWallet(data []byte) (*Wallet, error) {
	var rec struct {
		PrivateKey []byte
		PublicKey  []byte
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, errs.Codec("deserializeWallet", err)
	}
	return &Wallet{PrivateKey: rec.PrivateKey, PublicKey: rec.PublicKey}, nil
}
