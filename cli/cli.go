// Package cli implements the lumenchain command line interface
// (spec.md §6): create, createwallet, listaddresses, printchain,
// getbalance, send and reindex.
package cli

import (
	`flag`
	`fmt`
	`os`
	`strconv`

	`lumenchain/chain`
	`lumenchain/config`
	`lumenchain/errs`

	`github.com/sirupsen/logrus`
)

const usage = `Usage:
	create -addr ADDR                         --- Create the chain and send the coinbase reward of the genesis block to ADDR
	createwallet                               --- Generate a new wallet (public/private key pair) and save it to the wallet file
	listaddresses                              --- List every address held in the local wallet file
	printchain                                 --- Print every block of the local chain, newest first
	getbalance -addr ADDR                      --- Print the balance of ADDR
	send -from ADDR1 -to ADDR2 -amount AMT     --- Send AMT coins from ADDR1 to ADDR2 and mine the block immediately
	reindex                                    --- Rebuild the UTXO set from a full chain scan`

// CLI is the command line interface for lumenchain.
type CLI struct {
	cfg config.Config
	log *logrus.Entry
}

// New builds a CLI rooted at cfg's data directory.
func New(cfg config.Config, log *logrus.Entry) *CLI {
	return &CLI{cfg: cfg, log: log}
}

func (c *CLI) printUsage() {
	fmt.Println(usage)
}

func (c *CLI) validateArgs(args []string) {
	if len(args) < 1 {
		c.printUsage()
		os.Exit(1)
	}
}

// Run parses args (excluding the program name) and executes the
// requested command, returning the process exit code.
func (c *CLI) Run(args []string) int {
	c.validateArgs(args)

	createCmd := flag.NewFlagSet("create", flag.ExitOnError)
	createAddr := createCmd.String("addr", "", "address to receive the genesis coinbase reward")

	createWalletCmd := flag.NewFlagSet("createwallet", flag.ExitOnError)

	listAddressesCmd := flag.NewFlagSet("listaddresses", flag.ExitOnError)

	printChainCmd := flag.NewFlagSet("printchain", flag.ExitOnError)

	getBalanceCmd := flag.NewFlagSet("getbalance", flag.ExitOnError)
	balanceAddr := getBalanceCmd.String("addr", "", "address to query")

	sendCmd := flag.NewFlagSet("send", flag.ExitOnError)
	sendFrom := sendCmd.String("from", "", "sender address")
	sendTo := sendCmd.String("to", "", "receiver address")
	sendAmount := sendCmd.Int("amount", 0, "amount to send")

	reindexCmd := flag.NewFlagSet("reindex", flag.ExitOnError)

	var err error
	switch args[0] {
	case "create":
		err = createCmd.Parse(args[1:])
	case "createwallet":
		err = createWalletCmd.Parse(args[1:])
	case "listaddresses":
		err = listAddressesCmd.Parse(args[1:])
	case "printchain":
		err = printChainCmd.Parse(args[1:])
	case "getbalance":
		err = getBalanceCmd.Parse(args[1:])
	case "send":
		err = sendCmd.Parse(args[1:])
	case "reindex":
		err = reindexCmd.Parse(args[1:])
	default:
		c.printUsage()
		return 1
	}
	if err != nil {
		c.log.WithError(err).Error("failed to parse arguments")
		return 1
	}

	switch {
	case createCmd.Parsed():
		if *createAddr == "" {
			createCmd.Usage()
			return 1
		}
		err = c.create(*createAddr)
	case createWalletCmd.Parsed():
		err = c.createWallet()
	case listAddressesCmd.Parsed():
		err = c.listAddresses()
	case printChainCmd.Parsed():
		err = c.printChain()
	case getBalanceCmd.Parsed():
		if *balanceAddr == "" {
			getBalanceCmd.Usage()
			return 1
		}
		err = c.getBalance(*balanceAddr)
	case sendCmd.Parsed():
		if *sendFrom == "" || *sendTo == "" || *sendAmount <= 0 {
			sendCmd.Usage()
			return 1
		}
		err = c.send(*sendFrom, *sendTo, *sendAmount)
	case reindexCmd.Parsed():
		err = c.reindex()
	}

	if err != nil {
		c.log.WithError(err).Error("command failed")
		return 1
	}
	return 0
}

func (c *CLI) create(address string) error {
	if !chain.ValidateAddress(address) {
		return errs.ErrUnknownAddress
	}
	bc, err := chain.CreateBlockChain(c.cfg, address, c.log)
	if err != nil {
		return err
	}
	defer bc.Close()

	utxoSet, err := chain.OpenUTXOSet(c.cfg, bc, c.log)
	if err != nil {
		return err
	}
	defer utxoSet.Close()
	if err := utxoSet.Reindex(); err != nil {
		return err
	}

	fmt.Println("Done!")
	return nil
}

func (c *CLI) createWallet() error {
	wallets, err := chain.OpenWallets(c.cfg, c.log)
	if err != nil {
		return err
	}
	defer wallets.Close()

	address, err := wallets.CreateWallet()
	if err != nil {
		return err
	}
	if err := wallets.SaveAll(); err != nil {
		return err
	}

	fmt.Printf("New address: %s\n", address)
	return nil
}

func (c *CLI) listAddresses() error {
	wallets, err := chain.OpenWallets(c.cfg, c.log)
	if err != nil {
		return err
	}
	defer wallets.Close()

	for _, address := range wallets.GetAllAddresses() {
		fmt.Println(address)
	}
	return nil
}

func (c *CLI) printChain() error {
	bc, err := chain.OpenBlockChain(c.cfg, c.log)
	if err != nil {
		return err
	}
	defer bc.Close()

	it := bc.Iterator()
	for {
		block, err := it.Next()
		if err != nil {
			return err
		}
		if block == nil {
			break
		}

		fmt.Printf("Height: %d\n", block.Height)
		fmt.Printf("Prev. hash: %s\n", block.PrevHash)
		fmt.Printf("Hash: %s\n", block.Hash)
		pow := chain.NewProofOfWork(block)
		valid, err := pow.Validate()
		if err != nil {
			return err
		}
		fmt.Printf("PoW valid: %s\n", strconv.FormatBool(valid))
		for _, tx := range block.Transactions {
			fmt.Printf("  tx %s\n", tx.ID)
		}
		fmt.Println()
	}
	return nil
}

func (c *CLI) getBalance(address string) error {
	if !chain.ValidateAddress(address) {
		return errs.ErrUnknownAddress
	}
	bc, err := chain.OpenBlockChain(c.cfg, c.log)
	if err != nil {
		return err
	}
	defer bc.Close()

	utxoSet, err := chain.OpenUTXOSet(c.cfg, bc, c.log)
	if err != nil {
		return err
	}
	defer utxoSet.Close()

	pubKeyHash, err := chain.DecodeAddress(address)
	if err != nil {
		return err
	}
	outputs, err := utxoSet.FindUTXO(pubKeyHash)
	if err != nil {
		return err
	}

	balance := 0
	for _, out := range outputs {
		balance += out.Value
	}
	fmt.Printf("Balance of '%s': %d\n", address, balance)
	return nil
}

func (c *CLI) send(from, to string, amount int) error {
	if !chain.ValidateAddress(from) || !chain.ValidateAddress(to) {
		return errs.ErrUnknownAddress
	}
	bc, err := chain.OpenBlockChain(c.cfg, c.log)
	if err != nil {
		return err
	}
	defer bc.Close()

	utxoSet, err := chain.OpenUTXOSet(c.cfg, bc, c.log)
	if err != nil {
		return err
	}
	defer utxoSet.Close()

	wallets, err := chain.OpenWallets(c.cfg, c.log)
	if err != nil {
		return err
	}
	defer wallets.Close()

	tx, err := chain.NewTransaction(from, to, amount, bc, utxoSet, wallets)
	if err != nil {
		return err
	}

	coinbase, err := chain.NewCoinbaseTransaction(from, "")
	if err != nil {
		return err
	}

	block, err := bc.MineBlock([]*chain.Transaction{coinbase, tx})
	if err != nil {
		return err
	}
	if err := utxoSet.Update(block); err != nil {
		return err
	}

	fmt.Println("Success!")
	return nil
}

func (c *CLI) reindex() error {
	bc, err := chain.OpenBlockChain(c.cfg, c.log)
	if err != nil {
		return err
	}
	defer bc.Close()

	utxoSet, err := chain.OpenUTXOSet(c.cfg, bc, c.log)
	if err != nil {
		return err
	}
	defer utxoSet.Close()
	if err := utxoSet.Reindex(); err != nil {
		return err
	}

	count, err := utxoSet.CountTransactions()
	if err != nil {
		return err
	}
	fmt.Printf("Done! %d transactions found in the UTXO set.\n", count)
	return nil
}
