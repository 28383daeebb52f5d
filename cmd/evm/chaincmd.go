// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/consensus/dummy"
	"github.com/chainforge/evmcore/core"
	"github.com/chainforge/evmcore/core/state"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/kv"
	"github.com/chainforge/evmcore/metrics"
	"github.com/chainforge/evmcore/params"
	"github.com/chainforge/evmcore/trie"
)

var (
	genesisCommand = &cli.Command{
		Name:      "genesis",
		Usage:     "build a genesis block from a config file and print its hash and state root",
		ArgsUsage: "--genesis <file>",
		Action:    runGenesis,
	}

	runCommand = &cli.Command{
		Name:      "run",
		Usage:     "build genesis, then replay a blocks file through the block executor",
		ArgsUsage: "--genesis <file> --blocks <file>",
		Action:    runChain,
	}

	importCommand = &cli.Command{
		Name:      "import",
		Usage:     "validate and summarize a blocks file without executing it",
		ArgsUsage: "--blocks <file>",
		Action:    importChain,
	}
)

// built bundles the pieces genesis construction hands to the other
// commands: the resolved chain config, the assembled genesis block,
// the store it was committed into, and the collectors wrapping that
// store's node cache.
type built struct {
	config  *params.ChainConfig
	genesis *types.Block
	store   kv.Store
	metrics *metrics.Metrics
}

// buildGenesis parses v's bound flags and merged genesis file into a
// genesisSpec, applies its allocation to a fresh state trie, and
// assembles the resulting genesis header and block. The genesis
// state's root is committed into the returned store before
// core.NewChainStore ever sees it, matching NewChainStore's own
// contract that genesis state arrives pre-committed.
func buildGenesis(v *viper.Viper) (*built, error) {
	spec, err := loadGenesisSpec(v)
	if err != nil {
		return nil, err
	}

	config := params.AllForksAtGenesisChainConfig(spec.ChainID)

	cacheMB := cast.ToInt(v.Get("cache"))
	if cacheMB <= 0 {
		cacheMB = 32
	}
	m := metrics.New()
	store := trie.NewCachingStore(kv.NewMemStore(), cacheMB<<20, m)

	statedb, err := state.New(common.Hash{}, store, true)
	if err != nil {
		return nil, fmt.Errorf("cmd/evm: open genesis state: %w", err)
	}
	for addr, balance := range spec.Alloc {
		statedb.CreateAccount(addr)
		amount, overflow := uint256.FromBig(balance)
		if overflow {
			return nil, fmt.Errorf("cmd/evm: balance for %s overflows 256 bits", addr.Hex())
		}
		statedb.AddBalance(addr, amount)
	}
	root, err := statedb.Commit()
	if err != nil {
		return nil, fmt.Errorf("cmd/evm: commit genesis state: %w", err)
	}

	var baseFee *big.Int
	if config.IsLondon(big.NewInt(0), spec.Timestamp) {
		baseFee = new(big.Int).SetUint64(config.InitialBaseFee())
	}
	header := &types.Header{
		ParentHash:  common.Hash{},
		UncleHash:   types.EmptyUncleHash,
		Coinbase:    common.Address{},
		Root:        root,
		TxHash:      trie.EmptyRoot,
		ReceiptHash: trie.EmptyRoot,
		Bloom:       types.Bloom{},
		Difficulty:  big.NewInt(1),
		Number:      big.NewInt(0),
		GasLimit:    spec.GasLimit,
		GasUsed:     0,
		Time:        spec.Timestamp,
		BaseFee:     baseFee,
	}
	genesisBlock := types.NewBlock(header, nil, nil)

	return &built{config: config, genesis: genesisBlock, store: store, metrics: m}, nil
}

func runGenesis(ctx *cli.Context) error {
	fs := buildFlagSet()
	v, err := buildViper(fs, ctx.Args().Slice())
	if err != nil {
		return err
	}
	b, err := buildGenesis(v)
	if err != nil {
		return err
	}
	header := b.genesis.Header()
	fmt.Printf("chain id:     %s\n", b.config.ChainID)
	fmt.Printf("genesis hash: %s\n", b.genesis.Hash().Hex())
	fmt.Printf("state root:   %s\n", header.Root.Hex())
	fmt.Printf("gas limit:    %d\n", header.GasLimit)
	return nil
}

func runChain(ctx *cli.Context) error {
	fs := buildFlagSet()
	v, err := buildViper(fs, ctx.Args().Slice())
	if err != nil {
		return err
	}
	b, err := buildGenesis(v)
	if err != nil {
		return err
	}

	engine := dummy.New(b.config)
	cs, err := core.NewChainStore(b.store, b.config, engine, b.genesis)
	if err != nil {
		return fmt.Errorf("cmd/evm: open chain store: %w", err)
	}
	cs.SetMetrics(b.metrics)

	fmt.Printf("genesis hash: %s\n", b.genesis.Hash().Hex())

	blocksPath := v.GetString("blocks")
	if blocksPath == "" {
		fmt.Println("no --blocks file given; genesis only")
		return nil
	}
	headers, bodies, err := readBlocksFile(blocksPath)
	if err != nil {
		return err
	}
	result, err := cs.PersistBlocks(headers, bodies)
	if err != nil {
		return fmt.Errorf("cmd/evm: persist blocks: %w", err)
	}
	fmt.Printf("applied %d block(s); new head: %s (#%d)\n",
		len(headers), result.NewHead.Hash().Hex(), result.NewHead.Number.Uint64())
	return nil
}

func importChain(ctx *cli.Context) error {
	fs := buildFlagSet()
	v, err := buildViper(fs, ctx.Args().Slice())
	if err != nil {
		return err
	}
	path := v.GetString("blocks")
	if path == "" {
		return fmt.Errorf("cmd/evm: import requires --blocks <file>")
	}
	headers, bodies, err := readBlocksFile(path)
	if err != nil {
		return err
	}
	for i, header := range headers {
		fmt.Printf("block #%-8d hash %s  txs %d\n", header.Number.Uint64(), header.Hash().Hex(), len(bodies[i].Transactions))
	}
	fmt.Printf("%d block(s) read from %s\n", len(headers), path)
	return nil
}
