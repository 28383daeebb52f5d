// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chainforge/evmcore/common"
)

// buildFlagSet declares this command's configuration surface as a
// pflag.FlagSet, the same pairing cmd/simulator's config package binds
// into viper before reading it back.
func buildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("evm", pflag.ContinueOnError)
	fs.String("genesis", "", "path to a genesis config file (YAML/JSON/TOML)")
	fs.String("blocks", "", "path to a length-framed RLP blocks file to replay")
	fs.Int("cache", 32, "trie node cache size, MiB")
	fs.Int64("chainid", 0, "override the genesis config's chain ID (0: use the file's)")
	return fs
}

// buildViper parses args against fs, binds the result into a fresh
// viper.Viper, then merges in the file named by --genesis (if any) so
// its alloc/gasLimit/chainID keys are readable alongside the flags.
func buildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if path := v.GetString("genesis"); path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("cmd/evm: read genesis config %s: %w", path, err)
		}
	}
	return v, nil
}

// genesisSpec is the parsed shape of a genesis config file: chain
// identity, the genesis header's gas limit and timestamp, and the
// initial account balances.
type genesisSpec struct {
	ChainID   int64
	GasLimit  uint64
	Timestamp uint64
	Alloc     map[common.Address]*big.Int
}

// loadGenesisSpec reads v's bound config (flags plus the merged
// genesis file) into a genesisSpec. viper reports config-file values
// as interface{} since it doesn't know their YAML/JSON/TOML origin
// ahead of time; cast resolves each to its concrete Go type regardless
// of whether the source encoded it as a string, int, or float.
func loadGenesisSpec(v *viper.Viper) (*genesisSpec, error) {
	spec := &genesisSpec{
		ChainID:   cast.ToInt64(v.Get("chainid")),
		GasLimit:  cast.ToUint64(v.Get("gaslimit")),
		Timestamp: cast.ToUint64(v.Get("timestamp")),
		Alloc:     make(map[common.Address]*big.Int),
	}
	if spec.ChainID == 0 {
		spec.ChainID = 1337
	}
	if spec.GasLimit == 0 {
		spec.GasLimit = 30_000_000
	}

	alloc := cast.ToStringMap(v.Get("alloc"))
	for addrHex, balanceAny := range alloc {
		balance, ok := new(big.Int).SetString(cast.ToString(balanceAny), 10)
		if !ok {
			return nil, fmt.Errorf("cmd/evm: invalid balance %q for address %s", balanceAny, addrHex)
		}
		spec.Alloc[common.HexToAddress(addrHex)] = balance
	}
	return spec, nil
}
