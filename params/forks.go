// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package params holds the fork schedule, gas-cost tables, and chain
// configuration that parameterize the EVM interpreter and transaction
// processor (§4.4, §4.5, §4.9 of the execution core spec).
package params

import "math/big"

// Fork identifies a named set of consensus rule changes, activated at
// a block number (pre-Paris) or a timestamp (Shanghai onward).
type Fork int

const (
	Frontier Fork = iota
	Homestead
	DAO
	Tangerine // EIP-150
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	MuirGlacier
	Berlin
	London
	ArrowGlacier
	GrayGlacier
	Paris // The Merge; no gas-schedule or opcode changes of its own
	Shanghai
	lastFork
)

func (f Fork) String() string {
	names := [...]string{
		"Frontier", "Homestead", "DAO", "Tangerine", "SpuriousDragon",
		"Byzantium", "Constantinople", "Petersburg", "Istanbul", "MuirGlacier",
		"Berlin", "London", "ArrowGlacier", "GrayGlacier", "Paris", "Shanghai",
	}
	if int(f) < 0 || int(f) >= len(names) {
		return "Unknown"
	}
	return names[f]
}

// activation describes when a fork turns on: by block number for the
// pre-Merge forks, by timestamp from Shanghai onward.
type activation struct {
	fork      Fork
	block     *big.Int // nil if timestamp-activated
	timestamp *uint64  // nil if block-activated
}

// ChainConfig is a fork schedule plus chain identity. ToFork scans the
// whole schedule for the greatest fork whose activation has passed, so
// the order in which activations are added does not matter.
type ChainConfig struct {
	ChainID *big.Int

	schedule       []activation
	initialBaseFee uint64
}

// NewChainConfig builds a ChainConfig for chainID with an empty fork
// schedule; forks are added with ActivateAtBlock (pre-Shanghai forks)
// or ActivateAtTime (Shanghai+).
func NewChainConfig(chainID *big.Int) *ChainConfig {
	return &ChainConfig{ChainID: chainID, initialBaseFee: 1_000_000_000}
}

// ActivateAtBlock records that fork activates at block n.
func (c *ChainConfig) ActivateAtBlock(fork Fork, n *big.Int) *ChainConfig {
	c.schedule = append(c.schedule, activation{fork: fork, block: n})
	return c
}

// ActivateAtTime records that fork activates at unix time ts.
func (c *ChainConfig) ActivateAtTime(fork Fork, ts uint64) *ChainConfig {
	c.schedule = append(c.schedule, activation{fork: fork, timestamp: &ts})
	return c
}

// ToFork returns the greatest fork whose activation is <= (blockNumber, time).
func (c *ChainConfig) ToFork(blockNumber *big.Int, time uint64) Fork {
	best := Frontier
	for _, a := range c.schedule {
		if a.block != nil {
			if blockNumber != nil && blockNumber.Cmp(a.block) >= 0 && a.fork > best {
				best = a.fork
			}
			continue
		}
		if a.timestamp != nil && time >= *a.timestamp && a.fork > best {
			best = a.fork
		}
	}
	return best
}

// IsLondon, IsBerlin, ... convenience predicates used pervasively by
// the interpreter and transaction processor.
func (c *ChainConfig) IsLondon(n *big.Int, t uint64) bool { return c.ToFork(n, t) >= London }
func (c *ChainConfig) IsBerlin(n *big.Int, t uint64) bool { return c.ToFork(n, t) >= Berlin }
func (c *ChainConfig) IsIstanbul(n *big.Int, t uint64) bool {
	return c.ToFork(n, t) >= Istanbul
}
func (c *ChainConfig) IsByzantium(n *big.Int, t uint64) bool {
	return c.ToFork(n, t) >= Byzantium
}
func (c *ChainConfig) IsConstantinople(n *big.Int, t uint64) bool {
	return c.ToFork(n, t) >= Constantinople
}
func (c *ChainConfig) IsSpuriousDragon(n *big.Int, t uint64) bool {
	return c.ToFork(n, t) >= SpuriousDragon
}
func (c *ChainConfig) IsTangerine(n *big.Int, t uint64) bool { return c.ToFork(n, t) >= Tangerine }
func (c *ChainConfig) IsHomestead(n *big.Int, t uint64) bool { return c.ToFork(n, t) >= Homestead }

// InitialBaseFee is the base fee of the very first London block
// (§4.9): 1,000,000,000 wei unless overridden.
func (c *ChainConfig) InitialBaseFee() uint64 { return c.initialBaseFee }

// WithInitialBaseFee overrides the default InitialBaseFee (for test
// networks that fork directly into London with a different value).
func (c *ChainConfig) WithInitialBaseFee(wei uint64) *ChainConfig {
	c.initialBaseFee = wei
	return c
}

// MainnetChainConfig reproduces the Ethereum mainnet fork schedule
// through Shanghai.
func MainnetChainConfig() *ChainConfig {
	c := NewChainConfig(big.NewInt(1))
	c.ActivateAtBlock(Homestead, big.NewInt(1_150_000))
	c.ActivateAtBlock(DAO, big.NewInt(1_920_000))
	c.ActivateAtBlock(Tangerine, big.NewInt(2_463_000))
	c.ActivateAtBlock(SpuriousDragon, big.NewInt(2_675_000))
	c.ActivateAtBlock(Byzantium, big.NewInt(4_370_000))
	c.ActivateAtBlock(Constantinople, big.NewInt(7_280_000))
	c.ActivateAtBlock(Petersburg, big.NewInt(7_280_000))
	c.ActivateAtBlock(Istanbul, big.NewInt(9_069_000))
	c.ActivateAtBlock(MuirGlacier, big.NewInt(9_200_000))
	c.ActivateAtBlock(Berlin, big.NewInt(12_244_000))
	c.ActivateAtBlock(London, big.NewInt(12_965_000))
	c.ActivateAtBlock(ArrowGlacier, big.NewInt(13_773_000))
	c.ActivateAtBlock(GrayGlacier, big.NewInt(15_050_000))
	c.ActivateAtBlock(Paris, big.NewInt(15_537_394))
	c.ActivateAtTime(Shanghai, 1_681_338_455)
	return c
}

// AllForksAtGenesisChainConfig activates every fork at block 0, the
// configuration most test fixtures want.
func AllForksAtGenesisChainConfig(chainID int64) *ChainConfig {
	c := NewChainConfig(big.NewInt(chainID))
	zero := big.NewInt(0)
	for f := Homestead; f < Shanghai; f++ {
		c.ActivateAtBlock(f, zero)
	}
	c.ActivateAtTime(Shanghai, 0)
	return c
}
