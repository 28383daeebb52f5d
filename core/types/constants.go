// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/chainforge/evmcore/common"

// EmptyCodeHash is keccak256(nil), the code hash of an
// externally-owned account (§4.3: an account with no code has this
// hash, never a zero hash).
var EmptyCodeHash = common.HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

// EmptyUncleHash is keccak256(rlp([])), the UncleHash of a block with
// no ommers.
var EmptyUncleHash = common.HexToHash("1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347")
