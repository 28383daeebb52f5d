// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/common"
)

func TestNewBlockExposesHeaderAndBody(t *testing.T) {
	h := &Header{Number: big.NewInt(1), Difficulty: big.NewInt(0)}
	to := common.HexToAddress("0x0000000000000000000000000000000000dead")
	tx := NewTx(&LegacyTx{Nonce: 0, GasPrice: big.NewInt(1), Gas: 21000, To: &to, Value: big.NewInt(0)})

	b := NewBlock(h, []*Transaction{tx}, nil)
	require.Equal(t, uint64(1), b.NumberU64())
	require.Len(t, b.Transactions(), 1)
	require.Equal(t, h.Hash(), b.Hash())
	require.Empty(t, b.Uncles())
}
