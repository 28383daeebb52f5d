// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/rlp"
)

func TestReceiptRLPRoundTripLegacyType(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000001234")
	logs := []*Log{{Address: addr, Topics: []common.Hash{{1, 2, 3}}, Data: []byte{0xaa}}}
	r := NewReceipt(LegacyTxType, false, 21000, logs)

	enc, err := r.EncodeRLP()
	require.NoError(t, err)

	var got Receipt
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	require.Equal(t, ReceiptStatusSuccessful, got.Status)
	require.Equal(t, uint64(21000), got.CumulativeGasUsed)
	require.Len(t, got.Logs, 1)
	require.Equal(t, addr, got.Logs[0].Address)
	require.Equal(t, r.Bloom, got.Bloom)
}

func TestReceiptRLPRoundTripTypedFailed(t *testing.T) {
	r := NewReceipt(DynamicFeeTxType, true, 50000, nil)

	enc, err := r.EncodeRLP()
	require.NoError(t, err)
	require.Less(t, enc[0], byte(0xc0), "typed receipt envelope must be string-wrapped")

	var got Receipt
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	require.Equal(t, uint8(DynamicFeeTxType), got.Type)
	require.Equal(t, ReceiptStatusFailed, got.Status)
}

func TestMergeBloomOrsEveryReceipt(t *testing.T) {
	addr1 := common.HexToAddress("0x0000000000000000000000000000000000aaaa")
	addr2 := common.HexToAddress("0x0000000000000000000000000000000000bbbb")
	r1 := NewReceipt(LegacyTxType, false, 100, []*Log{{Address: addr1}})
	r2 := NewReceipt(LegacyTxType, false, 200, []*Log{{Address: addr2}})

	merged := MergeBloom([]*Receipt{r1, r2})
	require.True(t, merged.Test(addr1.Bytes()))
	require.True(t, merged.Test(addr2.Bytes()))
}
