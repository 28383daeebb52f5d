// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/crypto"
	"github.com/chainforge/evmcore/rlp"
)

func TestLegacyTxRLPRoundTrip(t *testing.T) {
	to := common.HexToAddress("0x000000000000000000000000000000000000aa")
	tx := NewTx(&LegacyTx{
		Nonce: 7, GasPrice: big.NewInt(1_000_000_000), Gas: 21000,
		To: &to, Value: big.NewInt(42), Data: []byte{0x01, 0x02},
		V: big.NewInt(27), R: big.NewInt(1), S: big.NewInt(2),
	})
	enc, err := tx.EncodeRLP()
	require.NoError(t, err)

	var got Transaction
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	require.Equal(t, uint8(LegacyTxType), got.Type())
	require.Equal(t, uint64(7), got.Nonce())
	require.Equal(t, to, *got.To())
	require.Equal(t, big.NewInt(42), got.Value())
}

func TestLegacyTxContractCreationHasNilTo(t *testing.T) {
	tx := NewTx(&LegacyTx{
		Nonce: 0, GasPrice: big.NewInt(1), Gas: 100000, To: nil,
		Value: big.NewInt(0), Data: []byte{0x60, 0x00},
		V: big.NewInt(27), R: big.NewInt(1), S: big.NewInt(1),
	})
	enc, err := tx.EncodeRLP()
	require.NoError(t, err)

	var got Transaction
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	require.Nil(t, got.To(), "contract creation must decode To as nil, not the zero address")
}

func TestAccessListTxRLPRoundTrip(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000bb")
	tx := NewTx(&AccessListTx{
		ChainID: big.NewInt(1), Nonce: 3, GasPrice: big.NewInt(5), Gas: 60000,
		To: &to, Value: big.NewInt(0), Data: nil,
		AccessList: AccessList{{Address: to, StorageKeys: []common.Hash{{1}, {2}}}},
		V:          big.NewInt(0), R: big.NewInt(9), S: big.NewInt(10),
	})
	enc, err := tx.EncodeRLP()
	require.NoError(t, err)
	require.Less(t, enc[0], byte(0xc0), "typed tx envelope must be string-wrapped, not a bare list")

	var got Transaction
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	require.Equal(t, uint8(AccessListTxType), got.Type())
	require.Len(t, got.AccessList(), 1)
	require.Equal(t, to, got.AccessList()[0].Address)
}

func TestDynamicFeeTxRLPRoundTrip(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000cc")
	tx := NewTx(&DynamicFeeTx{
		ChainID: big.NewInt(1), Nonce: 11, GasTipCap: big.NewInt(2), GasFeeCap: big.NewInt(100),
		Gas: 21000, To: &to, Value: big.NewInt(5), Data: nil,
		V: big.NewInt(1), R: big.NewInt(3), S: big.NewInt(4),
	})
	enc, err := tx.EncodeRLP()
	require.NoError(t, err)

	var got Transaction
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	require.Equal(t, uint8(DynamicFeeTxType), got.Type())
	require.Equal(t, big.NewInt(2), got.GasTipCap())
	require.Equal(t, big.NewInt(100), got.GasFeeCap())
}

func TestSignAndRecoverSenderLegacy(t *testing.T) {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	wantAddr := crypto.PubkeyToAddress(priv.PublicKeyBytes())

	to := common.HexToAddress("0x000000000000000000000000000000000000dd")
	tx := NewTx(&LegacyTx{Nonce: 0, GasPrice: big.NewInt(1), Gas: 21000, To: &to, Value: big.NewInt(1)})

	signer := NewEIP155Signer(big.NewInt(1))
	signed, err := SignTx(tx, signer, priv)
	require.NoError(t, err)

	addr, err := Sender(signer, signed)
	require.NoError(t, err)
	require.Equal(t, wantAddr, addr)
}

func TestSignAndRecoverSenderDynamicFee(t *testing.T) {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	wantAddr := crypto.PubkeyToAddress(priv.PublicKeyBytes())

	to := common.HexToAddress("0x000000000000000000000000000000000000ee")
	tx := NewTx(&DynamicFeeTx{
		ChainID: big.NewInt(5), Nonce: 2, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(10),
		Gas: 21000, To: &to, Value: big.NewInt(0),
	})

	signer := NewLondonSigner(big.NewInt(5))
	signed, err := SignTx(tx, signer, priv)
	require.NoError(t, err)

	addr, err := Sender(signer, signed)
	require.NoError(t, err)
	require.Equal(t, wantAddr, addr)
}

func TestEffectiveGasPriceCapsAtFeeCap(t *testing.T) {
	to := common.HexToAddress("0x000000000000000000000000000000000000ff")
	tx := NewTx(&DynamicFeeTx{
		ChainID: big.NewInt(1), Nonce: 0, GasTipCap: big.NewInt(10), GasFeeCap: big.NewInt(50),
		Gas: 21000, To: &to, Value: big.NewInt(0),
	})
	price, err := tx.EffectiveGasPrice(big.NewInt(45))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(50), price, "tip would push price to 55 but fee cap bounds it at 50")

	_, err = tx.EffectiveGasPrice(big.NewInt(60))
	require.Error(t, err, "base fee above fee cap must be rejected")
}
