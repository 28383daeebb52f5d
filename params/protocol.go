// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package params

// Protocol-wide numeric constants referenced by the transaction
// processor, block executor, and interpreter (§3, §4.7, §4.9).
const (
	// TxGas is the intrinsic gas of every transaction before
	// accounting for creation, calldata, or access lists.
	TxGas uint64 = 21000
	// TxGasContractCreation is the additional intrinsic gas for a
	// contract-creation transaction (to == nil).
	TxGasContractCreation uint64 = 32000
	// TxDataZeroGas is the intrinsic cost of each zero calldata byte.
	TxDataZeroGas uint64 = 4
	// TxDataNonZeroGasFrontier is the intrinsic cost of each non-zero
	// calldata byte before Istanbul.
	TxDataNonZeroGasFrontier uint64 = 68
	// TxDataNonZeroGasEIP2028 is the Istanbul-reduced cost of each
	// non-zero calldata byte (EIP-2028).
	TxDataNonZeroGasEIP2028 uint64 = 16
	// TxAccessListAddressGas is the EIP-2930 per-address cost of an
	// access list entry.
	TxAccessListAddressGas uint64 = 2400
	// TxAccessListStorageKeyGas is the EIP-2930 per-slot cost of an
	// access list entry.
	TxAccessListStorageKeyGas uint64 = 1900

	// MaxCodeSize is the maximum deployed contract bytecode length,
	// enforced from Spurious Dragon onward (EIP-170).
	MaxCodeSize = 24576
	// MaxInitCodeSize is the maximum init code length, enforced from
	// Shanghai onward (EIP-3860); before Shanghai it is not checked.
	MaxInitCodeSize = 2 * MaxCodeSize

	// MaxCallDepth is the maximum nested call/create depth (§3, §4.6).
	MaxCallDepth = 1024
	// StackLimit is the maximum EVM stack depth.
	StackLimit = 1024

	// CallCreateDepthExceededGasBurn is unused; call-depth failures
	// never burn gas (§4.6: "the 1025th call returns 0 and refunds
	// childGasLimit").

	// CallStipend is the gas stipend forwarded to the callee on a
	// non-zero value CALL to cover the basic cost of receiving funds.
	CallStipend uint64 = 2300

	// RefundQuotientFrontier is the pre-London refund cap divisor
	// (gasUsed/5).
	RefundQuotientFrontier uint64 = 5
	// RefundQuotientLondon is the London+ refund cap divisor
	// (gasUsed/2).
	RefundQuotientLondon uint64 = 2

	// MinGasLimit is the protocol floor on header.GasLimit (§4.9).
	MinGasLimit uint64 = 5000
	// GasLimitBoundDivisor bounds how much gas limit may change block
	// to block: |new - parent| < parent/1024 (§4.9).
	GasLimitBoundDivisor uint64 = 1024
	// ElasticityMultiplier is the London block-gas-limit headroom
	// factor (EIP-1559): the "effective" parent limit used for the
	// very first London block is parent.GasLimit * 2.
	ElasticityMultiplier uint64 = 2
	// BaseFeeChangeDenominator bounds the max base fee change per
	// block (EIP-1559): up to 1/8 of the parent base fee.
	BaseFeeChangeDenominator uint64 = 8
	// InitialBaseFeeWei is the base fee of the very first London
	// block, absent a network-specific override.
	InitialBaseFeeWei uint64 = 1_000_000_000

	// BaseRewardFrontier, BaseRewardByzantium, BaseRewardConstantinople
	// are the per-block miner rewards before an ommer/nephew bonus
	// (§4.8), in wei.
	BaseRewardFrontier       = 5_000_000_000_000_000_000
	BaseRewardByzantium      = 3_000_000_000_000_000_000
	BaseRewardConstantinople = 2_000_000_000_000_000_000
)
