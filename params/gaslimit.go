// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package params

import "math/big"

// ValidateGasLimit reports whether a child header's gas limit is a
// legal successor to its parent's (§4.9): the change must be strictly
// less than parent/GasLimitBoundDivisor, and the limit itself must
// never fall below MinGasLimit. From London onward, a block transitioning
// out of the last pre-London block is allowed to double its effective
// limit in one step (EIP-1559 elasticity), so the bound is computed
// against parentLimit*ElasticityMultiplier for that single block.
func ValidateGasLimit(parentLimit, headerLimit uint64, londonTransition bool) bool {
	if headerLimit < MinGasLimit {
		return false
	}
	effectiveParent := parentLimit
	if londonTransition {
		effectiveParent *= ElasticityMultiplier
	}
	bound := effectiveParent / GasLimitBoundDivisor
	if bound == 0 {
		bound = 1
	}
	var diff uint64
	if headerLimit > effectiveParent {
		diff = headerLimit - effectiveParent
	} else {
		diff = effectiveParent - headerLimit
	}
	return diff < bound
}

// CalcBaseFee computes the EIP-1559 base fee of a block given its
// parent header fields (§4.9). The very first London block has no
// parent base fee to extrapolate from, so the caller passes
// InitialBaseFeeWei (or a network override) in that case.
func CalcBaseFee(parentGasLimit, parentGasUsed uint64, parentBaseFee *big.Int) *big.Int {
	parentGasTarget := parentGasLimit / ElasticityMultiplier
	if parentGasTarget == 0 {
		return new(big.Int).Set(parentBaseFee)
	}

	if parentGasUsed == parentGasTarget {
		return new(big.Int).Set(parentBaseFee)
	}

	changeDenominator := new(big.Int).SetUint64(BaseFeeChangeDenominator)
	if parentGasUsed > parentGasTarget {
		gasUsedDelta := parentGasUsed - parentGasTarget
		x := new(big.Int).Mul(parentBaseFee, big.NewInt(int64(gasUsedDelta)))
		x.Div(x, big.NewInt(int64(parentGasTarget)))
		baseFeeDelta := x.Div(x, changeDenominator)
		if baseFeeDelta.Sign() == 0 {
			baseFeeDelta.SetInt64(1)
		}
		return new(big.Int).Add(parentBaseFee, baseFeeDelta)
	}

	gasUsedDelta := parentGasTarget - parentGasUsed
	x := new(big.Int).Mul(parentBaseFee, big.NewInt(int64(gasUsedDelta)))
	x.Div(x, big.NewInt(int64(parentGasTarget)))
	baseFeeDelta := x.Div(x, changeDenominator)

	baseFee := new(big.Int).Sub(parentBaseFee, baseFeeDelta)
	if baseFee.Sign() < 0 {
		return new(big.Int)
	}
	return baseFee
}
