// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "github.com/chainforge/evmcore/common"

// gasCall computes CALL's dynamic cost: a value-transfer surcharge, a
// new-account surcharge (paid when the callee doesn't exist and value
// is non-zero), and the EIP-2929 cold-access surcharge on forks that
// have it (added on top by the Berlin-era replacement in
// jump_table_forks.go; this is the pre-Berlin baseline).
func gasCall(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	value := f.stack.Back(2)
	addr := common.Address(f.stack.Back(1).Bytes20())

	var cost uint64
	if !value.IsZero() {
		cost += CallValueTransferGas
		if !in.state.Exist(addr) {
			cost += CallNewAccountGas
		}
	}
	return cost, nil
}

func gasCallCode(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	value := f.stack.Back(2)
	var cost uint64
	if !value.IsZero() {
		cost += CallValueTransferGas
	}
	return cost, nil
}

func gasDelegateOrStaticCall(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	return 0, nil
}

// gasCallEIP2929 is the Berlin+ CALL cost: the value/new-account
// surcharges above, plus the cold/warm account-access surcharge in
// place of CALL's old flat 40-gas constant (which the Berlin jump
// table zeroes out).
func gasCallEIP2929(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	addr := common.Address(f.stack.Back(1).Bytes20())
	cost, err := gasCall(in, f, memSize)
	if err != nil {
		return 0, err
	}
	return cost + accessCost(in, addr), nil
}

func gasCallCodeEIP2929(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	addr := common.Address(f.stack.Back(1).Bytes20())
	cost, err := gasCallCode(in, f, memSize)
	if err != nil {
		return 0, err
	}
	return cost + accessCost(in, addr), nil
}

func gasDelegateOrStaticCallEIP2929(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	addr := common.Address(f.stack.Back(1).Bytes20())
	return accessCost(in, addr), nil
}

// accessCost charges ColdAccountAccessCost the first time addr is
// touched in this transaction and adds it to the warm set, or
// WarmStorageReadCost on every subsequent touch (§4.5 EIP-2929).
func accessCost(in *Interpreter, addr common.Address) uint64 {
	if in.state.AddressInAccessList(addr) {
		return WarmStorageReadCost
	}
	in.state.AddAddressToAccessList(addr)
	return ColdAccountAccessCost
}

func gasExtCodeSizeEIP2929(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	addr := common.Address(f.stack.Back(0).Bytes20())
	return accessCost(in, addr), nil
}

func gasExtCodeCopyEIP2929(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	addr := common.Address(f.stack.Back(0).Bytes20())
	size := f.stack.Back(3).Uint64()
	return accessCost(in, addr) + toWordSize(size)*CopyGas, nil
}

func gasExtCodeHashEIP2929(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	addr := common.Address(f.stack.Back(0).Bytes20())
	return accessCost(in, addr), nil
}

func gasBalanceEIP2929(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	addr := common.Address(f.stack.Back(0).Bytes20())
	return accessCost(in, addr), nil
}

func gasSloadEIP2929(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	loc := f.stack.Back(0)
	key := common.Hash(loc.Bytes32())
	addr := f.contract.Address()
	if warm, _ := in.state.SlotInAccessList(addr, key); warm {
		return WarmStorageReadCost, nil
	}
	in.state.AddSlotToAccessList(addr, key)
	return ColdSloadCost, nil
}
