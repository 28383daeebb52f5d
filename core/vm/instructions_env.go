// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
)

func opAddress(f *frame, in *Interpreter) (*pendingCall, error) {
	addr := f.contract.Address()
	var v uint256.Int
	v.SetBytes(addr.Bytes())
	return nil, f.stack.Push(&v)
}

func opBalance(f *frame, in *Interpreter) (*pendingCall, error) {
	slot := f.stack.Peek()
	addr := common.Address(slot.Bytes20())
	slot.Set(in.state.GetBalance(addr))
	return nil, nil
}

func opOrigin(f *frame, in *Interpreter) (*pendingCall, error) {
	var v uint256.Int
	v.SetBytes(in.txCtx.Origin.Bytes())
	return nil, f.stack.Push(&v)
}

func opCaller(f *frame, in *Interpreter) (*pendingCall, error) {
	var v uint256.Int
	v.SetBytes(f.contract.CallerAddress.Bytes())
	return nil, f.stack.Push(&v)
}

func opCallValue(f *frame, in *Interpreter) (*pendingCall, error) {
	v := *f.contract.Value()
	return nil, f.stack.Push(&v)
}

func opCallDataLoad(f *frame, in *Interpreter) (*pendingCall, error) {
	x := f.stack.Peek()
	data := getData(f.contract.Input, x.Uint64(), 32)
	x.SetBytes(data)
	return nil, nil
}

func opCallDataSize(f *frame, in *Interpreter) (*pendingCall, error) {
	v := uint256.NewInt(uint64(len(f.contract.Input)))
	return nil, f.stack.Push(v)
}

func opCallDataCopy(f *frame, in *Interpreter) (*pendingCall, error) {
	memOff, dataOff, length := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	data := getData(f.contract.Input, dataOff.Uint64(), length.Uint64())
	f.memory.Set(memOff.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opCodeSize(f *frame, in *Interpreter) (*pendingCall, error) {
	v := uint256.NewInt(uint64(len(f.contract.Code)))
	return nil, f.stack.Push(v)
}

func opCodeCopy(f *frame, in *Interpreter) (*pendingCall, error) {
	memOff, codeOff, length := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	data := getData(f.contract.Code, codeOff.Uint64(), length.Uint64())
	f.memory.Set(memOff.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opExtCodeSize(f *frame, in *Interpreter) (*pendingCall, error) {
	slot := f.stack.Peek()
	addr := common.Address(slot.Bytes20())
	slot.SetUint64(uint64(in.state.GetCodeSize(addr)))
	return nil, nil
}

func opExtCodeCopy(f *frame, in *Interpreter) (*pendingCall, error) {
	addrWord, memOff, codeOff, length := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	addr := common.Address(addrWord.Bytes20())
	code := in.state.GetCode(addr)
	data := getData(code, codeOff.Uint64(), length.Uint64())
	f.memory.Set(memOff.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opExtCodeHash(f *frame, in *Interpreter) (*pendingCall, error) {
	slot := f.stack.Peek()
	addr := common.Address(slot.Bytes20())
	if !in.state.Exist(addr) || in.state.Empty(addr) {
		slot.Clear()
		return nil, nil
	}
	slot.SetBytes(in.state.GetCodeHash(addr).Bytes())
	return nil, nil
}

func opReturnDataSize(f *frame, in *Interpreter) (*pendingCall, error) {
	v := uint256.NewInt(uint64(len(f.lastCallReturnData)))
	return nil, f.stack.Push(v)
}

func opReturnDataCopy(f *frame, in *Interpreter) (*pendingCall, error) {
	memOff, dataOff, length := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	end := new(uint256.Int).Add(&dataOff, &length)
	if !end.IsUint64() || uint64(len(f.lastCallReturnData)) < end.Uint64() {
		return nil, ErrReturnDataOutOfBounds
	}
	f.memory.Set(memOff.Uint64(), length.Uint64(), f.lastCallReturnData[dataOff.Uint64():end.Uint64()])
	return nil, nil
}

func opGasPrice(f *frame, in *Interpreter) (*pendingCall, error) {
	v := *in.txCtx.GasPrice
	return nil, f.stack.Push(&v)
}

func opBlockHash(f *frame, in *Interpreter) (*pendingCall, error) {
	num := f.stack.Peek()
	if !num.IsUint64() {
		num.Clear()
		return nil, nil
	}
	h := in.blockCtx.GetHash(num.Uint64())
	num.SetBytes(h.Bytes())
	return nil, nil
}

func opCoinbase(f *frame, in *Interpreter) (*pendingCall, error) {
	var v uint256.Int
	v.SetBytes(in.blockCtx.Coinbase.Bytes())
	return nil, f.stack.Push(&v)
}

func opTimestamp(f *frame, in *Interpreter) (*pendingCall, error) {
	return nil, f.stack.Push(uint256.NewInt(in.blockCtx.Time))
}

func opNumber(f *frame, in *Interpreter) (*pendingCall, error) {
	return nil, f.stack.Push(uint256.NewInt(in.blockCtx.BlockNumber))
}

func opDifficulty(f *frame, in *Interpreter) (*pendingCall, error) {
	if in.blockCtx.Random != nil {
		var v uint256.Int
		v.SetBytes(in.blockCtx.Random.Bytes())
		return nil, f.stack.Push(&v)
	}
	v := *in.blockCtx.Difficulty
	return nil, f.stack.Push(&v)
}

func opGasLimit(f *frame, in *Interpreter) (*pendingCall, error) {
	return nil, f.stack.Push(uint256.NewInt(in.blockCtx.GasLimit))
}

func opChainID(f *frame, in *Interpreter) (*pendingCall, error) {
	v := *in.chainID
	return nil, f.stack.Push(&v)
}

func opSelfBalance(f *frame, in *Interpreter) (*pendingCall, error) {
	bal := in.state.GetBalance(f.contract.Address())
	v := *bal
	return nil, f.stack.Push(&v)
}

func opBaseFee(f *frame, in *Interpreter) (*pendingCall, error) {
	v := *in.blockCtx.BaseFee
	return nil, f.stack.Push(&v)
}

// getData returns size bytes from data starting at offset, zero-padded
// past the end — the standard EVM out-of-bounds-read-as-zero rule for
// CALLDATA*/CODE*.
func getData(data []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset >= uint64(len(data)) {
		return out
	}
	end := offset + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[offset:end])
	return out
}
