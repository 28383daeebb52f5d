// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

func opAdd(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Add(&a, b)
	return nil, nil
}

func opSub(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Sub(&a, b)
	return nil, nil
}

func opMul(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Mul(&a, b)
	return nil, nil
}

func opDiv(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Div(&a, b)
	return nil, nil
}

func opSdiv(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.SDiv(&a, b)
	return nil, nil
}

func opMod(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Mod(&a, b)
	return nil, nil
}

func opSmod(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.SMod(&a, b)
	return nil, nil
}

func opExp(f *frame, in *Interpreter) (*pendingCall, error) {
	base, exponent := f.stack.Pop(), f.stack.Peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(f *frame, in *Interpreter) (*pendingCall, error) {
	back, num := f.stack.Pop(), f.stack.Peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opAddmod(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b, mod := f.stack.Pop(), f.stack.Pop(), f.stack.Peek()
	mod.AddMod(&a, &b, mod)
	return nil, nil
}

func opMulmod(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b, mod := f.stack.Pop(), f.stack.Pop(), f.stack.Peek()
	mod.MulMod(&a, &b, mod)
	return nil, nil
}

func opLt(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	if a.Lt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil, nil
}

func opGt(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	if a.Gt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil, nil
}

func opSlt(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	if a.Slt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil, nil
}

func opSgt(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	if a.Sgt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil, nil
}

func opEq(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	if a.Eq(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil, nil
}

func opIszero(f *frame, in *Interpreter) (*pendingCall, error) {
	a := f.stack.Peek()
	if a.IsZero() {
		a.SetOne()
	} else {
		a.Clear()
	}
	return nil, nil
}

func opAnd(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.And(&a, b)
	return nil, nil
}

func opOr(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Or(&a, b)
	return nil, nil
}

func opXor(f *frame, in *Interpreter) (*pendingCall, error) {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Xor(&a, b)
	return nil, nil
}

func opNot(f *frame, in *Interpreter) (*pendingCall, error) {
	a := f.stack.Peek()
	a.Not(a)
	return nil, nil
}

func opByte(f *frame, in *Interpreter) (*pendingCall, error) {
	th, val := f.stack.Pop(), f.stack.Peek()
	val.Byte(&th)
	return nil, nil
}

func opShl(f *frame, in *Interpreter) (*pendingCall, error) {
	shift, val := f.stack.Pop(), f.stack.Peek()
	if shift.LtUint64(256) {
		val.Lsh(val, uint(shift.Uint64()))
	} else {
		val.Clear()
	}
	return nil, nil
}

func opShr(f *frame, in *Interpreter) (*pendingCall, error) {
	shift, val := f.stack.Pop(), f.stack.Peek()
	if shift.LtUint64(256) {
		val.Rsh(val, uint(shift.Uint64()))
	} else {
		val.Clear()
	}
	return nil, nil
}

func opSar(f *frame, in *Interpreter) (*pendingCall, error) {
	shift, val := f.stack.Pop(), f.stack.Peek()
	if shift.GtUint64(256) {
		if val.Sign() >= 0 {
			val.Clear()
		} else {
			val.SetAllOne()
		}
		return nil, nil
	}
	n := uint(shift.Uint64())
	val.SRsh(val, n)
	return nil, nil
}

func opKeccak256(f *frame, in *Interpreter) (*pendingCall, error) {
	offset, size := f.stack.Pop(), f.stack.Peek()
	data := f.memory.GetPtr(offset.Uint64(), size.Uint64())
	hash := in.keccak(data)
	size.SetBytes(hash[:])
	return nil, nil
}
