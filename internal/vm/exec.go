package vm

import (
	"github.com/jvmlite/jvmlite/internal/classfile"
	"github.com/jvmlite/jvmlite/internal/object"
	"github.com/jvmlite/jvmlite/internal/status"
)

// execute dispatches one opcode for spec.md §4.10 step 4 ("interpret
// according to the instruction's category"). It returns done=true only
// for the return family; every other instruction returns done=false and
// lets runLoop fetch the next opcode.
func (v *VM) execute(f *Frame, opcode byte) (bool, error) {
	switch opcode {
	case opNop:
		return false, nil

	case opAconstNull:
		f.Operands.PushRef(nil)
		return false, nil

	case opIconstM1, opIconst0, opIconst1, opIconst2, opIconst3, opIconst4, opIconst5:
		f.Operands.PushInt(int32(opcode) - int32(opIconst0))
		return false, nil

	case opLconst0, opLconst1:
		f.Operands.PushLong(int64(opcode - opLconst0))
		return false, nil

	case opFconst0, opFconst1, opFconst2:
		f.Operands.PushFloat(float32(opcode - opFconst0))
		return false, nil

	case opDconst0, opDconst1:
		f.Operands.PushDouble(float64(opcode - opDconst0))
		return false, nil

	case opBipush:
		f.Operands.PushInt(int32(f.s1()))
		return false, nil

	case opSipush:
		f.Operands.PushInt(int32(f.s2()))
		return false, nil

	case opLdc:
		return false, v.execLdc(f, int(f.u1()))
	case opLdcW:
		return false, v.execLdc(f, int(f.u2()))
	case opLdc2W:
		return false, v.execLdc2(f, int(f.u2()))

	case opIload:
		f.Operands.PushInt(f.loadInt(int(f.u1())))
		return false, nil
	case opLload:
		f.Operands.PushLong(f.loadLong(int(f.u1())))
		return false, nil
	case opFload:
		f.Operands.PushFloat(f.loadFloat(int(f.u1())))
		return false, nil
	case opDload:
		f.Operands.PushDouble(f.loadDouble(int(f.u1())))
		return false, nil
	case opAload:
		f.Operands.PushRef(f.loadRef(int(f.u1())))
		return false, nil

	case opIload0, opIload1, opIload2, opIload3:
		f.Operands.PushInt(f.loadInt(int(opcode - opIload0)))
		return false, nil
	case opLload0, opLload1, opLload2, opLload3:
		f.Operands.PushLong(f.loadLong(int(opcode - opLload0)))
		return false, nil
	case opFload0, opFload1, opFload2, opFload3:
		f.Operands.PushFloat(f.loadFloat(int(opcode - opFload0)))
		return false, nil
	case opDload0, opDload1, opDload2, opDload3:
		f.Operands.PushDouble(f.loadDouble(int(opcode - opDload0)))
		return false, nil
	case opAload0, opAload1, opAload2, opAload3:
		f.Operands.PushRef(f.loadRef(int(opcode - opAload0)))
		return false, nil

	case opIstore:
		f.storeInt(int(f.u1()), f.Operands.PopInt())
		return false, nil
	case opLstore:
		f.storeLong(int(f.u1()), f.Operands.PopLong())
		return false, nil
	case opFstore:
		f.storeFloat(int(f.u1()), f.Operands.PopFloat())
		return false, nil
	case opDstore:
		f.storeDouble(int(f.u1()), f.Operands.PopDouble())
		return false, nil
	case opAstore:
		// The whole slot is stored so a returnAddress pushed by jsr keeps
		// its value for a later ret.
		f.Locals[int(f.u1())] = f.Operands.Pop()
		return false, nil

	case opIstore0, opIstore1, opIstore2, opIstore3:
		f.storeInt(int(opcode-opIstore0), f.Operands.PopInt())
		return false, nil
	case opLstore0, opLstore1, opLstore2, opLstore3:
		f.storeLong(int(opcode-opLstore0), f.Operands.PopLong())
		return false, nil
	case opFstore0, opFstore1, opFstore2, opFstore3:
		f.storeFloat(int(opcode-opFstore0), f.Operands.PopFloat())
		return false, nil
	case opDstore0, opDstore1, opDstore2, opDstore3:
		f.storeDouble(int(opcode-opDstore0), f.Operands.PopDouble())
		return false, nil
	case opAstore0, opAstore1, opAstore2, opAstore3:
		f.Locals[int(opcode-opAstore0)] = f.Operands.Pop()
		return false, nil

	case opIinc:
		idx := int(f.u1())
		delta := int32(f.s1())
		f.storeInt(idx, f.loadInt(idx)+delta)
		return false, nil

	case opPop:
		f.Operands.Pop()
		return false, nil
	case opPop2:
		f.Operands.Pop()
		f.Operands.Pop()
		return false, nil

	case opDup:
		v := f.Operands.Peek()
		f.Operands.Push(v)
		return false, nil
	case opDupX1:
		a := f.Operands.Pop()
		b := f.Operands.Pop()
		f.Operands.Push(a)
		f.Operands.Push(b)
		f.Operands.Push(a)
		return false, nil
	case opDupX2:
		a := f.Operands.Pop()
		b := f.Operands.Pop()
		c := f.Operands.Pop()
		f.Operands.Push(a)
		f.Operands.Push(c)
		f.Operands.Push(b)
		f.Operands.Push(a)
		return false, nil
	case opDup2:
		a := f.Operands.Pop()
		b := f.Operands.Pop()
		f.Operands.Push(b)
		f.Operands.Push(a)
		f.Operands.Push(b)
		f.Operands.Push(a)
		return false, nil
	case opDup2X1:
		a := f.Operands.Pop()
		b := f.Operands.Pop()
		c := f.Operands.Pop()
		f.Operands.Push(b)
		f.Operands.Push(a)
		f.Operands.Push(c)
		f.Operands.Push(b)
		f.Operands.Push(a)
		return false, nil
	case opDup2X2:
		a := f.Operands.Pop()
		b := f.Operands.Pop()
		c := f.Operands.Pop()
		d := f.Operands.Pop()
		f.Operands.Push(b)
		f.Operands.Push(a)
		f.Operands.Push(d)
		f.Operands.Push(c)
		f.Operands.Push(b)
		f.Operands.Push(a)
		return false, nil
	case opSwap:
		a := f.Operands.Pop()
		b := f.Operands.Pop()
		f.Operands.Push(a)
		f.Operands.Push(b)
		return false, nil

	case opNewarray, opAnewarray, opArraylength,
		opIaload, opLaload, opFaload, opDaload, opAaload, opBaload, opCaload, opSaload,
		opIastore, opLastore, opFastore, opDastore, opAastore, opBastore, opCastore, opSastore:
		return false, v.execArray(f, opcode)

	case opIadd, opLadd, opFadd, opDadd,
		opIsub, opLsub, opFsub, opDsub,
		opImul, opLmul, opFmul, opDmul,
		opIdiv, opLdiv, opFdiv, opDdiv,
		opIrem, opLrem, opFrem, opDrem,
		opIneg, opLneg, opFneg, opDneg,
		opIshl, opLshl, opIshr, opLshr, opIushr, opLushr,
		opIand, opLand, opIor, opLor, opIxor, opLxor:
		return false, v.execArith(f, opcode)

	case opI2l, opI2f, opI2d, opL2i, opL2f, opL2d, opF2i, opF2l, opF2d, opD2i, opD2l, opD2f,
		opI2b, opI2c, opI2s:
		return false, v.execConvert(f, opcode)

	case opLcmp, opFcmpl, opFcmpg, opDcmpl, opDcmpg:
		return false, v.execCompare(f, opcode)

	case opIfeq, opIfne, opIflt, opIfge, opIfgt, opIfle,
		opIfIcmpeq, opIfIcmpne, opIfIcmplt, opIfIcmpge, opIfIcmpgt, opIfIcmple,
		opIfAcmpeq, opIfAcmpne, opGoto, opGotoW, opJsr, opRet,
		opTableswitch, opLookupswitch:
		return false, v.execControl(f, opcode)

	case opIreturn, opLreturn, opFreturn, opDreturn, opAreturn, opReturn:
		return true, v.execReturn(f, opcode)

	case opGetstatic, opPutstatic, opGetfield, opPutfield,
		opNew, opInvokestatic, opInvokespecial, opInvokevirtual:
		return false, v.execObject(f, opcode)

	case opWide:
		return false, v.execWide(f)

	default:
		return false, status.New(status.JVM_STATUS_UNKNOWN_INSTRUCTION, hexByte(opcode))
	}
}

// execWide implements the wide instruction (spec.md §4.10 misc): the
// following opcode is re-fetched and its local-variable index read as a
// u2 instead of a u1, with iinc additionally taking a wide (s2) constant.
func (v *VM) execWide(f *Frame) error {
	opcode := f.u1()
	switch opcode {
	case opIload:
		f.Operands.PushInt(f.loadInt(int(f.u2())))
	case opLload:
		f.Operands.PushLong(f.loadLong(int(f.u2())))
	case opFload:
		f.Operands.PushFloat(f.loadFloat(int(f.u2())))
	case opDload:
		f.Operands.PushDouble(f.loadDouble(int(f.u2())))
	case opAload:
		f.Operands.PushRef(f.loadRef(int(f.u2())))
	case opIstore:
		f.storeInt(int(f.u2()), f.Operands.PopInt())
	case opLstore:
		f.storeLong(int(f.u2()), f.Operands.PopLong())
	case opFstore:
		f.storeFloat(int(f.u2()), f.Operands.PopFloat())
	case opDstore:
		f.storeDouble(int(f.u2()), f.Operands.PopDouble())
	case opAstore:
		f.Locals[int(f.u2())] = f.Operands.Pop()
	case opRet:
		idx := int(f.u2())
		f.PC = int(f.loadReturnAddr(idx))
	case opIinc:
		idx := int(f.u2())
		delta := int32(f.s2())
		f.storeInt(idx, f.loadInt(idx)+delta)
	default:
		return status.New(status.JVM_STATUS_UNKNOWN_INSTRUCTION, "wide "+hexByte(opcode))
	}
	return nil
}

// execLdc implements ldc/ldc_w (spec.md §4.10): push an Integer, Float,
// String or resolved Class reference from the constant pool.
func (v *VM) execLdc(f *Frame, idx int) error {
	cp := f.Class.CP
	tag, ok := cp.TagAt(idx)
	if !ok {
		return status.New(status.INVALID_CONSTANT_POOL_INDEX, "ldc: index out of range")
	}
	switch tag {
	case classfile.TagInteger:
		iv, err := cp.Integer(idx)
		if err != nil {
			return err
		}
		f.Operands.PushInt(iv)
	case classfile.TagFloat:
		fv, err := cp.ConstantFloat32(idx)
		if err != nil {
			return err
		}
		f.Operands.PushFloat(fv)
	case classfile.TagString:
		b, err := cp.StringBytes(idx)
		if err != nil {
			return err
		}
		f.Operands.PushRef(v.Heap.NewString(b))
	case classfile.TagClass:
		name, err := cp.ClassName(idx)
		if err != nil {
			return err
		}
		if _, err := v.resolveClass(name); err != nil {
			return err
		}
		f.Operands.PushRef(&object.Native{ClassName: name})
	default:
		return status.New(status.INVALID_CONSTANT_POOL_TAG, "ldc: unsupported pool entry")
	}
	return nil
}

// execLdc2 implements ldc2_w: push a Long or Double constant.
func (v *VM) execLdc2(f *Frame, idx int) error {
	cp := f.Class.CP
	tag, ok := cp.TagAt(idx)
	if !ok {
		return status.New(status.INVALID_CONSTANT_POOL_INDEX, "ldc2_w: index out of range")
	}
	switch tag {
	case classfile.TagLong:
		lv, err := cp.Long(idx)
		if err != nil {
			return err
		}
		f.Operands.PushLong(lv)
	case classfile.TagDouble:
		dv, err := cp.ConstantFloat64(idx)
		if err != nil {
			return err
		}
		f.Operands.PushDouble(dv)
	default:
		return status.New(status.INVALID_CONSTANT_POOL_TAG, "ldc2_w: unsupported pool entry")
	}
	return nil
}
