package vm

import (
	"github.com/jvmlite/jvmlite/internal/classfile"
	"github.com/jvmlite/jvmlite/internal/status"
	"github.com/jvmlite/jvmlite/internal/trace"
)

// runMethod implements spec.md §4.10's runMethod: capture the caller
// frame, build and push a new frame, dispatch natives, copy arguments
// from the caller's operand stack into locals, run the fetch-decode loop,
// and on normal return copy ReturnCount values back onto the caller.
func (v *VM) runMethod(cf *classfile.ClassFile, m classfile.MethodInfo, argCount int) error {
	caller := v.topFrame()

	if m.IsNative() {
		return v.invokeNative(cf, m, caller, argCount)
	}

	f := newFrame(cf, m)

	// Pop argCount operand slots from the caller (in reverse order) into
	// the new frame's locals starting at slot 0, preserving left-to-right
	// order: arg0 at slot 0, arg1 at slot 1 (category-2 args count as two
	// slots), `this` at slot 0 for instance methods. This is the
	// "canonical JVM behavior" spec.md's Design Notes §9 Open Question
	// resolves in favor of, over either of the two divergent source files.
	if caller != nil && argCount > 0 {
		popped := make([]Slot, argCount)
		for i := argCount - 1; i >= 0; i-- {
			popped[i] = caller.Operands.Pop()
		}
		copy(f.Locals, popped)
	}

	v.pushFrame(f)

	trace.Trace("runMethod: " + cf.ThisClassName() + "." + cf.MethodName(m) + cf.MethodDescriptor(m))

	err := v.runLoop(f)

	v.popFrame()

	if err != nil {
		return err
	}

	if f.ReturnCount > 0 && caller != nil {
		buf := make([]Slot, f.ReturnCount)
		for i := f.ReturnCount - 1; i >= 0; i-- {
			buf[i] = f.Operands.Pop()
		}
		for _, s := range buf {
			caller.Operands.Push(s)
		}
	}
	return nil
}

// runLoop is the fetch-decode-execute cycle of spec.md §4.10 step 5:
// fetch opcode = code[pc++], dispatch to a handler, and on handler
// failure abort upward. A handler sets f.ReturnCount >= 0 and returns
// done=true to signal a *return instruction ran.
func (v *VM) runLoop(f *Frame) error {
	for {
		if f.PC >= len(f.Code) {
			return status.New(status.JVM_STATUS_UNKNOWN_INSTRUCTION, "fell off the end of the method body")
		}
		opcode := f.Code[f.PC]
		f.PC++

		done, err := v.execute(f, opcode)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// --- bytecode operand fetch helpers, all consuming from f.Code at f.PC ---

func (f *Frame) u1() byte {
	b := f.Code[f.PC]
	f.PC++
	return b
}

func (f *Frame) s1() int8 {
	return int8(f.u1())
}

func (f *Frame) u2() uint16 {
	hi := f.u1()
	lo := f.u1()
	return uint16(hi)<<8 | uint16(lo)
}

func (f *Frame) s2() int16 {
	return int16(f.u2())
}

func (f *Frame) u4() uint32 {
	hi := f.u2()
	lo := f.u2()
	return uint32(hi)<<16 | uint32(lo)
}

func (f *Frame) s4() int32 {
	return int32(f.u4())
}

func unknownOpcode(opcode byte) error {
	return status.New(status.JVM_STATUS_UNKNOWN_INSTRUCTION, hexByte(opcode))
}

func hexByte(b byte) string {
	const hex = "0123456789ABCDEF"
	return "0x" + string([]byte{hex[b>>4], hex[b&0xF]})
}
