package vm

import (
	"encoding/binary"

	"github.com/jvmlite/jvmlite/internal/classfile"
	"github.com/jvmlite/jvmlite/internal/object"
	"github.com/jvmlite/jvmlite/internal/status"
)

// execArray implements newarray, anewarray, arraylength and the eight
// *aload/*astore pairs of spec.md §4.10.
func (v *VM) execArray(f *Frame, opcode byte) error {
	s := f.Operands
	switch opcode {
	case opNewarray:
		atype := f.u1()
		prim, ok := object.AtypeFromCode(atype)
		if !ok {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "newarray: unknown atype")
		}
		count := s.PopInt()
		if count < 0 {
			return status.New(status.MEMORY_ALLOCATION_FAILED, "negative array size")
		}
		s.PushRef(v.Heap.NewArray(int(count), prim))
		return nil

	case opAnewarray:
		idx := int(f.u2())
		className, err := f.Class.CP.ClassName(idx)
		if err != nil {
			return err
		}
		if _, err := v.resolveClass(className); err != nil {
			return err
		}
		count := s.PopInt()
		if count < 0 {
			return status.New(status.MEMORY_ALLOCATION_FAILED, "negative array size")
		}
		s.PushRef(v.Heap.NewObjectArray(int(count), className))
		return nil

	case opArraylength:
		ref := s.PopRef()
		switch a := ref.(type) {
		case *object.Array:
			s.PushInt(int32(a.Length))
		case *object.ObjectArray:
			s.PushInt(int32(len(a.Elements)))
		case nil:
			s.PushInt(0)
		default:
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "arraylength: not an array")
		}
		return nil

	case opIaload, opLaload, opFaload, opDaload, opBaload, opCaload, opSaload:
		index := s.PopInt()
		ref := s.PopRef()
		a, ok := ref.(*object.Array)
		if !ok {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "*aload: not a primitive array")
		}
		if index < 0 || int(index) >= a.Length {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "array index out of bounds")
		}
		loadArrayElement(s, a, int(index))
		return nil

	case opAaload:
		index := s.PopInt()
		ref := s.PopRef()
		oa, ok := ref.(*object.ObjectArray)
		if !ok {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "aaload: not an object array")
		}
		if index < 0 || int(index) >= len(oa.Elements) {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "array index out of bounds")
		}
		s.PushRef(oa.Elements[index])
		return nil

	case opIastore, opLastore, opFastore, opDastore, opBastore, opCastore, opSastore:
		return storeArrayElement(s, opcode)

	case opAastore:
		value := s.PopRef()
		index := s.PopInt()
		ref := s.PopRef()
		oa, ok := ref.(*object.ObjectArray)
		if !ok {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "aastore: not an object array")
		}
		if index < 0 || int(index) >= len(oa.Elements) {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "array index out of bounds")
		}
		oa.Elements[index] = value
		return nil
	}
	return nil
}

func loadArrayElement(s *OperandStack, a *object.Array, index int) {
	switch a.ElementType {
	case object.Boolean, object.Byte:
		s.PushInt(int32(int8(a.Data[index])))
	case object.Char:
		s.PushInt(int32(binary.BigEndian.Uint16(a.Data[index*2:])))
	case object.Short:
		s.PushInt(int32(int16(binary.BigEndian.Uint16(a.Data[index*2:]))))
	case object.Int:
		s.PushInt(int32(binary.BigEndian.Uint32(a.Data[index*4:])))
	case object.Float:
		s.PushFloat(floatFromInt32(int32(binary.BigEndian.Uint32(a.Data[index*4:]))))
	case object.Long:
		s.PushLong(int64(binary.BigEndian.Uint64(a.Data[index*8:])))
	case object.Double:
		s.PushDouble(float64FromInt64(int64(binary.BigEndian.Uint64(a.Data[index*8:]))))
	}
}

func storeArrayElement(s *OperandStack, opcode byte) error {
	switch opcode {
	case opIastore, opBastore, opCastore, opSastore:
		v := s.PopInt()
		index := s.PopInt()
		ref := s.PopRef()
		a, ok := ref.(*object.Array)
		if !ok {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "*astore: not a primitive array")
		}
		if index < 0 || int(index) >= a.Length {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "array index out of bounds")
		}
		switch opcode {
		case opIastore:
			binary.BigEndian.PutUint32(a.Data[index*4:], uint32(v))
		case opBastore:
			a.Data[index] = byte(v)
		case opCastore, opSastore:
			binary.BigEndian.PutUint16(a.Data[index*2:], uint16(v))
		}
		return nil

	case opLastore:
		v := s.PopLong()
		index := s.PopInt()
		ref := s.PopRef()
		a, ok := ref.(*object.Array)
		if !ok {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "lastore: not a primitive array")
		}
		if index < 0 || int(index) >= a.Length {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "array index out of bounds")
		}
		binary.BigEndian.PutUint64(a.Data[index*8:], uint64(v))
		return nil

	case opFastore:
		v := s.PopFloat()
		index := s.PopInt()
		ref := s.PopRef()
		a, ok := ref.(*object.Array)
		if !ok {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "fastore: not a primitive array")
		}
		if index < 0 || int(index) >= a.Length {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "array index out of bounds")
		}
		binary.BigEndian.PutUint32(a.Data[index*4:], uint32(int32FromFloat(v)))
		return nil

	case opDastore:
		v := s.PopDouble()
		index := s.PopInt()
		ref := s.PopRef()
		a, ok := ref.(*object.Array)
		if !ok {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "dastore: not a primitive array")
		}
		if index < 0 || int(index) >= a.Length {
			return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "array index out of bounds")
		}
		binary.BigEndian.PutUint64(a.Data[index*8:], uint64(int64FromFloat64(v)))
		return nil
	}
	return nil
}

// execObject implements getstatic, putstatic, getfield, putfield, new and
// the three invoke* instructions of spec.md §4.10.
func (v *VM) execObject(f *Frame, opcode byte) error {
	switch opcode {
	case opGetstatic:
		return v.execGetstatic(f)
	case opPutstatic:
		return v.execPutstatic(f)
	case opGetfield:
		return v.execGetfield(f)
	case opPutfield:
		return v.execPutfield(f)
	case opNew:
		return v.execNew(f)
	case opInvokestatic:
		return v.execInvoke(f, true)
	case opInvokespecial, opInvokevirtual:
		return v.execInvoke(f, false)
	}
	return nil
}

func (v *VM) fieldrefParts(f *Frame, idx int) (className, name, desc string, err error) {
	ref, err := f.Class.CP.Fieldref(idx)
	if err != nil {
		return "", "", "", err
	}
	className, err = f.Class.CP.ClassName(int(ref.ClassIndex))
	if err != nil {
		return "", "", "", err
	}
	name, desc, err = f.Class.CP.NameAndTypeStrings(int(ref.NameAndTypeIndex))
	return className, name, desc, err
}

func (v *VM) execGetstatic(f *Frame) error {
	idx := int(f.u2())
	className, name, desc, err := v.fieldrefParts(f, idx)
	if err != nil {
		return err
	}
	if v.Config.Simulate && className == "java/lang/System" && name == "out" {
		f.Operands.PushRef(&object.Native{ClassName: "java/io/PrintStream"})
		return nil
	}
	k, err := v.resolveClass(className)
	if err != nil {
		return err
	}
	owner, err := v.resolveFieldOwner(k, name)
	if err != nil {
		return err
	}
	slot, _, _ := owner.File.StaticSlot(name)
	readFieldSlot(f.Operands, owner.StaticFields, slot, desc)
	return nil
}

func (v *VM) execPutstatic(f *Frame) error {
	idx := int(f.u2())
	className, name, desc, err := v.fieldrefParts(f, idx)
	if err != nil {
		return err
	}
	k, err := v.resolveClass(className)
	if err != nil {
		return err
	}
	owner, err := v.resolveFieldOwner(k, name)
	if err != nil {
		return err
	}
	slot, _, _ := owner.File.StaticSlot(name)
	writeFieldSlot(f.Operands, owner.StaticFields, slot, desc)
	return nil
}

func (v *VM) execGetfield(f *Frame) error {
	idx := int(f.u2())
	_, name, desc, err := v.fieldrefParts(f, idx)
	if err != nil {
		return err
	}
	ref := f.Operands.PopRef()
	ci, ok := ref.(*object.ClassInstance)
	if !ok {
		return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "getfield: not an object reference")
	}
	owner, err := v.resolveFieldOwner(ci.Class, name)
	if err != nil {
		return err
	}
	slot, _, _ := owner.File.InstanceSlot(name)
	readFieldSlot(f.Operands, ci.Fields, slot, desc)
	return nil
}

func (v *VM) execPutfield(f *Frame) error {
	idx := int(f.u2())
	_, name, desc, err := v.fieldrefParts(f, idx)
	if err != nil {
		return err
	}
	// Value is above the object reference on the stack; pop in that
	// order once the descriptor tells us the value's slot width.
	var value Slot
	var valueLong int64
	wide := desc == "J" || desc == "D"
	if wide {
		valueLong = f.Operands.PopLong()
	} else {
		value = f.Operands.Pop()
	}
	ref := f.Operands.PopRef()
	ci, ok := ref.(*object.ClassInstance)
	if !ok {
		return status.New(status.JVM_STATUS_BAD_DESCRIPTOR, "putfield: not an object reference")
	}
	owner, err := v.resolveFieldOwner(ci.Class, name)
	if err != nil {
		return err
	}
	slot, _, _ := owner.File.InstanceSlot(name)
	if wide {
		ci.Fields[slot] = object.FieldSlot{I32: int32(valueLong >> 32)}
		ci.Fields[slot+1] = object.FieldSlot{I32: int32(valueLong)}
		return nil
	}
	ci.Fields[slot] = object.FieldSlot{I32: value.I32, Ref: value.Ref}
	return nil
}

// readFieldSlot pushes the value stored at slots[idx] (widened per desc)
// onto the operand stack; writeFieldSlot is its inverse.
func readFieldSlot(s *OperandStack, slots []object.FieldSlot, idx int, desc string) {
	switch desc[0] {
	case 'J':
		hi, lo := slots[idx].I32, slots[idx+1].I32
		s.PushLong(int64(hi)<<32 | int64(uint32(lo)))
	case 'D':
		hi, lo := slots[idx].I32, slots[idx+1].I32
		s.PushDouble(float64FromInt64(int64(hi)<<32 | int64(uint32(lo))))
	case 'F':
		s.PushFloat(floatFromInt32(slots[idx].I32))
	case 'L', '[':
		s.PushRef(slots[idx].Ref)
	default:
		s.PushInt(slots[idx].I32)
	}
}

func writeFieldSlot(s *OperandStack, slots []object.FieldSlot, idx int, desc string) {
	switch desc[0] {
	case 'J':
		v := s.PopLong()
		slots[idx] = object.FieldSlot{I32: int32(v >> 32)}
		slots[idx+1] = object.FieldSlot{I32: int32(v)}
	case 'D':
		v := int64FromFloat64(s.PopDouble())
		slots[idx] = object.FieldSlot{I32: int32(v >> 32)}
		slots[idx+1] = object.FieldSlot{I32: int32(v)}
	case 'F':
		slots[idx] = object.FieldSlot{I32: int32FromFloat(s.PopFloat())}
	case 'L', '[':
		slots[idx] = object.FieldSlot{Ref: s.PopRef()}
	default:
		slots[idx] = object.FieldSlot{I32: s.PopInt()}
	}
}

func (v *VM) execNew(f *Frame) error {
	idx := int(f.u2())
	className, err := f.Class.CP.ClassName(idx)
	if err != nil {
		return err
	}
	k, err := v.resolveClass(className)
	if err != nil {
		return err
	}
	f.Operands.PushRef(v.Heap.NewClassInstance(k))
	return nil
}

// execInvoke implements invokestatic (isStatic=true) and
// invokespecial/invokevirtual (isStatic=false; this interpreter performs
// no dynamic vtable dispatch, so both resolve to the same
// declaration-order lookup spec.md's Non-goals scope this VM to).
func (v *VM) execInvoke(f *Frame, isStatic bool) error {
	idx := int(f.u2())
	ref, err := f.Class.CP.Methodref(idx)
	if err != nil {
		return err
	}
	className, err := f.Class.CP.ClassName(int(ref.ClassIndex))
	if err != nil {
		return err
	}
	name, desc, err := f.Class.CP.NameAndTypeStrings(int(ref.NameAndTypeIndex))
	if err != nil {
		return err
	}

	argSlots := classfile.MethodDescriptorParameterSlots(desc)
	if !isStatic {
		argSlots++
	}

	if fn, ok := lookupNative(className, name, desc); ok {
		args := make([]Slot, argSlots)
		for i := argSlots - 1; i >= 0; i-- {
			args[i] = f.Operands.Pop()
		}
		results, err := fn(v, args)
		if err != nil {
			return err
		}
		for _, r := range results {
			f.Operands.Push(r)
		}
		return nil
	}

	if err := v.resolveDescriptorClasses(desc); err != nil {
		return err
	}
	k, err := v.resolveClass(className)
	if err != nil {
		return err
	}
	owner, m, err := v.resolveMethodOwner(k, name, desc)
	if err != nil {
		return err
	}
	return v.runMethod(owner.File, m, argSlots)
}
