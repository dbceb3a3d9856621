// Package vm implements the runtime model and interpreter of spec.md
// §4.8-4.10: the frame/operand stack, the resolver, and the bytecode
// interpreter. These three are mutually recursive -- resolving a class
// runs its <clinit>, which is interpreted code that can itself trigger
// further resolution -- so, in the same way artipop-jacobin's jvm
// package bundles frames, initialization and the run loop together, they
// live in one package here instead of being split across import-cycle
// boundaries.
package vm

import (
	"math"

	"github.com/jvmlite/jvmlite/internal/classfile"
	"github.com/jvmlite/jvmlite/internal/object"
)

// Tag identifies the type of value held by one operand-stack or local
// variable slot. Category-2 values (long, double) span two adjacent
// slots tagged Cat2Hi then Cat2Lo, the convention spec.md's Design Notes
// §9 calls out to keep rather than widen every slot to 64 bits.
type Tag int

const (
	TInt Tag = iota
	TFloat
	TRef
	TReturnAddr
	TCat2Hi
	TCat2Lo
)

// Slot is one 32-bit-wide operand stack or local variable entry. Refs are
// carried out-of-band in the Ref field -- never reinterpreted from I32 --
// which is how this port honors Design Notes §9's "references as handles,
// never as integers" even though the data layout otherwise matches the
// spec's 32-bit slot convention.
type Slot struct {
	I32 int32
	Ref object.Ref
	Tag Tag
}

// OperandStack is the push-down stack of typed slots described in
// spec.md §4.8.
type OperandStack struct {
	slots []Slot
}

func newOperandStack(capacity int) *OperandStack {
	return &OperandStack{slots: make([]Slot, 0, capacity)}
}

func (s *OperandStack) Push(v Slot) {
	s.slots = append(s.slots, v)
}

func (s *OperandStack) Pop() Slot {
	n := len(s.slots) - 1
	v := s.slots[n]
	s.slots = s.slots[:n]
	return v
}

func (s *OperandStack) Peek() Slot {
	return s.slots[len(s.slots)-1]
}

func (s *OperandStack) Len() int {
	return len(s.slots)
}

func (s *OperandStack) PushInt(v int32)      { s.Push(Slot{I32: v, Tag: TInt}) }
func (s *OperandStack) PushFloat(v float32)  { s.Push(Slot{I32: int32FromFloat(v), Tag: TFloat}) }
func (s *OperandStack) PushRef(r object.Ref) { s.Push(Slot{Ref: r, Tag: TRef}) }

func (s *OperandStack) PopInt() int32     { return s.Pop().I32 }
func (s *OperandStack) PopFloat() float32 { return floatFromInt32(s.Pop().I32) }
func (s *OperandStack) PopRef() object.Ref { return s.Pop().Ref }

// PushLong/PushDouble push the high half first, then the low half, so the
// low half ends up on top -- the HI-then-LO convention of spec.md §4.8.
func (s *OperandStack) PushLong(v int64) {
	hi := int32(v >> 32)
	lo := int32(v)
	s.Push(Slot{I32: hi, Tag: TCat2Hi})
	s.Push(Slot{I32: lo, Tag: TCat2Lo})
}

func (s *OperandStack) PopLong() int64 {
	lo := s.Pop().I32
	hi := s.Pop().I32
	return int64(hi)<<32 | int64(uint32(lo))
}

func (s *OperandStack) PushDouble(v float64) {
	s.PushLong(int64FromFloat64(v))
}

func (s *OperandStack) PopDouble() float64 {
	return float64FromInt64(s.PopLong())
}

// Frame is the activation record of spec.md §3/§4.8: one per method
// invocation, owning local variables and an operand stack.
type Frame struct {
	Class    *classfile.ClassFile
	Method   classfile.MethodInfo
	Code     []byte
	PC       int
	Locals   []Slot
	Operands *OperandStack

	ReturnCount int // set by a *return handler before the frame exits
}

// newFrame locates the method's Code attribute, captures a max_locals
// sized local-variable slab and an empty operand stack, per spec.md
// §4.8.
func newFrame(cf *classfile.ClassFile, m classfile.MethodInfo) *Frame {
	code, _ := classfile.FindCode(m.Attributes)
	return &Frame{
		Class:    cf,
		Method:   m,
		Code:     code.Code,
		PC:       0,
		Locals:   make([]Slot, code.MaxLocals),
		Operands: newOperandStack(code.MaxStack + 2),
	}
}

// Local variable accessors. Category-2 locals (long, double) occupy two
// consecutive slots, index n holding the high half and n+1 the low half,
// the same convention newFrame's sizing and PushLong/PopLong use for the
// operand stack.

func (f *Frame) loadInt(idx int) int32       { return f.Locals[idx].I32 }
func (f *Frame) loadFloat(idx int) float32   { return floatFromInt32(f.Locals[idx].I32) }
func (f *Frame) loadRef(idx int) object.Ref  { return f.Locals[idx].Ref }
func (f *Frame) loadReturnAddr(idx int) int32 { return f.Locals[idx].I32 }

func (f *Frame) storeInt(idx int, v int32)      { f.Locals[idx] = Slot{I32: v, Tag: TInt} }
func (f *Frame) storeFloat(idx int, v float32)  { f.Locals[idx] = Slot{I32: int32FromFloat(v), Tag: TFloat} }
func (f *Frame) storeRef(idx int, r object.Ref) { f.Locals[idx] = Slot{Ref: r, Tag: TRef} }
func (f *Frame) storeReturnAddr(idx int, v int32) {
	f.Locals[idx] = Slot{I32: v, Tag: TReturnAddr}
}

func (f *Frame) loadLong(idx int) int64 {
	hi := f.Locals[idx].I32
	lo := f.Locals[idx+1].I32
	return int64(hi)<<32 | int64(uint32(lo))
}

func (f *Frame) storeLong(idx int, v int64) {
	f.Locals[idx] = Slot{I32: int32(v >> 32), Tag: TCat2Hi}
	f.Locals[idx+1] = Slot{I32: int32(v), Tag: TCat2Lo}
}

func (f *Frame) loadDouble(idx int) float64 {
	return float64FromInt64(f.loadLong(idx))
}

func (f *Frame) storeDouble(idx int, v float64) {
	f.storeLong(idx, int64FromFloat64(v))
}

func int32FromFloat(f float32) int32 {
	return int32(math.Float32bits(f))
}

func floatFromInt32(i int32) float32 {
	return math.Float32frombits(uint32(i))
}

func int64FromFloat64(f float64) int64 {
	return int64(math.Float64bits(f))
}

func float64FromInt64(i int64) float64 {
	return math.Float64frombits(uint64(i))
}
