package vm

import (
	"math"

	"github.com/jvmlite/jvmlite/internal/status"
)

// execArith implements the add/sub/mul/div/rem/neg/shift/bitwise family
// of spec.md §4.10 for all four numeric categories.
func (v *VM) execArith(f *Frame, opcode byte) error {
	s := f.Operands
	switch opcode {
	case opIadd:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(a + b)
	case opLadd:
		b, a := s.PopLong(), s.PopLong()
		s.PushLong(a + b)
	case opFadd:
		b, a := s.PopFloat(), s.PopFloat()
		s.PushFloat(a + b)
	case opDadd:
		b, a := s.PopDouble(), s.PopDouble()
		s.PushDouble(a + b)

	case opIsub:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(a - b)
	case opLsub:
		b, a := s.PopLong(), s.PopLong()
		s.PushLong(a - b)
	case opFsub:
		b, a := s.PopFloat(), s.PopFloat()
		s.PushFloat(a - b)
	case opDsub:
		b, a := s.PopDouble(), s.PopDouble()
		s.PushDouble(a - b)

	case opImul:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(a * b)
	case opLmul:
		b, a := s.PopLong(), s.PopLong()
		s.PushLong(a * b)
	case opFmul:
		b, a := s.PopFloat(), s.PopFloat()
		s.PushFloat(a * b)
	case opDmul:
		b, a := s.PopDouble(), s.PopDouble()
		s.PushDouble(a * b)

	case opIdiv:
		b, a := s.PopInt(), s.PopInt()
		if b == 0 {
			return status.New(status.JVM_STATUS_UNKNOWN_INSTRUCTION, "division by zero")
		}
		s.PushInt(a / b)
	case opLdiv:
		b, a := s.PopLong(), s.PopLong()
		if b == 0 {
			return status.New(status.JVM_STATUS_UNKNOWN_INSTRUCTION, "division by zero")
		}
		s.PushLong(a / b)
	case opFdiv:
		b, a := s.PopFloat(), s.PopFloat()
		s.PushFloat(a / b)
	case opDdiv:
		b, a := s.PopDouble(), s.PopDouble()
		s.PushDouble(a / b)

	case opIrem:
		b, a := s.PopInt(), s.PopInt()
		if b == 0 {
			return status.New(status.JVM_STATUS_UNKNOWN_INSTRUCTION, "division by zero")
		}
		s.PushInt(a % b)
	case opLrem:
		b, a := s.PopLong(), s.PopLong()
		if b == 0 {
			return status.New(status.JVM_STATUS_UNKNOWN_INSTRUCTION, "division by zero")
		}
		s.PushLong(a % b)
	case opFrem:
		b, a := s.PopFloat(), s.PopFloat()
		s.PushFloat(float32(math.Mod(float64(a), float64(b))))
	case opDrem:
		b, a := s.PopDouble(), s.PopDouble()
		s.PushDouble(math.Mod(a, b))

	case opIneg:
		s.PushInt(-s.PopInt())
	case opLneg:
		s.PushLong(-s.PopLong())
	case opFneg:
		s.PushFloat(-s.PopFloat())
	case opDneg:
		s.PushDouble(-s.PopDouble())

	case opIshl:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(a << (uint32(b) & 0x1F))
	case opLshl:
		b, a := s.PopInt(), s.PopLong()
		s.PushLong(a << (uint32(b) & 0x3F))
	case opIshr:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(a >> (uint32(b) & 0x1F))
	case opLshr:
		b, a := s.PopInt(), s.PopLong()
		s.PushLong(a >> (uint32(b) & 0x3F))
	case opIushr:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(int32(uint32(a) >> (uint32(b) & 0x1F)))
	case opLushr:
		b, a := s.PopInt(), s.PopLong()
		s.PushLong(int64(uint64(a) >> (uint32(b) & 0x3F)))

	case opIand:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(a & b)
	case opLand:
		b, a := s.PopLong(), s.PopLong()
		s.PushLong(a & b)
	case opIor:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(a | b)
	case opLor:
		b, a := s.PopLong(), s.PopLong()
		s.PushLong(a | b)
	case opIxor:
		b, a := s.PopInt(), s.PopInt()
		s.PushInt(a ^ b)
	case opLxor:
		b, a := s.PopLong(), s.PopLong()
		s.PushLong(a ^ b)
	}
	return nil
}

// execConvert implements the widening/narrowing numeric conversions.
func (v *VM) execConvert(f *Frame, opcode byte) error {
	s := f.Operands
	switch opcode {
	case opI2l:
		s.PushLong(int64(s.PopInt()))
	case opI2f:
		s.PushFloat(float32(s.PopInt()))
	case opI2d:
		s.PushDouble(float64(s.PopInt()))
	case opL2i:
		s.PushInt(int32(s.PopLong()))
	case opL2f:
		s.PushFloat(float32(s.PopLong()))
	case opL2d:
		s.PushDouble(float64(s.PopLong()))
	case opF2i:
		s.PushInt(int32Clamp(float64(s.PopFloat())))
	case opF2l:
		s.PushLong(int64Clamp(float64(s.PopFloat())))
	case opF2d:
		s.PushDouble(float64(s.PopFloat()))
	case opD2i:
		s.PushInt(int32Clamp(s.PopDouble()))
	case opD2l:
		s.PushLong(int64Clamp(s.PopDouble()))
	case opD2f:
		s.PushFloat(float32(s.PopDouble()))
	case opI2b:
		s.PushInt(int32(int8(s.PopInt())))
	case opI2c:
		s.PushInt(int32(uint16(s.PopInt())))
	case opI2s:
		s.PushInt(int32(int16(s.PopInt())))
	}
	return nil
}

// int32Clamp and int64Clamp implement the JVM's float/double-to-integer
// conversion rule: NaN converts to zero, and out-of-range values saturate
// to the target type's min/max instead of wrapping (JVM §2.8.3).
func int32Clamp(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(f)
	}
}

func int64Clamp(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}

// execCompare implements lcmp/fcmpl/fcmpg/dcmpl/dcmpg: each leaves -1, 0
// or 1 on the stack, with the g/l suffix on float/double comparisons
// picking whether a NaN operand yields 1 or -1 (JVM §6.5).
func (v *VM) execCompare(f *Frame, opcode byte) error {
	s := f.Operands
	switch opcode {
	case opLcmp:
		b, a := s.PopLong(), s.PopLong()
		s.PushInt(cmp3(a, b))
	case opFcmpl, opFcmpg:
		b, a := s.PopFloat(), s.PopFloat()
		if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
			if opcode == opFcmpl {
				s.PushInt(-1)
			} else {
				s.PushInt(1)
			}
			return nil
		}
		s.PushInt(cmp3(float64(a), float64(b)))
	case opDcmpl, opDcmpg:
		b, a := s.PopDouble(), s.PopDouble()
		if math.IsNaN(a) || math.IsNaN(b) {
			if opcode == opDcmpl {
				s.PushInt(-1)
			} else {
				s.PushInt(1)
			}
			return nil
		}
		s.PushInt(cmp3(a, b))
	}
	return nil
}

type ordered interface {
	~int64 | ~float64
}

func cmp3[T ordered](a, b T) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
