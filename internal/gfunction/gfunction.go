// Package gfunction supplies the hard-coded standard-library behavior
// spec.md §1 Non-goals carves out of real class loading: a slice of
// java/lang/System.out.println/print and the bare minimum of
// java/lang/Object and java/lang/String construction needed for ordinary
// programs to run. Every function here registers itself into
// internal/vm's native table from init(), so vm never imports this
// package -- only the reverse, the same registration-table shape
// artipop-jacobin's gfunction package uses to avoid a jvm<->gfunction
// import cycle.
package gfunction

import (
	"fmt"
	"math"

	"github.com/jvmlite/jvmlite/internal/object"
	"github.com/jvmlite/jvmlite/internal/vm"
)

func init() {
	vm.RegisterNative("java/lang/Object", "<init>", "()V", noop)
	vm.RegisterNative("java/lang/String", "<init>", "()V", noop)

	vm.RegisterNative("java/io/PrintStream", "println", "()V", println0)
	vm.RegisterNative("java/io/PrintStream", "println", "(I)V", printlnInt)
	vm.RegisterNative("java/io/PrintStream", "println", "(J)V", printlnLong)
	vm.RegisterNative("java/io/PrintStream", "println", "(F)V", printlnFloat)
	vm.RegisterNative("java/io/PrintStream", "println", "(D)V", printlnDouble)
	vm.RegisterNative("java/io/PrintStream", "println", "(Z)V", printlnBool)
	vm.RegisterNative("java/io/PrintStream", "println", "(C)V", printlnChar)
	vm.RegisterNative("java/io/PrintStream", "println", "(Ljava/lang/String;)V", printlnString)

	vm.RegisterNative("java/io/PrintStream", "print", "(I)V", printInt)
	vm.RegisterNative("java/io/PrintStream", "print", "(J)V", printLong)
	vm.RegisterNative("java/io/PrintStream", "print", "(F)V", printFloat)
	vm.RegisterNative("java/io/PrintStream", "print", "(D)V", printDouble)
	vm.RegisterNative("java/io/PrintStream", "print", "(Z)V", printBool)
	vm.RegisterNative("java/io/PrintStream", "print", "(C)V", printChar)
	vm.RegisterNative("java/io/PrintStream", "print", "(Ljava/lang/String;)V", printString)
}

// noop backs constructors this VM does not model any field-initialization
// side effect for: the receiver is already allocated by `new`, so
// <init>()V has nothing left to do.
func noop(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	return nil, nil
}

func println0(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprintln(v.Config.Stdout)
	return nil, nil
}

func printlnInt(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprintln(v.Config.Stdout, args[1].I32)
	return nil, nil
}

func printInt(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprint(v.Config.Stdout, args[1].I32)
	return nil, nil
}

// printlnLong and printLong take the receiver in args[0] and the
// category-2 argument split across args[1] (high) and args[2] (low), the
// same HI-then-LO convention runMethod's argument copy preserves.
func printlnLong(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprintln(v.Config.Stdout, longFromArgs(args))
	return nil, nil
}

func printLong(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprint(v.Config.Stdout, longFromArgs(args))
	return nil, nil
}

func longFromArgs(args []vm.Slot) int64 {
	hi, lo := args[1].I32, args[2].I32
	return int64(hi)<<32 | int64(uint32(lo))
}

func printlnFloat(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprintln(v.Config.Stdout, floatFromSlot(args[1]))
	return nil, nil
}

func printFloat(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprint(v.Config.Stdout, floatFromSlot(args[1]))
	return nil, nil
}

func printlnDouble(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprintln(v.Config.Stdout, doubleFromArgs(args[1], args[2]))
	return nil, nil
}

func printDouble(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprint(v.Config.Stdout, doubleFromArgs(args[1], args[2]))
	return nil, nil
}

func floatFromSlot(s vm.Slot) float32 {
	return math.Float32frombits(uint32(s.I32))
}

func doubleFromArgs(hi, lo vm.Slot) float64 {
	bits := uint64(uint32(hi.I32))<<32 | uint64(uint32(lo.I32))
	return math.Float64frombits(bits)
}

func printlnBool(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprintln(v.Config.Stdout, args[1].I32 != 0)
	return nil, nil
}

func printBool(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprint(v.Config.Stdout, args[1].I32 != 0)
	return nil, nil
}

func printlnChar(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprintln(v.Config.Stdout, string(rune(args[1].I32)))
	return nil, nil
}

func printChar(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprint(v.Config.Stdout, string(rune(args[1].I32)))
	return nil, nil
}

func printlnString(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprintln(v.Config.Stdout, stringOf(args[1]))
	return nil, nil
}

func printString(v *vm.VM, args []vm.Slot) ([]vm.Slot, error) {
	fmt.Fprint(v.Config.Stdout, stringOf(args[1]))
	return nil, nil
}

func stringOf(s vm.Slot) string {
	if s.Ref == nil {
		return "null"
	}
	str, ok := s.Ref.(*object.String)
	if !ok {
		return ""
	}
	return string(str.Bytes)
}
