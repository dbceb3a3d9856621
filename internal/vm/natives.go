package vm

import (
	"github.com/jvmlite/jvmlite/internal/classfile"
	"github.com/jvmlite/jvmlite/internal/status"
)

// NativeFunc implements one hard-coded simulated standard-library method
// (spec.md §1 Non-goals: "only a hard-coded subset of
// java/lang/System.out.println and java/lang/String behavior is
// simulated"). It receives the VM (for heap allocation and stdout) and
// the argument slots in left-to-right order (receiver first for instance
// methods), and returns the slots to push back, if the descriptor has a
// non-void return.
type NativeFunc func(v *VM, args []Slot) ([]Slot, error)

type nativeKey struct {
	class      string
	method     string
	descriptor string
}

var natives = map[nativeKey]NativeFunc{}

// RegisterNative installs a simulated native, the hook spec.md §4.10
// step 3 calls "dispatch to the simulated-native table (out of scope
// here; a hook)". internal/gfunction populates this table from its
// init() functions, so vm never imports gfunction -- only the reverse --
// keeping the dependency one-directional the way artipop-jacobin's jvm
// package calls into its gfunction package through a registration table
// rather than a direct import cycle.
func RegisterNative(class, method, descriptor string, fn NativeFunc) {
	natives[nativeKey{class, method, descriptor}] = fn
}

func lookupNative(class, method, descriptor string) (NativeFunc, bool) {
	fn, ok := natives[nativeKey{class, method, descriptor}]
	return fn, ok
}

// invokeNative is runMethod's dispatch point for a method declared native
// in a real (non-simulated) class file: look the implementation up in
// the registration table, pop its arguments off the caller, run it, and
// push back whatever it returns.
func (v *VM) invokeNative(cf *classfile.ClassFile, m classfile.MethodInfo, caller *Frame, argCount int) error {
	className := cf.ThisClassName()
	name := cf.MethodName(m)
	desc := cf.MethodDescriptor(m)

	fn, ok := lookupNative(className, name, desc)
	if !ok {
		return status.New(status.JVM_STATUS_CLASS_RESOLUTION_FAILED, "native method not implemented: "+className+"."+name+desc)
	}

	args := make([]Slot, argCount)
	if caller != nil {
		for i := argCount - 1; i >= 0; i-- {
			args[i] = caller.Operands.Pop()
		}
	}

	results, err := fn(v, args)
	if err != nil {
		return err
	}
	if caller != nil {
		for _, r := range results {
			caller.Operands.Push(r)
		}
	}
	return nil
}

// IsSimulatedClass reports whether class is one of the hard-coded
// classes the VM simulates instead of resolving from a .class file on
// disk.
func IsSimulatedClass(class string) bool {
	switch class {
	case "java/lang/System", "java/lang/String", "java/io/PrintStream", "java/lang/Object":
		return true
	default:
		return false
	}
}
