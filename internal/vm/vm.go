package vm

import (
	"io"
	"os"

	"github.com/jvmlite/jvmlite/internal/classfile"
	"github.com/jvmlite/jvmlite/internal/object"
	"github.com/jvmlite/jvmlite/internal/status"
	"github.com/jvmlite/jvmlite/internal/trace"
)

// Config configures one VM instance, replacing the package-level mutable
// globals jacobin's globals.Globals keeps (globals.InitGlobals,
// globals.GetGlobalRef) with an explicitly-passed value -- spec.md §5
// requires the VM to be a self-contained, lock-free scoped object, which
// rules out process-wide state.
type Config struct {
	ClassPath string    // directory .class files are resolved relative to
	Simulate  bool       // enable the java/lang/System, java/lang/String, java/io/PrintStream simulation
	Stdout    io.Writer
}

// VM is the top-level runtime object of spec.md §3: status, frame stack,
// class registry, reference heap, and the simulate-stdlib flag.
type VM struct {
	Config Config

	Status  status.Code
	Frames  []*Frame // frame stack; last element is top-of-stack (the callee)
	Classes *object.Registry
	Heap    *object.Heap
}

// New creates a VM instance with an empty registry and heap.
func New(cfg Config) *VM {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.ClassPath == "" {
		cfg.ClassPath = "."
	}
	return &VM{
		Config:  cfg,
		Status:  status.OK,
		Classes: object.NewRegistry(),
		Heap:    object.NewHeap(),
	}
}

func (v *VM) pushFrame(f *Frame) {
	v.Frames = append(v.Frames, f)
}

func (v *VM) popFrame() *Frame {
	n := len(v.Frames) - 1
	f := v.Frames[n]
	v.Frames = v.Frames[:n]
	return f
}

func (v *VM) topFrame() *Frame {
	if len(v.Frames) == 0 {
		return nil
	}
	return v.Frames[len(v.Frames)-1]
}

// Close releases everything in declarative order per spec.md §5: frame
// stack first, then classes, then references.
func (v *VM) Close() {
	v.Frames = nil
	v.Classes = object.NewRegistry()
	v.Heap.Clear()
}

// RunMain is the CLI's "-e" entry point: it resolves the named entry
// class (loading and initializing its superclass chain along the way,
// per spec.md §4.9's ordering guarantee) and executes its
// main([Ljava/lang/String;)V.
func (v *VM) RunMain(entryClassName string) error {
	k, err := v.resolveClass(entryClassName)
	if err != nil {
		v.Status = status.JVM_STATUS_CLASS_RESOLUTION_FAILED
		return err
	}

	main, ok := k.File.FindMethod("main", "([Ljava/lang/String;)V")
	if !ok {
		v.Status = status.JVM_STATUS_MAIN_METHOD_NOT_FOUND
		return status.New(status.JVM_STATUS_MAIN_METHOD_NOT_FOUND, entryClassName+".main([Ljava/lang/String;)V")
	}

	trace.Trace("RunMain: executing " + entryClassName + ".main")
	if err := v.runMethod(k.File, main, 0); err != nil {
		v.Status = statusOf(err)
		return err
	}

	v.Status = status.OK
	return nil
}

func statusOf(err error) status.Code {
	if se, ok := err.(*status.Error); ok {
		return se.Code
	}
	return status.JVM_STATUS_UNKNOWN_INSTRUCTION
}

// loadClassFile opens "<name>.class" relative to the configured
// class-path prefix, per spec.md §6's filesystem contract.
func (v *VM) loadClassFile(name string) (*classfile.ClassFile, error) {
	path := v.Config.ClassPath + string(os.PathSeparator) + name + ".class"
	return classfile.Load(path)
}
