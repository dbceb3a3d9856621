package vm

import (
	"strings"

	"github.com/jvmlite/jvmlite/internal/classfile"
	"github.com/jvmlite/jvmlite/internal/object"
	"github.com/jvmlite/jvmlite/internal/status"
	"github.com/jvmlite/jvmlite/internal/trace"
)

// resolveClass implements spec.md §4.9's resolveClass: simulate java/lang/String
// when configured, strip array dimensions for array class names, return
// the already-loaded handle if present, or else load, recursively resolve
// superclass/interfaces, register, and run <clinit>.
func (v *VM) resolveClass(name string) (*object.LoadedClass, error) {
	if v.Config.Simulate && name == "java/lang/String" {
		return v.resolveSimulated(name)
	}

	if strings.HasPrefix(name, "[") {
		elem := strings.TrimLeft(name, "[")
		if len(elem) == 0 {
			return nil, status.New(status.JVM_STATUS_CLASS_RESOLUTION_FAILED, "malformed array class name "+name)
		}
		if elem[0] == 'L' {
			inner := strings.TrimSuffix(strings.TrimPrefix(elem, "L"), ";")
			return v.resolveClass(inner)
		}
		// primitive element type: no load required.
		return nil, nil
	}

	if k, ok := v.Classes.Lookup(name); ok {
		return k, nil
	}

	if v.Config.Simulate && IsSimulatedClass(name) {
		return v.resolveSimulated(name)
	}

	cf, err := v.loadClassFile(name)
	if err != nil {
		return nil, status.New(status.JVM_STATUS_CLASS_RESOLUTION_FAILED, name+": "+err.Error())
	}

	if cf.SuperClass != 0 {
		if _, err := v.resolveClass(cf.SuperClassName()); err != nil {
			return nil, err
		}
	}
	for _, ifaceIdx := range cf.Interfaces {
		ifaceName, _ := cf.CP.ClassName(ifaceIdx)
		if _, err := v.resolveClass(ifaceName); err != nil {
			return nil, err
		}
	}

	k := v.Classes.Add(cf)
	trace.Trace("resolveClass: loaded " + name)
	if err := v.runClinit(k); err != nil {
		return nil, err
	}
	return k, nil
}

// resolveSimulated registers a synthetic, already-"initialized" class for
// one of the hard-coded classes the VM simulates instead of reading from
// disk, per spec.md §4.9 step 1 and §1 Non-goals.
func (v *VM) resolveSimulated(name string) (*object.LoadedClass, error) {
	if k, ok := v.Classes.Lookup(name); ok {
		return k, nil
	}
	cf := classfile.SyntheticClassFile(name)
	k := v.Classes.Add(cf)
	k.ClinitState = object.ClinitRun
	return k, nil
}

func (v *VM) runClinit(k *object.LoadedClass) error {
	if k.ClinitState != object.ClinitNotRun {
		return nil
	}
	m, ok := k.File.FindMethod("<clinit>", "()V")
	if !ok {
		k.ClinitState = object.ClinitRun
		return nil
	}
	k.ClinitState = object.ClinitInProgress
	trace.Trace("runClinit: running " + k.Name() + ".<clinit>()V")
	err := v.runMethod(k.File, m, 0)
	k.ClinitState = object.ClinitRun
	return err
}

// resolveFieldOwner walks k and its superclass chain to find the class
// that declares the named field, resolving each superclass along the way.
func (v *VM) resolveFieldOwner(k *object.LoadedClass, name string) (*object.LoadedClass, error) {
	for cur := k; cur != nil; {
		if _, _, ok := cur.File.FindField(name); ok {
			return cur, nil
		}
		if cur.File.SuperClass == 0 {
			break
		}
		super, err := v.resolveClass(cur.File.SuperClassName())
		if err != nil {
			return nil, err
		}
		cur = super
	}
	return nil, status.New(status.JVM_STATUS_CLASS_RESOLUTION_FAILED, "field not found: "+name)
}

// resolveMethodOwner walks k and its superclass chain to find the class
// that declares name+descriptor.
func (v *VM) resolveMethodOwner(k *object.LoadedClass, name, descriptor string) (*object.LoadedClass, classfile.MethodInfo, error) {
	for cur := k; cur != nil; {
		if m, ok := cur.File.FindMethod(name, descriptor); ok {
			return cur, m, nil
		}
		if cur.File.SuperClass == 0 {
			break
		}
		super, err := v.resolveClass(cur.File.SuperClassName())
		if err != nil {
			return nil, classfile.MethodInfo{}, err
		}
		cur = super
	}
	return nil, classfile.MethodInfo{}, status.New(status.JVM_STATUS_CLASS_RESOLUTION_FAILED, "method not found: "+name+descriptor)
}

// resolveDescriptorClasses walks a field or method descriptor and
// resolves every L...; class reference it contains, per spec.md §4.9's
// "resolveMethod/resolveField ... resolve any L...; class references
// contained in it."
func (v *VM) resolveDescriptorClasses(descriptor string) error {
	for i := 0; i < len(descriptor); i++ {
		if descriptor[i] != 'L' {
			continue
		}
		j := i + 1
		for j < len(descriptor) && descriptor[j] != ';' {
			j++
		}
		if j >= len(descriptor) {
			break
		}
		className := descriptor[i+1 : j]
		if _, err := v.resolveClass(className); err != nil {
			return err
		}
		i = j
	}
	return nil
}
