// Package object holds the two "resident state" components of spec.md
// §2: the loaded-classes registry (item 6) and the object/reference heap
// (item 7). Both are simple data containers with no interpreter logic of
// their own, so -- mirroring how artipop-jacobin keeps classloader.Klass
// bookkeeping and object.Object allocation in sibling packages that never
// import the interpreter -- this package depends only on classfile.
package object

import "github.com/jvmlite/jvmlite/internal/classfile"

// LoadedClass is one resident class: an owning pointer to its parsed
// ClassFile plus a fixed-size slab of static field slots, indexed by the
// field's position within the class's static fields in declaration order
// (spec.md §3/§4.6).
type LoadedClass struct {
	File         *classfile.ClassFile
	StaticFields []FieldSlot
	ClinitState  ClinitState
}

type ClinitState int

const (
	ClinitNotRun ClinitState = iota
	ClinitInProgress
	ClinitRun
)

func (k *LoadedClass) Name() string {
	return k.File.ThisClassName()
}

// Registry is the insertion-ordered collection of loaded classes
// described in spec.md §3 ("newest at head"); lookup is by internal class
// name through the byName map, while classes keeps the newest-first
// order.
type Registry struct {
	classes []*LoadedClass // classes[0] is the most recently added
	byName  map[string]*LoadedClass
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*LoadedClass)}
}

// Add allocates the wrapper and its static-field slab (sized to the
// class's StaticFieldCount, or omitted if zero) and prepends it to the
// registry. A class already present under the same name is not
// re-added; Add returns the pre-existing entry so resolution stays
// idempotent (spec.md §8: "the registry contains exactly one entry").
func (r *Registry) Add(cf *classfile.ClassFile) *LoadedClass {
	name := cf.ThisClassName()
	if existing, ok := r.byName[name]; ok {
		return existing
	}

	k := &LoadedClass{File: cf}
	if cf.StaticFieldCount > 0 {
		k.StaticFields = make([]FieldSlot, cf.StaticFieldCount)
	}
	if _, hasClinit := cf.FindMethod("<clinit>", "()V"); !hasClinit {
		k.ClinitState = ClinitRun
	}

	r.classes = append([]*LoadedClass{k}, r.classes...)
	r.byName[name] = k
	return k
}

// Lookup returns the loaded class of the given internal name, if present.
func (r *Registry) Lookup(name string) (*LoadedClass, bool) {
	k, ok := r.byName[name]
	return k, ok
}

// Len reports the number of resident classes.
func (r *Registry) Len() int {
	return len(r.classes)
}
