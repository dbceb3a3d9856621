package object

// Heap is the reference table of spec.md §3/§4.7: every live Ref is
// recorded here exactly once, for bulk teardown. Conceptually this is the
// "singly linked collection" the spec describes; in Go the equivalent
// ownership shape is a single growable slice the VM drains all at once,
// which is what a generational-vector replacement of a linked list looks
// like per Design Notes §9.
type Heap struct {
	live []Ref
}

func NewHeap() *Heap {
	return &Heap{}
}

func (h *Heap) track(r Ref) Ref {
	h.live = append(h.live, r)
	return r
}

// NewString copies bytes into a fresh buffer and records it. A
// zero-length string has no backing buffer.
func (h *Heap) NewString(data []byte) *String {
	s := &String{}
	if len(data) > 0 {
		s.Bytes = append([]byte(nil), data...)
	}
	h.track(s)
	return s
}

// NewArray zero-initializes length*elementSize bytes. A zero-length
// allocation still returns a real, tracked *Array with Length 0 and no
// backing bytes: boxing a typed-nil *Array into the Ref interface would
// make arraylength's type switch see a non-nil Ref whose pointer is nil,
// per spec.md §4.7/§8 scenario 6.
func (h *Heap) NewArray(length int, elemType PrimType) *Array {
	a := &Array{
		ElementType: elemType,
		Length:      length,
	}
	if length > 0 {
		a.Data = make([]byte, length*elemType.ElementSize())
	}
	h.track(a)
	return a
}

// NewClassInstance allocates an instance-field block sized to the class's
// InstanceFieldCount 32-bit slots (category-2 fields already having
// counted for two), packed densely as spec.md §4.7 describes.
func (h *Heap) NewClassInstance(k *LoadedClass) *ClassInstance {
	ci := &ClassInstance{
		Class:  k,
		Fields: make([]FieldSlot, k.File.InstanceFieldCount),
	}
	h.track(ci)
	return ci
}

// NewObjectArray allocates an element pointer array initialized to nil
// (null), recording it in the heap.
func (h *Heap) NewObjectArray(length int, className string) *ObjectArray {
	oa := &ObjectArray{
		ClassName: className,
		Dims:      1,
		Elements:  make([]Ref, length),
	}
	h.track(oa)
	return oa
}

// Len reports the number of live allocations; it is 0 after Clear.
func (h *Heap) Len() int {
	return len(h.live)
}

// Clear drains the reference table at VM teardown. Object arrays need no
// special recursive release in Go -- dropping the slice is enough for the
// garbage collector to reclaim contained references -- but Clear still
// walks ObjectArray entries to null their Elements first, matching
// spec.md §4.7's "object arrays recursively release contained references"
// ordering even though nothing here frees memory by hand.
func (h *Heap) Clear() {
	for _, r := range h.live {
		if oa, ok := r.(*ObjectArray); ok {
			for i := range oa.Elements {
				oa.Elements[i] = nil
			}
		}
	}
	h.live = nil
}
