package classfile

import "github.com/jvmlite/jvmlite/internal/status"

// Tag identifies the variant of a constant pool entry, per JVM §4.4.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
)

func (t Tag) String() string {
	switch t {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldref:
		return "Fieldref"
	case TagMethodref:
		return "Methodref"
	case TagInterfaceMethodref:
		return "InterfaceMethodref"
	case TagNameAndType:
		return "NameAndType"
	default:
		return "Unknown"
	}
}

// RefEntry backs Fieldref, Methodref and InterfaceMethodref: a class_index
// and a name_and_type_index, each a 1-based index into the same pool.
type RefEntry struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

// NameAndTypeEntry backs NameAndType entries.
type NameAndTypeEntry struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

// cpSlot is the per-index directory entry: every constant pool slot
// (1..Count-1) names a Tag and the position ("Slot") of its payload within
// the tag's own typed slice. This indirection -- an index of indices --
// is the same shape artipop-jacobin's classloader.CPool uses (CpEntry{Type,
// Slot} plus parallel Utf8Refs/IntConsts/ClassRefs/... slices) instead of
// one big interface{} slice, so resolution never needs a type switch on
// stored content.
type cpSlot struct {
	Tag  Tag
	Slot int
}

// ConstantPool is the parsed constant pool of one class file: an ordered
// sequence indexed 1..Count-1 (index 0 is reserved, and the slot after a
// Long/Double is unusable per JVM §4.4.5).
type ConstantPool struct {
	Count int // declared constant_pool_count; Count-1 usable slots

	entries []cpSlot // len == Count; entries[0] is the reserved dummy

	utf8      [][]byte
	integers  []int32
	floats    []uint32 // raw IEEE-754 bits
	longs     [][2]uint32
	doubles   [][2]uint32
	classes   []uint16 // name_index
	strings   []uint16 // string_index
	fieldrefs []RefEntry
	methrefs  []RefEntry
	imethrefs []RefEntry
	nats      []NameAndTypeEntry
}

func (cp *ConstantPool) validIndex(idx int) bool {
	return idx >= 1 && idx < cp.Count
}

func (cp *ConstantPool) tagAt(idx int) (Tag, bool) {
	if !cp.validIndex(idx) {
		return 0, false
	}
	return cp.entries[idx].Tag, true
}

// TagAt exposes tagAt for callers outside this package that need to
// branch on a pool entry's variant before picking which accessor to
// call -- ldc, which can target an Integer, Float, String or Class entry.
func (cp *ConstantPool) TagAt(idx int) (Tag, bool) {
	return cp.tagAt(idx)
}

// CheckIndex validates that idx is in range and refers to an entry of the
// expected tag, per spec.md's pool-index invariant. It is the single
// choke point every attribute/field/method reader calls before trusting a
// stored index.
func (cp *ConstantPool) CheckIndex(idx int, want Tag) error {
	tag, ok := cp.tagAt(idx)
	if !ok {
		return status.New(status.INVALID_CONSTANT_POOL_INDEX, "index out of range")
	}
	if tag != want {
		return status.New(status.INVALID_CONSTANT_POOL_TAG, "expected "+want.String()+", got "+tag.String())
	}
	return nil
}

func (cp *ConstantPool) Utf8Bytes(idx int) ([]byte, error) {
	if err := cp.CheckIndex(idx, TagUtf8); err != nil {
		return nil, err
	}
	return cp.utf8[cp.entries[idx].Slot], nil
}

func (cp *ConstantPool) Utf8String(idx int) (string, error) {
	b, err := cp.Utf8Bytes(idx)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (cp *ConstantPool) ClassName(idx int) (string, error) {
	if err := cp.CheckIndex(idx, TagClass); err != nil {
		return "", err
	}
	nameIdx := cp.classes[cp.entries[idx].Slot]
	return cp.Utf8String(int(nameIdx))
}

// ClassNameBytes is ClassName without the decode to a Go string, for
// callers that only need a byte-exact comparison (cmpUTF8) rather than a
// printable name.
func (cp *ConstantPool) ClassNameBytes(idx int) ([]byte, error) {
	if err := cp.CheckIndex(idx, TagClass); err != nil {
		return nil, err
	}
	nameIdx := cp.classes[cp.entries[idx].Slot]
	return cp.Utf8Bytes(int(nameIdx))
}

func (cp *ConstantPool) Integer(idx int) (int32, error) {
	if err := cp.CheckIndex(idx, TagInteger); err != nil {
		return 0, err
	}
	return cp.integers[cp.entries[idx].Slot], nil
}

func (cp *ConstantPool) FloatBits(idx int) (uint32, error) {
	if err := cp.CheckIndex(idx, TagFloat); err != nil {
		return 0, err
	}
	return cp.floats[cp.entries[idx].Slot], nil
}

func (cp *ConstantPool) Long(idx int) (int64, error) {
	if err := cp.CheckIndex(idx, TagLong); err != nil {
		return 0, err
	}
	hl := cp.longs[cp.entries[idx].Slot]
	return int64(hl[0])<<32 | int64(hl[1]), nil
}

func (cp *ConstantPool) DoubleBits(idx int) (uint64, error) {
	if err := cp.CheckIndex(idx, TagDouble); err != nil {
		return 0, err
	}
	hl := cp.doubles[cp.entries[idx].Slot]
	return uint64(hl[0])<<32 | uint64(hl[1]), nil
}

func (cp *ConstantPool) StringBytes(idx int) ([]byte, error) {
	if err := cp.CheckIndex(idx, TagString); err != nil {
		return nil, err
	}
	strIdx := cp.strings[cp.entries[idx].Slot]
	return cp.Utf8Bytes(int(strIdx))
}

func (cp *ConstantPool) NameAndType(idx int) (NameAndTypeEntry, error) {
	if err := cp.CheckIndex(idx, TagNameAndType); err != nil {
		return NameAndTypeEntry{}, err
	}
	return cp.nats[cp.entries[idx].Slot], nil
}

func (cp *ConstantPool) Fieldref(idx int) (RefEntry, error) {
	if err := cp.CheckIndex(idx, TagFieldref); err != nil {
		return RefEntry{}, err
	}
	return cp.fieldrefs[cp.entries[idx].Slot], nil
}

func (cp *ConstantPool) Methodref(idx int) (RefEntry, error) {
	if err := cp.CheckIndex(idx, TagMethodref); err != nil {
		return RefEntry{}, err
	}
	return cp.methrefs[cp.entries[idx].Slot], nil
}

func (cp *ConstantPool) InterfaceMethodref(idx int) (RefEntry, error) {
	if err := cp.CheckIndex(idx, TagInterfaceMethodref); err != nil {
		return RefEntry{}, err
	}
	return cp.imethrefs[cp.entries[idx].Slot], nil
}

// NameAndTypeStrings resolves a NameAndType entry straight to its name and
// descriptor strings, the common case every field/method resolution needs.
func (cp *ConstantPool) NameAndTypeStrings(idx int) (name, desc string, err error) {
	nat, err := cp.NameAndType(idx)
	if err != nil {
		return "", "", err
	}
	name, err = cp.Utf8String(int(nat.NameIndex))
	if err != nil {
		return "", "", err
	}
	desc, err = cp.Utf8String(int(nat.DescriptorIndex))
	if err != nil {
		return "", "", err
	}
	return name, desc, nil
}

// readConstantPool reads constantPoolCount (the declared count; actual
// entries number count-1, Long/Double each additionally consuming the
// following slot) and every tagged entry. Referential indices embedded in
// entries (name_index, class_index, ...) are bounds/tag-checked lazily by
// the accessors above and by the attribute/field/method readers, per
// spec.md §4.3 ("referential indices are not validated here").
func readConstantPool(r *byteReader) (*ConstantPool, error) {
	count, ok := r.readU2()
	if !ok {
		return nil, eofErr("constant_pool_count")
	}

	cp := &ConstantPool{
		Count:   int(count),
		entries: make([]cpSlot, count),
	}

	for i := 1; i < int(count); i++ {
		tagByte, ok := r.readU1()
		if !ok {
			return nil, eofErr("constant pool tag")
		}

		switch Tag(tagByte) {
		case TagUtf8:
			length, ok := r.readU2()
			if !ok {
				return nil, eofErr("Utf8.length")
			}
			b, ok := r.readBytes(int(length))
			if !ok {
				return nil, eofErr("Utf8.bytes")
			}
			buf := make([]byte, len(b))
			copy(buf, b)
			cp.entries[i] = cpSlot{TagUtf8, len(cp.utf8)}
			cp.utf8 = append(cp.utf8, buf)

		case TagInteger:
			v, ok := r.readU4()
			if !ok {
				return nil, eofErr("Integer.bytes")
			}
			cp.entries[i] = cpSlot{TagInteger, len(cp.integers)}
			cp.integers = append(cp.integers, int32(v))

		case TagFloat:
			v, ok := r.readU4()
			if !ok {
				return nil, eofErr("Float.bytes")
			}
			cp.entries[i] = cpSlot{TagFloat, len(cp.floats)}
			cp.floats = append(cp.floats, v)

		case TagLong:
			hi, ok1 := r.readU4()
			lo, ok2 := r.readU4()
			if !ok1 || !ok2 {
				return nil, eofErr("Long.bytes")
			}
			cp.entries[i] = cpSlot{TagLong, len(cp.longs)}
			cp.longs = append(cp.longs, [2]uint32{hi, lo})
			i++ // Long occupies two pool slots; the next index is unusable

		case TagDouble:
			hi, ok1 := r.readU4()
			lo, ok2 := r.readU4()
			if !ok1 || !ok2 {
				return nil, eofErr("Double.bytes")
			}
			cp.entries[i] = cpSlot{TagDouble, len(cp.doubles)}
			cp.doubles = append(cp.doubles, [2]uint32{hi, lo})
			i++ // Double occupies two pool slots

		case TagClass:
			nameIdx, ok := r.readU2()
			if !ok {
				return nil, eofErr("Class.name_index")
			}
			cp.entries[i] = cpSlot{TagClass, len(cp.classes)}
			cp.classes = append(cp.classes, nameIdx)

		case TagString:
			strIdx, ok := r.readU2()
			if !ok {
				return nil, eofErr("String.string_index")
			}
			cp.entries[i] = cpSlot{TagString, len(cp.strings)}
			cp.strings = append(cp.strings, strIdx)

		case TagFieldref:
			classIdx, ok1 := r.readU2()
			natIdx, ok2 := r.readU2()
			if !ok1 || !ok2 {
				return nil, eofErr("Fieldref")
			}
			cp.entries[i] = cpSlot{TagFieldref, len(cp.fieldrefs)}
			cp.fieldrefs = append(cp.fieldrefs, RefEntry{classIdx, natIdx})

		case TagMethodref:
			classIdx, ok1 := r.readU2()
			natIdx, ok2 := r.readU2()
			if !ok1 || !ok2 {
				return nil, eofErr("Methodref")
			}
			cp.entries[i] = cpSlot{TagMethodref, len(cp.methrefs)}
			cp.methrefs = append(cp.methrefs, RefEntry{classIdx, natIdx})

		case TagInterfaceMethodref:
			classIdx, ok1 := r.readU2()
			natIdx, ok2 := r.readU2()
			if !ok1 || !ok2 {
				return nil, eofErr("InterfaceMethodref")
			}
			cp.entries[i] = cpSlot{TagInterfaceMethodref, len(cp.imethrefs)}
			cp.imethrefs = append(cp.imethrefs, RefEntry{classIdx, natIdx})

		case TagNameAndType:
			nameIdx, ok1 := r.readU2()
			descIdx, ok2 := r.readU2()
			if !ok1 || !ok2 {
				return nil, eofErr("NameAndType")
			}
			cp.entries[i] = cpSlot{TagNameAndType, len(cp.nats)}
			cp.nats = append(cp.nats, NameAndTypeEntry{nameIdx, descIdx})

		default:
			return nil, status.New(status.INVALID_CONSTANT_POOL_TAG, "unknown constant pool tag")
		}
	}

	return cp, nil
}
