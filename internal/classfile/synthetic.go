package classfile

// SyntheticClassFile builds a minimal ClassFile for one of the hard-coded
// classes the VM simulates (spec.md §4.9 step 1, §1 Non-goals): just
// enough constant pool to answer ThisClassName(), with no fields,
// methods or superclass, since resolution of a simulated class never
// loads real bytecode for it.
func SyntheticClassFile(internalName string) *ClassFile {
	cp := &ConstantPool{
		Count:   3,
		entries: make([]cpSlot, 3),
	}
	cp.entries[1] = cpSlot{TagUtf8, 0}
	cp.utf8 = append(cp.utf8, []byte(internalName))
	cp.entries[2] = cpSlot{TagClass, 0}
	cp.classes = append(cp.classes, 1)

	return &ClassFile{
		Magic:       magicNumber,
		MajorVer:    61,
		CP:          cp,
		AccessFlags: AccPublic,
		ThisClass:   2,
		SuperClass:  0,
	}
}
