package classfile

import (
	"github.com/jvmlite/jvmlite/internal/status"
)

const magicNumber = 0xCAFEBABE

// Class access flags, JVM §4.1 Table 4.1-B.
const (
	AccPublic     = 0x0001
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
	AccModule     = 0x8000
)

const knownClassAccessFlags = AccPublic | AccFinal | AccSuper | AccInterface |
	AccAbstract | AccSynthetic | AccAnnotation | AccEnum | AccModule

// Field access flags, JVM §4.5 Table 4.5-A.
const (
	FieldAccPublic    = 0x0001
	FieldAccPrivate   = 0x0002
	FieldAccProtected = 0x0004
	FieldAccStatic    = 0x0008
	FieldAccFinal     = 0x0010
	FieldAccVolatile  = 0x0040
	FieldAccTransient = 0x0080
	FieldAccSynthetic = 0x1000
	FieldAccEnum      = 0x4000
)

const knownFieldAccessFlags = FieldAccPublic | FieldAccPrivate | FieldAccProtected |
	FieldAccStatic | FieldAccFinal | FieldAccVolatile | FieldAccTransient |
	FieldAccSynthetic | FieldAccEnum

// Method access flags, JVM §4.6 Table 4.6-A.
const (
	MethodAccPublic       = 0x0001
	MethodAccPrivate      = 0x0002
	MethodAccProtected    = 0x0004
	MethodAccStatic       = 0x0008
	MethodAccFinal        = 0x0010
	MethodAccSynchronized = 0x0020
	MethodAccBridge       = 0x0040
	MethodAccVarargs      = 0x0080
	MethodAccNative       = 0x0100
	MethodAccAbstract     = 0x0400
	MethodAccStrict       = 0x0800
	MethodAccSynthetic    = 0x1000
)

const knownMethodAccessFlags = MethodAccPublic | MethodAccPrivate | MethodAccProtected |
	MethodAccStatic | MethodAccFinal | MethodAccSynchronized | MethodAccBridge |
	MethodAccVarargs | MethodAccNative | MethodAccAbstract | MethodAccStrict | MethodAccSynthetic

// FieldInfo is one entry of the fields table.
type FieldInfo struct {
	AccessFlags    int
	NameIndex      int
	DescriptorIndex int
	Attributes     []Attribute
}

func (f FieldInfo) IsStatic() bool { return f.AccessFlags&FieldAccStatic != 0 }

// MethodInfo is one entry of the methods table.
type MethodInfo struct {
	AccessFlags     int
	NameIndex       int
	DescriptorIndex int
	Attributes      []Attribute
}

func (m MethodInfo) IsStatic() bool { return m.AccessFlags&MethodAccStatic != 0 }
func (m MethodInfo) IsNative() bool { return m.AccessFlags&MethodAccNative != 0 }

// ClassFile is the parsed representation of one .class file, per
// spec.md §3.
type ClassFile struct {
	Magic      uint32
	MinorVer   uint16
	MajorVer   uint16
	CP         *ConstantPool
	AccessFlags int
	ThisClass   int // Class entry index
	SuperClass  int // Class entry index, 0 for java/lang/Object
	Interfaces  []int
	Fields      []FieldInfo
	Methods     []MethodInfo
	Attributes  []Attribute

	// Derived counts, precomputed at load time per spec.md §3.
	StaticFieldCount   int
	InstanceFieldCount int
}

func (c *ClassFile) ThisClassName() string {
	name, _ := c.CP.ClassName(c.ThisClass)
	return name
}

func (c *ClassFile) SuperClassName() string {
	if c.SuperClass == 0 {
		return ""
	}
	name, _ := c.CP.ClassName(c.SuperClass)
	return name
}

func (c *ClassFile) FieldName(f FieldInfo) string {
	s, _ := c.CP.Utf8String(f.NameIndex)
	return s
}

func (c *ClassFile) FieldDescriptor(f FieldInfo) string {
	s, _ := c.CP.Utf8String(f.DescriptorIndex)
	return s
}

func (c *ClassFile) MethodName(m MethodInfo) string {
	s, _ := c.CP.Utf8String(m.NameIndex)
	return s
}

func (c *ClassFile) MethodDescriptor(m MethodInfo) string {
	s, _ := c.CP.Utf8String(m.DescriptorIndex)
	return s
}

// FindMethod looks up a method by name and descriptor, the key every
// invoke* instruction and resolver call resolves through.
func (c *ClassFile) FindMethod(name, descriptor string) (MethodInfo, bool) {
	for _, m := range c.Methods {
		if c.MethodName(m) == name && c.MethodDescriptor(m) == descriptor {
			return m, true
		}
	}
	return MethodInfo{}, false
}

func (c *ClassFile) FindField(name string) (FieldInfo, int, bool) {
	for idx, f := range c.Fields {
		if c.FieldName(f) == name {
			return f, idx, true
		}
	}
	return FieldInfo{}, -1, false
}

// StaticSlot returns the static-field slot index of the named static
// field: its position within the class's ordered static-field sequence
// (declaration order), per spec.md §4.6. Long/Double fields consume two
// consecutive slots, so the slot number is not simply the field's index
// within Fields.
func (c *ClassFile) StaticSlot(name string) (slot int, descriptor string, ok bool) {
	slot = 0
	for _, f := range c.Fields {
		if !f.IsStatic() {
			continue
		}
		desc := c.FieldDescriptor(f)
		if c.FieldName(f) == name {
			return slot, desc, true
		}
		slot += slotWidth(desc)
	}
	return 0, "", false
}

// InstanceSlot returns the instance-field slot index of the named
// instance field analogously to StaticSlot, over the instance's dense
// FieldSlot storage: the offset returned is in 32-bit-slot units
// (category-2 fields use two).
func (c *ClassFile) InstanceSlot(name string) (slot int, descriptor string, ok bool) {
	slot = 0
	for _, f := range c.Fields {
		if f.IsStatic() {
			continue
		}
		desc := c.FieldDescriptor(f)
		if c.FieldName(f) == name {
			return slot, desc, true
		}
		slot += slotWidth(desc)
	}
	return 0, "", false
}

func slotWidth(descriptor string) int {
	if descriptor == "J" || descriptor == "D" {
		return 2
	}
	return 1
}

// Load reads magic, minor, major, constant pool, access_flags,
// this_class, super_class, interfaces, fields, methods and attributes, in
// that order, all-or-nothing: on any failure the partially-read class is
// discarded (the caller simply drops the returned error along with the
// nil ClassFile). Ported in structure from original_source/src/jvm.c's
// openClassFile and artipop-jacobin's classloader.parse.
func Load(path string) (*ClassFile, error) {
	data, err := openClassBytes(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data)
}

// LoadBytes parses an in-memory .class file, the same entry point Load
// uses after reading the file from disk.
func LoadBytes(data []byte) (*ClassFile, error) {
	r := newByteReader(data)

	magic, ok := r.readU4()
	if !ok {
		return nil, eofErr("magic")
	}
	if magic != magicNumber {
		return nil, status.New(status.INVALID_MAGIC_NUMBER, "bad magic number")
	}

	minor, ok1 := r.readU2()
	major, ok2 := r.readU2()
	if !ok1 || !ok2 {
		return nil, eofErr("version")
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	accessFlags, ok := r.readU2()
	if !ok {
		return nil, eofErr("access_flags")
	}
	if int(accessFlags)&^knownClassAccessFlags != 0 {
		return nil, status.New(status.USE_OF_RESERVED_CLASS_ACCESS_FLAGS, "reserved class access flag bit set")
	}

	thisClass, ok1 := r.readU2()
	superClass, ok2 := r.readU2()
	if !ok1 || !ok2 {
		return nil, eofErr("this_class/super_class")
	}
	if err := cp.CheckIndex(int(thisClass), TagClass); err != nil {
		return nil, status.New(status.INVALID_CONSTANT_POOL_INDEX, "this_class: "+err.Error())
	}
	if superClass != 0 {
		if err := cp.CheckIndex(int(superClass), TagClass); err != nil {
			return nil, status.New(status.INVALID_CONSTANT_POOL_INDEX, "super_class: "+err.Error())
		}
		// A class cannot be its own superclass -- the same same-name check
		// isClassSuperOf (original_source/src/jvm.c) uses as its cycle base
		// case, done here on the raw Utf8 bytes rather than decoded strings.
		thisNameBytes, err1 := cp.ClassNameBytes(int(thisClass))
		superNameBytes, err2 := cp.ClassNameBytes(int(superClass))
		if err1 == nil && err2 == nil && cmpUTF8(thisNameBytes, superNameBytes) {
			return nil, status.New(status.CLASS_IS_OWN_SUPERCLASS, "class cannot be its own superclass")
		}
	}

	interfacesCount, ok := r.readU2()
	if !ok {
		return nil, eofErr("interfaces_count")
	}
	interfaces := make([]int, 0, interfacesCount)
	for i := 0; i < int(interfacesCount); i++ {
		idx, ok := r.readU2()
		if !ok {
			return nil, eofErr("interfaces")
		}
		if err := cp.CheckIndex(int(idx), TagClass); err != nil {
			return nil, status.New(status.INVALID_CONSTANT_POOL_INDEX, "interface: "+err.Error())
		}
		interfaces = append(interfaces, int(idx))
	}

	fields, err := readFields(r, cp)
	if err != nil {
		return nil, err
	}

	methods, err := readMethods(r, cp)
	if err != nil {
		return nil, err
	}

	classAttrs, err := readAttributes(r, cp)
	if err != nil {
		return nil, err
	}

	cf := &ClassFile{
		Magic:       magic,
		MinorVer:    minor,
		MajorVer:    major,
		CP:          cp,
		AccessFlags: int(accessFlags),
		ThisClass:   int(thisClass),
		SuperClass:  int(superClass),
		Interfaces:  interfaces,
		Fields:      fields,
		Methods:     methods,
		Attributes:  classAttrs,
	}

	for _, f := range fields {
		w := slotWidth(cf.FieldDescriptor(f))
		if f.IsStatic() {
			cf.StaticFieldCount += w
		} else {
			cf.InstanceFieldCount += w
		}
	}

	return cf, nil
}

func readFields(r *byteReader, cp *ConstantPool) ([]FieldInfo, error) {
	count, ok := r.readU2()
	if !ok {
		return nil, eofErr("fields_count")
	}
	fields := make([]FieldInfo, 0, count)
	for i := 0; i < int(count); i++ {
		f, err := readField(r, cp)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// readField ports original_source/fields.c's readField.
func readField(r *byteReader, cp *ConstantPool) (FieldInfo, error) {
	accessFlags, ok1 := r.readU2()
	nameIndex, ok2 := r.readU2()
	descIndex, ok3 := r.readU2()
	if !ok1 || !ok2 || !ok3 {
		return FieldInfo{}, eofErr("field_info")
	}
	if int(accessFlags)&^knownFieldAccessFlags != 0 {
		return FieldInfo{}, status.New(status.USE_OF_RESERVED_FIELD_ACCESS_FLAGS, "reserved field access flag bit set")
	}
	if err := cp.CheckIndex(int(nameIndex), TagUtf8); err != nil {
		return FieldInfo{}, status.New(status.INVALID_NAME_INDEX, err.Error())
	}
	descBytes, err := cp.Utf8Bytes(int(descIndex))
	if err != nil {
		return FieldInfo{}, status.New(status.INVALID_FIELD_DESCRIPTOR_INDEX, err.Error())
	}
	if readFieldDescriptor(descBytes, len(descBytes), true) != len(descBytes) {
		return FieldInfo{}, status.New(status.INVALID_FIELD_DESCRIPTOR_INDEX, "malformed field descriptor")
	}

	attrs, err := readAttributes(r, cp)
	if err != nil {
		return FieldInfo{}, err
	}

	return FieldInfo{
		AccessFlags:     int(accessFlags),
		NameIndex:       int(nameIndex),
		DescriptorIndex: int(descIndex),
		Attributes:      attrs,
	}, nil
}

func readMethods(r *byteReader, cp *ConstantPool) ([]MethodInfo, error) {
	count, ok := r.readU2()
	if !ok {
		return nil, eofErr("methods_count")
	}
	methods := make([]MethodInfo, 0, count)
	for i := 0; i < int(count); i++ {
		m, err := readMethod(r, cp)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func readMethod(r *byteReader, cp *ConstantPool) (MethodInfo, error) {
	accessFlags, ok1 := r.readU2()
	nameIndex, ok2 := r.readU2()
	descIndex, ok3 := r.readU2()
	if !ok1 || !ok2 || !ok3 {
		return MethodInfo{}, eofErr("method_info")
	}
	if int(accessFlags)&^knownMethodAccessFlags != 0 {
		return MethodInfo{}, status.New(status.USE_OF_RESERVED_METHOD_ACCESS_FLAGS, "reserved method access flag bit set")
	}
	if err := cp.CheckIndex(int(nameIndex), TagUtf8); err != nil {
		return MethodInfo{}, status.New(status.INVALID_NAME_INDEX, err.Error())
	}
	descBytes, err := cp.Utf8Bytes(int(descIndex))
	if err != nil {
		return MethodInfo{}, status.New(status.INVALID_METHOD_DESCRIPTOR_INDEX, err.Error())
	}
	if readMethodDescriptor(descBytes, len(descBytes), true) != len(descBytes) {
		return MethodInfo{}, status.New(status.INVALID_METHOD_DESCRIPTOR_INDEX, "malformed method descriptor")
	}

	attrs, err := readAttributes(r, cp)
	if err != nil {
		return MethodInfo{}, err
	}

	return MethodInfo{
		AccessFlags:     int(accessFlags),
		NameIndex:       int(nameIndex),
		DescriptorIndex: int(descIndex),
		Attributes:      attrs,
	}, nil
}
