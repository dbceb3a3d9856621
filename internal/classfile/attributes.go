package classfile

import (
	"fmt"

	"github.com/jvmlite/jvmlite/internal/status"
)

// Attribute is the sum type spec.md's Design Notes §9 calls for: one
// variant per attribute kind instead of a void* payload dispatched on a
// separate type tag. Each concrete type below implements Attribute solely
// by existing; callers type-switch on the concrete type they expect
// (e.g. a Code attribute) rather than inspecting a Kind() enum, so adding
// a variant can never desync a parallel tag field from its payload.
type Attribute interface {
	isAttribute()
}

type ConstantValueAttribute struct {
	ConstantValueIndex int
}

type SourceFileAttribute struct {
	SourceFileIndex int
}

type InnerClassesEntry struct {
	InnerClassIndex      uint16
	OuterClassIndex      uint16
	InnerNameIndex       uint16
	InnerClassAccessFlag uint16
}

type InnerClassesAttribute struct {
	Classes []InnerClassesEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LineNumberTableAttribute struct {
	Lines []LineNumberEntry
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16 // 0 means "any" (finally); otherwise a Class index
}

type CodeAttribute struct {
	MaxStack       int
	MaxLocals      int
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []Attribute // nested attributes (e.g. LineNumberTable)
}

type ExceptionsAttribute struct {
	ExceptionIndexes []uint16 // indexes of Class entries
}

type DeprecatedAttribute struct{}

type UnknownAttribute struct {
	Name  string
	Bytes []byte
}

func (ConstantValueAttribute) isAttribute()   {}
func (SourceFileAttribute) isAttribute()      {}
func (InnerClassesAttribute) isAttribute()    {}
func (LineNumberTableAttribute) isAttribute() {}
func (CodeAttribute) isAttribute()            {}
func (ExceptionsAttribute) isAttribute()      {}
func (DeprecatedAttribute) isAttribute()      {}
func (UnknownAttribute) isAttribute()         {}

// readAttribute reads name_index and length, validates name_index points
// to a Utf8 entry, dispatches on the name's raw Utf8 bytes, and checks -- for
// every branch, including Unknown -- that the bytes consumed equal the
// declared length. Ported from original_source/attributes.c's
// readAttribute, which this keeps the same IF_ATTR_CHECK chain shape for.
func readAttribute(r *byteReader, cp *ConstantPool) (Attribute, error) {
	nameIndex, ok := r.readU2()
	if !ok {
		return nil, eofErr("attribute name_index")
	}
	length, ok := r.readU4()
	if !ok {
		return nil, eofErr("attribute length")
	}

	nameBytes, err := cp.Utf8Bytes(int(nameIndex))
	if err != nil {
		return nil, status.New(status.INVALID_NAME_INDEX, "attribute name_index: "+err.Error())
	}
	name := string(nameBytes)

	startPos := r.totalBytesRead()
	var attr Attribute

	switch {
	case cmpUTF8Ascii(nameBytes, "ConstantValue"):
		attr, err = readConstantValueAttribute(r, cp)
	case cmpUTF8Ascii(nameBytes, "SourceFile"):
		attr, err = readSourceFileAttribute(r, cp)
	case cmpUTF8Ascii(nameBytes, "InnerClasses"):
		attr, err = readInnerClassesAttribute(r)
	case cmpUTF8Ascii(nameBytes, "LineNumberTable"):
		attr, err = readLineNumberTableAttribute(r)
	case cmpUTF8Ascii(nameBytes, "Code"):
		attr, err = readCodeAttribute(r, cp)
	case cmpUTF8Ascii(nameBytes, "Exceptions"):
		attr, err = readExceptionsAttribute(r)
	case cmpUTF8Ascii(nameBytes, "Deprecated"):
		attr = DeprecatedAttribute{}
	default:
		raw, ok := r.readBytes(int(length))
		if !ok {
			return nil, status.New(status.UNEXPECTED_EOF, "unexpected EOF reading attribute "+name)
		}
		buf := make([]byte, len(raw))
		copy(buf, raw)
		attr = UnknownAttribute{Name: name, Bytes: buf}
	}
	if err != nil {
		return nil, err
	}

	consumed := r.totalBytesRead() - startPos
	if uint32(consumed) != length {
		return nil, status.New(status.ATTRIBUTE_LENGTH_MISMATCH,
			fmt.Sprintf("attribute %s declared length %d, consumed %d", name, length, consumed))
	}

	return attr, nil
}

func readConstantValueAttribute(r *byteReader, cp *ConstantPool) (Attribute, error) {
	idx, ok := r.readU2()
	if !ok {
		return nil, eofErr("ConstantValue.constantvalue_index")
	}
	if tag, valid := cp.tagAt(int(idx)); !valid ||
		(tag != TagInteger && tag != TagFloat && tag != TagLong && tag != TagDouble && tag != TagString) {
		return nil, status.New(status.ATTRIBUTE_INVALID_CONSTANTVALUE_INDEX, "constantvalue_index does not reference a constant")
	}
	return ConstantValueAttribute{ConstantValueIndex: int(idx)}, nil
}

func readSourceFileAttribute(r *byteReader, cp *ConstantPool) (Attribute, error) {
	idx, ok := r.readU2()
	if !ok {
		return nil, eofErr("SourceFile.sourcefile_index")
	}
	if err := cp.CheckIndex(int(idx), TagUtf8); err != nil {
		return nil, status.New(status.ATTRIBUTE_INVALID_SOURCEFILE_INDEX, err.Error())
	}
	return SourceFileAttribute{SourceFileIndex: int(idx)}, nil
}

func readInnerClassesAttribute(r *byteReader) (Attribute, error) {
	n, ok := r.readU2()
	if !ok {
		return nil, eofErr("InnerClasses.number_of_classes")
	}
	out := make([]InnerClassesEntry, 0, n)
	for i := 0; i < int(n); i++ {
		inner, ok1 := r.readU2()
		outer, ok2 := r.readU2()
		name, ok3 := r.readU2()
		flags, ok4 := r.readU2()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, eofErr("InnerClasses entry")
		}
		out = append(out, InnerClassesEntry{inner, outer, name, flags})
	}
	return InnerClassesAttribute{Classes: out}, nil
}

func readLineNumberTableAttribute(r *byteReader) (Attribute, error) {
	n, ok := r.readU2()
	if !ok {
		return nil, eofErr("LineNumberTable.line_number_table_length")
	}
	out := make([]LineNumberEntry, 0, n)
	for i := 0; i < int(n); i++ {
		startPC, ok1 := r.readU2()
		line, ok2 := r.readU2()
		if !ok1 || !ok2 {
			return nil, eofErr("LineNumberTable entry")
		}
		out = append(out, LineNumberEntry{startPC, line})
	}
	return LineNumberTableAttribute{Lines: out}, nil
}

func readExceptionsAttribute(r *byteReader) (Attribute, error) {
	n, ok := r.readU2()
	if !ok {
		return nil, eofErr("Exceptions.number_of_exceptions")
	}
	out := make([]uint16, 0, n)
	for i := 0; i < int(n); i++ {
		idx, ok := r.readU2()
		if !ok {
			return nil, eofErr("Exceptions entry")
		}
		out = append(out, idx)
	}
	return ExceptionsAttribute{ExceptionIndexes: out}, nil
}

// readCodeAttribute reads max_stack, max_locals, the bytecode array, the
// exception table (parsed but, per spec.md §4.10/Design Notes §9, never
// consulted by the interpreter -- reserved for future athrow/handler
// dispatch) and the Code attribute's own nested attributes.
func readCodeAttribute(r *byteReader, cp *ConstantPool) (Attribute, error) {
	maxStack, ok1 := r.readU2()
	maxLocals, ok2 := r.readU2()
	codeLength, ok3 := r.readU4()
	if !ok1 || !ok2 || !ok3 {
		return nil, eofErr("Code header")
	}
	code, ok := r.readBytes(int(codeLength))
	if !ok {
		return nil, eofErr("Code.code")
	}
	codeBuf := make([]byte, len(code))
	copy(codeBuf, code)

	excCount, ok := r.readU2()
	if !ok {
		return nil, eofErr("Code.exception_table_length")
	}
	excTable := make([]ExceptionTableEntry, 0, excCount)
	for i := 0; i < int(excCount); i++ {
		start, ok1 := r.readU2()
		end, ok2 := r.readU2()
		handler, ok3 := r.readU2()
		catch, ok4 := r.readU2()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, eofErr("Code exception table entry")
		}
		excTable = append(excTable, ExceptionTableEntry{start, end, handler, catch})
	}

	attrCount, ok := r.readU2()
	if !ok {
		return nil, eofErr("Code.attributes_count")
	}
	attrs := make([]Attribute, 0, attrCount)
	for i := 0; i < int(attrCount); i++ {
		a, err := readAttribute(r, cp)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}

	return CodeAttribute{
		MaxStack:       int(maxStack),
		MaxLocals:      int(maxLocals),
		Code:           codeBuf,
		ExceptionTable: excTable,
		Attributes:     attrs,
	}, nil
}

// readAttributes reads an attributes_count followed by that many
// attributes, the shape shared by classes, fields, methods and Code.
func readAttributes(r *byteReader, cp *ConstantPool) ([]Attribute, error) {
	count, ok := r.readU2()
	if !ok {
		return nil, eofErr("attributes_count")
	}
	attrs := make([]Attribute, 0, count)
	for i := 0; i < int(count); i++ {
		a, err := readAttribute(r, cp)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// FindCode returns the Code attribute among attrs, if any.
func FindCode(attrs []Attribute) (CodeAttribute, bool) {
	for _, a := range attrs {
		if c, ok := a.(CodeAttribute); ok {
			return c, true
		}
	}
	return CodeAttribute{}, false
}

// IsDeprecated reports whether attrs contains a Deprecated marker.
func IsDeprecated(attrs []Attribute) bool {
	for _, a := range attrs {
		if _, ok := a.(DeprecatedAttribute); ok {
			return true
		}
	}
	return false
}
