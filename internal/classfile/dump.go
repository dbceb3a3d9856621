package classfile

import (
	"fmt"
	"io"
)

// Dump prints a human-readable rendering of a parsed class file, the way
// the original's printClassFileInfo (original_source/src/jvm.c) walks
// magic/version, constant pool, access flags, fields, methods and
// attributes -- restyled, not transcribed, in jacobin's trace-line idiom.
func Dump(w io.Writer, cf *ClassFile) {
	fmt.Fprintf(w, "magic: 0x%08X\n", cf.Magic)
	fmt.Fprintf(w, "version: %d.%d\n", cf.MajorVer, cf.MinorVer)
	fmt.Fprintf(w, "this_class: %s\n", cf.ThisClassName())
	if cf.SuperClass != 0 {
		fmt.Fprintf(w, "super_class: %s\n", cf.SuperClassName())
	}
	fmt.Fprintf(w, "access_flags: 0x%04X\n", cf.AccessFlags)

	if len(cf.Interfaces) > 0 {
		fmt.Fprintln(w, "interfaces:")
		for _, idx := range cf.Interfaces {
			name, _ := cf.CP.ClassName(idx)
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	fmt.Fprintf(w, "fields: %d (static=%d, instance=%d)\n", len(cf.Fields), cf.StaticFieldCount, cf.InstanceFieldCount)
	for _, f := range cf.Fields {
		fmt.Fprintf(w, "  %s %s (flags=0x%04X)\n", cf.FieldName(f), cf.FieldDescriptor(f), f.AccessFlags)
	}

	fmt.Fprintf(w, "methods: %d\n", len(cf.Methods))
	for _, m := range cf.Methods {
		fmt.Fprintf(w, "  %s%s (flags=0x%04X)\n", cf.MethodName(m), cf.MethodDescriptor(m), m.AccessFlags)
		if code, ok := FindCode(m.Attributes); ok {
			fmt.Fprintf(w, "    max_stack=%d max_locals=%d code_length=%d\n", code.MaxStack, code.MaxLocals, len(code.Code))
		}
		if IsDeprecated(m.Attributes) {
			fmt.Fprintln(w, "    deprecated")
		}
	}

	for _, a := range cf.Attributes {
		switch at := a.(type) {
		case SourceFileAttribute:
			name, _ := cf.CP.Utf8String(at.SourceFileIndex)
			fmt.Fprintf(w, "source_file: %s\n", name)
		case DeprecatedAttribute:
			fmt.Fprintln(w, "class is deprecated")
		}
	}
}
