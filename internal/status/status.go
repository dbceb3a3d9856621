// Package status defines the distinguished VM status codes from which the
// loader, resolver and interpreter never recover internally: every
// operation in jvmlite returns one of these (wrapped as an error) instead
// of a free-form error string, mirroring the C original's JVM_STATUS_*
// enum (original_source/src/jvm.c) and jacobin's shutdown exit-code table.
package status

import "fmt"

type Code int

const (
	OK Code = iota
	UNEXPECTED_EOF
	INVALID_NAME_INDEX
	ATTRIBUTE_LENGTH_MISMATCH
	ATTRIBUTE_INVALID_CONSTANTVALUE_INDEX
	ATTRIBUTE_INVALID_SOURCEFILE_INDEX
	ATTRIBUTE_INVALID_INNERCLASS_INDEX
	ATTRIBUTE_INVALID_EXCEPTION_INDEX
	USE_OF_RESERVED_CLASS_ACCESS_FLAGS
	USE_OF_RESERVED_FIELD_ACCESS_FLAGS
	USE_OF_RESERVED_METHOD_ACCESS_FLAGS
	INVALID_FIELD_DESCRIPTOR_INDEX
	INVALID_METHOD_DESCRIPTOR_INDEX
	INVALID_MAGIC_NUMBER
	INVALID_CONSTANT_POOL_TAG
	INVALID_CONSTANT_POOL_INDEX
	MEMORY_ALLOCATION_FAILED
	JVM_STATUS_CLASS_RESOLUTION_FAILED
	JVM_STATUS_MAIN_METHOD_NOT_FOUND
	JVM_STATUS_UNKNOWN_INSTRUCTION
	JVM_STATUS_OUT_OF_MEMORY
	JVM_STATUS_NO_CLASS_LOADED
	JVM_STATUS_BAD_DESCRIPTOR
	CLASS_IS_OWN_SUPERCLASS
)

var names = map[Code]string{
	OK:                                    "OK",
	UNEXPECTED_EOF:                        "UNEXPECTED_EOF",
	INVALID_NAME_INDEX:                    "INVALID_NAME_INDEX",
	ATTRIBUTE_LENGTH_MISMATCH:             "ATTRIBUTE_LENGTH_MISMATCH",
	ATTRIBUTE_INVALID_CONSTANTVALUE_INDEX: "ATTRIBUTE_INVALID_CONSTANTVALUE_INDEX",
	ATTRIBUTE_INVALID_SOURCEFILE_INDEX:    "ATTRIBUTE_INVALID_SOURCEFILE_INDEX",
	ATTRIBUTE_INVALID_INNERCLASS_INDEX:    "ATTRIBUTE_INVALID_INNERCLASS_INDEX",
	ATTRIBUTE_INVALID_EXCEPTION_INDEX:     "ATTRIBUTE_INVALID_EXCEPTION_INDEX",
	USE_OF_RESERVED_CLASS_ACCESS_FLAGS:    "USE_OF_RESERVED_CLASS_ACCESS_FLAGS",
	USE_OF_RESERVED_FIELD_ACCESS_FLAGS:    "USE_OF_RESERVED_FIELD_ACCESS_FLAGS",
	USE_OF_RESERVED_METHOD_ACCESS_FLAGS:   "USE_OF_RESERVED_METHOD_ACCESS_FLAGS",
	INVALID_FIELD_DESCRIPTOR_INDEX:        "INVALID_FIELD_DESCRIPTOR_INDEX",
	INVALID_METHOD_DESCRIPTOR_INDEX:       "INVALID_METHOD_DESCRIPTOR_INDEX",
	INVALID_MAGIC_NUMBER:                  "INVALID_MAGIC_NUMBER",
	INVALID_CONSTANT_POOL_TAG:             "INVALID_CONSTANT_POOL_TAG",
	INVALID_CONSTANT_POOL_INDEX:           "INVALID_CONSTANT_POOL_INDEX",
	MEMORY_ALLOCATION_FAILED:              "MEMORY_ALLOCATION_FAILED",
	JVM_STATUS_CLASS_RESOLUTION_FAILED:    "JVM_STATUS_CLASS_RESOLUTION_FAILED",
	JVM_STATUS_MAIN_METHOD_NOT_FOUND:      "JVM_STATUS_MAIN_METHOD_NOT_FOUND",
	JVM_STATUS_UNKNOWN_INSTRUCTION:        "JVM_STATUS_UNKNOWN_INSTRUCTION",
	JVM_STATUS_OUT_OF_MEMORY:              "JVM_STATUS_OUT_OF_MEMORY",
	JVM_STATUS_NO_CLASS_LOADED:            "JVM_STATUS_NO_CLASS_LOADED",
	JVM_STATUS_BAD_DESCRIPTOR:             "JVM_STATUS_BAD_DESCRIPTOR",
	CLASS_IS_OWN_SUPERCLASS:               "CLASS_IS_OWN_SUPERCLASS",
}

func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("STATUS(%d)", int(c))
}

// Error is the VM-wide error type: a status code plus the detail that
// produced it. Every layer (reader, pool, attributes, loader, resolver,
// interpreter) returns this instead of ad hoc errors, so the CLI can
// print one consistent "status: detail" line. The CLI's exit status is 1
// for every failure; it does not vary with Code.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func New(c Code, detail string) *Error {
	return &Error{Code: c, Detail: detail}
}

// Is reports whether err carries the given status code, letting callers
// branch on failure kind the way jacobin callers inspect shutdown codes.
func Is(err error, c Code) bool {
	se, ok := err.(*Error)
	return ok && se.Code == c
}
