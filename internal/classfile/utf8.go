package classfile

// nextUTF8Character decodes one Modified-UTF-8 scalar from bytes[:length]
// per JVM Specification §4.4.7, returning the decoded codepoint and the
// number of bytes consumed. It returns consumed=0 on malformed input.
// Modified-UTF-8 differs from standard UTF-8 in two ways the stdlib's
// unicode/utf8 package does not model: the NUL byte is encoded as the
// two-byte sequence 0xC0 0x80, and characters above U+FFFF are encoded as
// a surrogate pair of two three-byte sequences rather than one four-byte
// sequence. Nothing in the retrieval pack implements Modified-UTF-8, so
// this is hand-rolled the way the C original (original_source/*.c, via
// its utf8.c) and jacobin's equivalent decoder are.
func nextUTF8Character(bytes []byte, length int) (codepoint rune, consumed int) {
	if length <= 0 || len(bytes) == 0 {
		return 0, 0
	}

	b0 := bytes[0]

	switch {
	case b0&0x80 == 0: // 0xxxxxxx, but not the encoded-NUL form
		if b0 == 0 {
			return 0, 0
		}
		return rune(b0), 1

	case b0&0xE0 == 0xC0: // 110xxxxx 10xxxxxx
		if length < 2 {
			return 0, 0
		}
		b1 := bytes[1]
		if b1&0xC0 != 0x80 {
			return 0, 0
		}
		cp := (rune(b0&0x1F) << 6) | rune(b1&0x3F)
		return cp, 2

	case b0&0xF0 == 0xE0: // 1110xxxx 10xxxxxx 10xxxxxx
		if length < 3 {
			return 0, 0
		}
		b1, b2 := bytes[1], bytes[2]
		if b1&0xC0 != 0x80 || b2&0xC0 != 0x80 {
			return 0, 0
		}
		cp := (rune(b0&0x0F) << 12) | (rune(b1&0x3F) << 6) | rune(b2&0x3F)
		return cp, 3

	default:
		return 0, 0
	}
}

// cmpUTF8 compares two Modified-UTF-8 byte sequences for byte-exact
// equality, the same check original_source/src/jvm.c's isClassSuperOf
// uses to detect a class naming itself as its own superclass; LoadBytes
// runs that same check on this_class/super_class right after parsing
// them.
func cmpUTF8(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// cmpUTF8Ascii compares a Modified-UTF-8 byte sequence against an ASCII
// Go string. readAttribute uses this to dispatch on an attribute's raw
// name bytes instead of decoding to a string first.
func cmpUTF8Ascii(a []byte, s string) bool {
	if len(a) != len(s) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if a[i] != s[i] {
			return false
		}
	}
	return true
}
