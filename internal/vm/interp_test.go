package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvmlite/jvmlite/internal/classfile"
	_ "github.com/jvmlite/jvmlite/internal/gfunction"
	"github.com/jvmlite/jvmlite/internal/status"
	"github.com/jvmlite/jvmlite/internal/vm"
)

// classBuilder assembles a minimal well-formed .class file byte-for-byte,
// the same way the end-to-end scenarios in spec.md §8 are described: a
// hand-crafted class whose Code attribute contains a specific byte
// sequence, rather than anything a real javac would emit.
type classBuilder struct {
	buf bytes.Buffer
}

func (b *classBuilder) u1(v byte)  { b.buf.WriteByte(v) }
func (b *classBuilder) u2(v int)   { b.buf.WriteByte(byte(v >> 8)); b.buf.WriteByte(byte(v)) }
func (b *classBuilder) u4(v int)   { b.buf.WriteByte(byte(v >> 24)); b.buf.WriteByte(byte(v >> 16)); b.buf.WriteByte(byte(v >> 8)); b.buf.WriteByte(byte(v)) }
func (b *classBuilder) raw(p []byte) { b.buf.Write(p) }

func (b *classBuilder) utf8Entry(s string) {
	b.u1(1) // TagUtf8
	b.u2(len(s))
	b.buf.WriteString(s)
}

func (b *classBuilder) classEntry(nameIdx int) {
	b.u1(7) // TagClass
	b.u2(nameIdx)
}

func (b *classBuilder) natEntry(nameIdx, descIdx int) {
	b.u1(12) // TagNameAndType
	b.u2(nameIdx)
	b.u2(descIdx)
}

func (b *classBuilder) methodrefEntry(classIdx, natIdx int) {
	b.u1(10) // TagMethodref
	b.u2(classIdx)
	b.u2(natIdx)
}

func (b *classBuilder) fieldrefEntry(classIdx, natIdx int) {
	b.u1(9) // TagFieldref
	b.u2(classIdx)
	b.u2(natIdx)
}

// printlnIntClassBytes builds a class TestMain whose main() computes
// 2 + 3 and calls System.out.println(int), per spec.md §8 scenario 2.
func printlnIntClassBytes() []byte {
	var b classBuilder
	b.u4(0xCAFEBABE)
	b.u2(0) // minor
	b.u2(61) // major
	b.u2(18) // constant_pool_count (17 usable entries)

	b.utf8Entry("java/io/PrintStream") // 1
	b.classEntry(1)                    // 2
	b.utf8Entry("println")             // 3
	b.utf8Entry("(I)V")                // 4
	b.natEntry(3, 4)                   // 5
	b.methodrefEntry(2, 5)             // 6
	b.utf8Entry("java/lang/System")    // 7
	b.classEntry(7)                    // 8
	b.utf8Entry("out")                 // 9
	b.utf8Entry("Ljava/io/PrintStream;") // 10
	b.natEntry(9, 10)                  // 11
	b.fieldrefEntry(8, 11)             // 12
	b.utf8Entry("TestMain")            // 13
	b.classEntry(13)                   // 14
	b.utf8Entry("main")                // 15
	b.utf8Entry("([Ljava/lang/String;)V") // 16
	b.utf8Entry("Code")                // 17

	b.u2(0x0021) // access_flags: public + super
	b.u2(14)     // this_class
	b.u2(0)      // super_class
	b.u2(0)      // interfaces_count
	b.u2(0)      // fields_count

	b.u2(1)      // methods_count
	b.u2(0x0009) // public static
	b.u2(15)     // name_index: main
	b.u2(16)     // descriptor_index
	b.u2(1)      // attributes_count

	code := []byte{
		0xB2, 0x00, 0x0C, // getstatic #12
		0x05,             // iconst_2
		0x06,             // iconst_3
		0x60,             // iadd
		0xB6, 0x00, 0x06, // invokevirtual #6
		0xB1, // return
	}
	b.u2(17)                   // attribute_name_index: Code
	b.u4(2 + 2 + 4 + len(code) + 2 + 2) // attribute_length
	b.u2(3)                    // max_stack
	b.u2(1)                    // max_locals
	b.u4(len(code))
	b.raw(code)
	b.u2(0) // exception_table_length
	b.u2(0) // code attributes_count

	b.u2(0) // class attributes_count
	return b.buf.Bytes()
}

// unknownOpcodeClassBytes builds a class whose Code attribute's first
// byte is 0xBA (invokedynamic, which this interpreter has no handler
// for), per spec.md §8 scenario 3.
func unknownOpcodeClassBytes() []byte {
	var b classBuilder
	b.u4(0xCAFEBABE)
	b.u2(0)
	b.u2(61)
	b.u2(6) // constant_pool_count: entries 1..5

	b.utf8Entry("Bad")                     // 1
	b.classEntry(1)                        // 2
	b.utf8Entry("main")                    // 3
	b.utf8Entry("([Ljava/lang/String;)V") // 4
	b.utf8Entry("Code")                    // 5

	b.u2(0x0021)
	b.u2(2)
	b.u2(0)
	b.u2(0)
	b.u2(0)

	b.u2(1)
	b.u2(0x0009)
	b.u2(3)
	b.u2(4)
	b.u2(1)

	code := []byte{0xBA}
	b.u2(5)
	b.u4(2 + 2 + 4 + len(code) + 2 + 2)
	b.u2(1)
	b.u2(1)
	b.u4(len(code))
	b.raw(code)
	b.u2(0)
	b.u2(0)

	b.u2(0)
	return b.buf.Bytes()
}

func TestRunMainPrintsSumOfTwoAndThree(t *testing.T) {
	cf, err := classfile.LoadBytes(printlnIntClassBytes())
	require.NoError(t, err)

	var out bytes.Buffer
	machine := vm.New(vm.Config{Simulate: true, Stdout: &out})
	machine.Classes.Add(cf)

	err = machine.RunMain("TestMain")
	require.NoError(t, err)
	require.Equal(t, "5\n", out.String())
	require.Equal(t, status.OK, machine.Status)
}

func TestRunMainUnknownOpcode(t *testing.T) {
	cf, err := classfile.LoadBytes(unknownOpcodeClassBytes())
	require.NoError(t, err)

	machine := vm.New(vm.Config{Simulate: true, Stdout: &bytes.Buffer{}})
	machine.Classes.Add(cf)

	err = machine.RunMain("Bad")
	require.Error(t, err)
	require.True(t, status.Is(err, status.JVM_STATUS_UNKNOWN_INSTRUCTION))
}
