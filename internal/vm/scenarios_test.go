package vm_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvmlite/jvmlite/internal/classfile"
	_ "github.com/jvmlite/jvmlite/internal/gfunction"
	"github.com/jvmlite/jvmlite/internal/status"
	"github.com/jvmlite/jvmlite/internal/vm"
)

// emptyMainClassBytes builds a class Empty whose main does nothing but
// return, per spec.md §8 scenario 1.
func emptyMainClassBytes() []byte {
	var b classBuilder
	b.u4(0xCAFEBABE)
	b.u2(0)
	b.u2(61)
	b.u2(6) // constant_pool_count

	b.utf8Entry("Empty")                   // 1
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

	code := []byte{0xB1} // return
	b.u2(5)
	b.u4(2 + 2 + 4 + len(code) + 2 + 2)
	b.u2(0) // max_stack
	b.u2(1) // max_locals
	b.u4(len(code))
	b.raw(code)
	b.u2(0)
	b.u2(0)

	b.u2(0)
	return b.buf.Bytes()
}

// missingSuperclassClassBytes builds a class A declaring superclass B,
// where no B.class is ever made available, per spec.md §8 scenario 4.
func missingSuperclassClassBytes() []byte {
	var b classBuilder
	b.u4(0xCAFEBABE)
	b.u2(0)
	b.u2(61)
	b.u2(8)

	b.utf8Entry("B")                       // 1
	b.classEntry(1)                        // 2
	b.utf8Entry("A")                       // 3
	b.classEntry(3)                        // 4
	b.utf8Entry("main")                    // 5
	b.utf8Entry("([Ljava/lang/String;)V") // 6
	b.utf8Entry("Code")                    // 7

	b.u2(0x0021)
	b.u2(4) // this_class: A
	b.u2(2) // super_class: B
	b.u2(0)
	b.u2(0)

	b.u2(1)
	b.u2(0x0009)
	b.u2(5)
	b.u2(6)
	b.u2(1)

	code := []byte{0xB1}
	b.u2(7)
	b.u4(2 + 2 + 4 + len(code) + 2 + 2)
	b.u2(0)
	b.u2(1)
	b.u4(len(code))
	b.raw(code)
	b.u2(0)
	b.u2(0)

	b.u2(0)
	return b.buf.Bytes()
}

// clinitPrintCharClassBytes builds a class named className, with the
// given superclass internal name ("" for none), whose <clinit> prints one
// char via System.out.println(char). Used for the static-initializer
// ordering scenario (spec.md §8 scenario 5).
func clinitPrintCharClassBytes(className, superName string, ch byte, withMain bool) []byte {
	var b classBuilder
	b.u4(0xCAFEBABE)
	b.u2(0)
	b.u2(61)

	// Constant pool entries common to every variant, laid out by hand so
	// indices below stay in sync with what's written.
	hasSuper := superName != ""

	entries := []func(){}
	idx := 0
	next := func() int { idx++; return idx }

	printStreamUtf8 := next()
	printStreamClass := next()
	printlnUtf8 := next()
	printlnDescUtf8 := next()
	printlnNat := next()
	printlnMethodref := next()
	systemUtf8 := next()
	systemClass := next()
	outUtf8 := next()
	outDescUtf8 := next()
	outNat := next()
	outFieldref := next()
	thisNameUtf8 := next()
	thisClass := next()
	var superNameUtf8, superClass int
	if hasSuper {
		superNameUtf8 = next()
		superClass = next()
	}
	clinitNameUtf8 := next()
	voidDescUtf8 := next()
	var mainNameUtf8, mainDescUtf8 int
	if withMain {
		mainNameUtf8 = next()
		mainDescUtf8 = next()
	}
	codeNameUtf8 := next()

	entries = append(entries,
		func() { b.utf8Entry("java/io/PrintStream") },
		func() { b.classEntry(printStreamUtf8) },
		func() { b.utf8Entry("println") },
		func() { b.utf8Entry("(C)V") },
		func() { b.natEntry(printlnUtf8, printlnDescUtf8) },
		func() { b.methodrefEntry(printStreamClass, printlnNat) },
		func() { b.utf8Entry("java/lang/System") },
		func() { b.classEntry(systemUtf8) },
		func() { b.utf8Entry("out") },
		func() { b.utf8Entry("Ljava/io/PrintStream;") },
		func() { b.natEntry(outUtf8, outDescUtf8) },
		func() { b.fieldrefEntry(systemClass, outNat) },
		func() { b.utf8Entry(className) },
		func() { b.classEntry(thisNameUtf8) },
	)
	if hasSuper {
		entries = append(entries,
			func() { b.utf8Entry(superName) },
			func() { b.classEntry(superNameUtf8) },
		)
	}
	entries = append(entries,
		func() { b.utf8Entry("<clinit>") },
		func() { b.utf8Entry("()V") },
	)
	if withMain {
		entries = append(entries,
			func() { b.utf8Entry("main") },
			func() { b.utf8Entry("([Ljava/lang/String;)V") },
		)
	}
	entries = append(entries, func() { b.utf8Entry("Code") })

	b.u2(idx + 1) // constant_pool_count
	for _, e := range entries {
		e()
	}

	b.u2(0x0021) // access_flags
	b.u2(thisClass)
	if hasSuper {
		b.u2(superClass)
	} else {
		b.u2(0)
	}
	b.u2(0) // interfaces_count
	b.u2(0) // fields_count

	methodCount := 1
	if withMain {
		methodCount = 2
	}
	b.u2(methodCount)

	clinitCode := []byte{
		0xB2, byte(outFieldref >> 8), byte(outFieldref), // getstatic out
		0x10, ch, // bipush ch
		0xB6, byte(printlnMethodref >> 8), byte(printlnMethodref), // invokevirtual println(C)V
		0xB1, // return
	}
	b.u2(0x0008) // static
	b.u2(clinitNameUtf8)
	b.u2(voidDescUtf8)
	b.u2(1)
	b.u2(codeNameUtf8)
	b.u4(2 + 2 + 4 + len(clinitCode) + 2 + 2)
	b.u2(2) // max_stack
	b.u2(0) // max_locals
	b.u4(len(clinitCode))
	b.raw(clinitCode)
	b.u2(0)
	b.u2(0)

	if withMain {
		mainCode := []byte{0xB1}
		b.u2(0x0009)
		b.u2(mainNameUtf8)
		b.u2(mainDescUtf8)
		b.u2(1)
		b.u2(codeNameUtf8)
		b.u4(2 + 2 + 4 + len(mainCode) + 2 + 2)
		b.u2(0)
		b.u2(1)
		b.u4(len(mainCode))
		b.raw(mainCode)
		b.u2(0)
		b.u2(0)
	}

	b.u2(0) // class attributes_count
	return b.buf.Bytes()
}

// zeroLengthArrayClassBytes builds a class whose main allocates a
// zero-length int array and prints its length, per spec.md §8 scenario 6.
func zeroLengthArrayClassBytes() []byte {
	var b classBuilder
	b.u4(0xCAFEBABE)
	b.u2(0)
	b.u2(61)
	b.u2(18)

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
	b.utf8Entry("ArrTest")             // 13
	b.classEntry(13)                   // 14
	b.utf8Entry("main")                // 15
	b.utf8Entry("([Ljava/lang/String;)V") // 16
	b.utf8Entry("Code")                // 17

	b.u2(0x0021)
	b.u2(14)
	b.u2(0)
	b.u2(0)
	b.u2(0)

	b.u2(1)
	b.u2(0x0009)
	b.u2(15)
	b.u2(16)
	b.u2(1)

	code := []byte{
		0xB2, 0x00, 0x0C, // getstatic #12 (System.out)
		0x03,       // iconst_0 (array length)
		0xBC, 0x0A, // newarray T_INT
		0xBE,             // arraylength
		0xB6, 0x00, 0x06, // invokevirtual #6 (println(I)V)
		0xB1, // return
	}
	b.u2(17)
	b.u4(2 + 2 + 4 + len(code) + 2 + 2)
	b.u2(2)
	b.u2(1)
	b.u4(len(code))
	b.raw(code)
	b.u2(0)
	b.u2(0)

	b.u2(0)
	return b.buf.Bytes()
}

func TestRunMainEmptyMainProducesNoOutput(t *testing.T) {
	cf, err := classfile.LoadBytes(emptyMainClassBytes())
	require.NoError(t, err)

	var out bytes.Buffer
	machine := vm.New(vm.Config{Simulate: true, Stdout: &out})
	machine.Classes.Add(cf)

	err = machine.RunMain("Empty")
	require.NoError(t, err)
	require.Empty(t, out.String())
	require.Equal(t, status.OK, machine.Status)
}

func TestRunMainMissingSuperclassFailsResolution(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.class"), missingSuperclassClassBytes(), 0o644))

	machine := vm.New(vm.Config{ClassPath: dir, Simulate: true, Stdout: &bytes.Buffer{}})
	err := machine.RunMain("A")
	require.Error(t, err)
	require.True(t, status.Is(err, status.JVM_STATUS_CLASS_RESOLUTION_FAILED))
}

func TestRunMainStaticInitializerOrdering(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Parent.class"),
		clinitPrintCharClassBytes("Parent", "", 'P', false), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Child.class"),
		clinitPrintCharClassBytes("Child", "Parent", 'C', true), 0o644))

	var out bytes.Buffer
	machine := vm.New(vm.Config{ClassPath: dir, Simulate: true, Stdout: &out})

	err := machine.RunMain("Child")
	require.NoError(t, err)
	require.Equal(t, "P\nC\n", out.String())
}

func TestRunMainZeroLengthArray(t *testing.T) {
	cf, err := classfile.LoadBytes(zeroLengthArrayClassBytes())
	require.NoError(t, err)

	var out bytes.Buffer
	machine := vm.New(vm.Config{Simulate: true, Stdout: &out})
	machine.Classes.Add(cf)

	err = machine.RunMain("ArrTest")
	require.NoError(t, err)
	require.Equal(t, "0\n", out.String())
	require.Equal(t, status.OK, machine.Status)
}
