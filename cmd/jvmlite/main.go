// Command jvmlite is the CLI surface of spec.md §6: load and optionally
// dump and/or execute one .class file. Flag parsing follows the
// cobra/pflag shape github.com/mabhi256-jdiag and github.com/saferwall-pe
// both build their CLIs on, rather than the hand-rolled argv walk the
// teacher's own HandleCli uses -- the rest of the VM's ambient stack
// keeps following the teacher, this one surface instead follows the
// library the wider example pack reaches for.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jvmlite/jvmlite/internal/classfile"
	_ "github.com/jvmlite/jvmlite/internal/gfunction"
	"github.com/jvmlite/jvmlite/internal/status"
	"github.com/jvmlite/jvmlite/internal/trace"
	"github.com/jvmlite/jvmlite/internal/vm"
	"github.com/spf13/cobra"
)

var (
	flagDump      bool
	flagExecute   bool
	flagBOM       bool
	flagClassPath string
	flagTrace     bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jvmlite <class>",
		Short: "a minimal class file reader and bytecode interpreter",
		Args:  cobra.ExactArgs(1),
		RunE:  runJvmlite,
	}
	root.Flags().BoolVarP(&flagDump, "dump", "c", false, "print a human-readable dump of the class file")
	root.Flags().BoolVarP(&flagExecute, "execute", "e", false, "execute main([Ljava/lang/String;)V")
	root.Flags().BoolVarP(&flagBOM, "bom", "b", false, "emit a UTF-8 BOM on stdout before any output")
	root.Flags().StringVarP(&flagClassPath, "classpath", "p", "", "directory .class files are resolved relative to")
	root.Flags().BoolVar(&flagTrace, "trace", false, "enable TRACE-level logging to stderr")
	return root
}

func runJvmlite(cmd *cobra.Command, args []string) error {
	if flagTrace {
		trace.SetLevel(trace.TRACE)
	}
	if flagBOM {
		os.Stdout.Write([]byte{0xEF, 0xBB, 0xBF})
	}

	className := strings.TrimSuffix(args[0], ".class")
	classPath := flagClassPath
	if classPath == "" {
		classPath = "."
	}

	cf, err := classfile.Load(classPath + string(os.PathSeparator) + className + ".class")
	if err != nil {
		return reportFailure(err)
	}

	if flagDump {
		classfile.Dump(os.Stdout, cf)
	}

	if !flagExecute {
		return nil
	}

	machine := vm.New(vm.Config{
		ClassPath: classPath,
		Simulate:  true,
		Stdout:    os.Stdout,
	})
	defer machine.Close()

	if err := machine.RunMain(className); err != nil {
		return reportFailure(err)
	}
	return nil
}

func reportFailure(err error) error {
	if se, ok := err.(*status.Error); ok {
		fmt.Fprintln(os.Stdout, se.Error())
	} else {
		fmt.Fprintln(os.Stdout, err.Error())
	}
	return err
}
