package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lookbusy1344/worm/config"
	"github.com/lookbusy1344/worm/console"
	"github.com/lookbusy1344/worm/lang"
	"github.com/lookbusy1344/worm/lowering"
	"github.com/lookbusy1344/worm/slim"
	"github.com/lookbusy1344/worm/vm"
)

var (
	cfg       *config.Config
	maxSteps  uint64
	traceFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "worm",
	Short: "worm compiles and runs the restricted integer-only scripting language",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if maxSteps != 0 {
			cfg.Execution.MaxSteps = maxSteps
		}
		if traceFlag {
			cfg.Execution.EnableTrace = true
		}
		return nil
	},
}

var compileCmd = &cobra.Command{
	Use:   "compile [files...]",
	Short: "compile source to SLIM assembly text, written to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}
		asmText, err := compileSource(source)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(os.Stdout, asmText)
		return err
	},
}

var interpretCmd = &cobra.Command{
	Use:   "interpret <path>",
	Short: "run a SLIM assembly file against the process console",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0]) // #nosec G304 -- user-supplied program path
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		resolved, err := assembleSlim(splitLines(string(data)))
		if err != nil {
			return err
		}
		return runResolved(resolved)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "compile then immediately interpret, without keeping the SLIM text",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}
		asmText, err := compileSource(source)
		if err != nil {
			return err
		}
		resolved, err := assembleSlim(splitLines(asmText))
		if err != nil {
			return err
		}
		return runResolved(resolved)
	},
}

func readSource(files []string) (string, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	var b strings.Builder
	for _, path := range files {
		data, err := os.ReadFile(path) // #nosec G304 -- user-supplied program path
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		b.Write(data)
		if !strings.HasSuffix(string(data), "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func compileSource(source string) (string, error) {
	mod, err := lang.Parse(source)
	if err != nil {
		return "", fmt.Errorf("syntax error: %w", err)
	}
	asmText, err := lowering.Lower(mod)
	if err != nil {
		return "", fmt.Errorf("compile error: %w", err)
	}
	return asmText, nil
}

func assembleSlim(lines []string) ([]slim.ResolvedCommand, error) {
	parsed, errs := slim.Parse(lines)
	if errs.HasErrors() {
		return nil, errs
	}
	named, errs := slim.Name(parsed)
	if errs.HasErrors() {
		return nil, errs
	}
	resolved, errs := slim.Resolve(named)
	if errs.HasErrors() {
		return nil, errs
	}
	return resolved, nil
}

func runResolved(resolved []slim.ResolvedCommand) error {
	con := console.NewStdIOConsole(os.Stdin, os.Stdout, os.Stderr)
	machine := vm.New(resolved, con)
	if cfg.Execution.MaxSteps != 0 {
		machine.MaxSteps = cfg.Execution.MaxSteps
	}
	if cfg.Execution.EnableTrace {
		traceOut, closeTrace, err := openTraceOutput()
		if err != nil {
			return err
		}
		defer closeTrace()
		machine.Trace = func(pc int, cmd slim.ResolvedCommand) {
			fmt.Fprintf(traceOut, "%04d: %s %v\n", pc, cmd.Cmd, cmd.Args)
		}
	}
	if err := machine.Run(); err != nil {
		con.WriteError(colorError(err.Error()))
		return err
	}
	return nil
}

// openTraceOutput returns the destination for `--trace` output: the file
// named by cfg.Execution.TraceFile if set, else stderr. The returned
// close function is always safe to defer, even when stderr was used.
func openTraceOutput() (io.Writer, func(), error) {
	if cfg.Execution.TraceFile == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.Create(cfg.Execution.TraceFile) // #nosec G304 -- user-configured trace path
	if err != nil {
		return nil, nil, fmt.Errorf("open trace file %s: %w", cfg.Execution.TraceFile, err)
	}
	return f, func() { f.Close() }, nil
}

// colorError wraps a diagnostic in ANSI red when cfg.Display.ColorOutput
// is set; stderr is usually a terminal, so this is the one place in the
// driver where color has somewhere real to go.
func colorError(msg string) string {
	if cfg == nil || !cfg.Display.ColorOutput {
		return msg
	}
	return "\x1b[31m" + msg + "\x1b[0m"
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

func init() {
	rootCmd.PersistentFlags().Uint64Var(&maxSteps, "max-steps", 0, "override the VM's step limit (0 uses config/default)")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "emit one line per executed SLIM command to the configured trace file, or stderr")
	rootCmd.AddCommand(compileCmd, interpretCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError(err.Error()))
		os.Exit(1)
	}
}
