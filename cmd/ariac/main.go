// Command ariac is the compiler driver: it owns flags, file I/O, exit
// codes, and terminal output, and never touches any of that from inside
// interp.Compiler itself.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aria-lang/ariac/internal/ctfe"
	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/lexer"
	"github.com/aria-lang/ariac/internal/preprocess"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/interp"
)

var (
	flagIncludes   []string
	flagDefines    []string
	flagStrict     bool
	flagVerbose    bool
	flagEmitIR     bool
	flagEmitTokens bool
	flagModuleMode bool
	flagMaxSteps   int
)

var rootCmd = &cobra.Command{
	Use:   "ariac [path]",
	Short: "Aria compiler",
	Long:  "ariac compiles Aria source into LLVM IR: preprocess, lex, parse, resolve, check, emit.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.Flags().StringArrayVarP(&flagIncludes, "include", "I", nil, "add a directory to the %include search path")
	rootCmd.Flags().StringArrayVarP(&flagDefines, "define", "D", nil, "predefine a preprocessor symbol as name=value")
	rootCmd.Flags().BoolVar(&flagStrict, "strict", false, "treat warnings as errors")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log each pipeline phase's timing")
	rootCmd.Flags().BoolVar(&flagEmitIR, "emit-llvm", false, "print the emitted LLVM IR to stdout")
	rootCmd.Flags().BoolVar(&flagEmitTokens, "emit-tokens", false, "print the token stream instead of compiling")
	rootCmd.Flags().BoolVar(&flagModuleMode, "modules", false, "resolve path's full module dependency graph instead of compiling it standalone")
	rootCmd.Flags().IntVar(&flagMaxSteps, "max-ctfe-steps", 0, "override the const evaluator's step budget (0 = default)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:")+" "+err.Error())
		os.Exit(1)
	}
}

func parseDefines(raw []string) map[string]string {
	out := map[string]string{}
	for _, d := range raw {
		if i := strings.IndexByte(d, '='); i >= 0 {
			out[d[:i]] = d[i+1:]
		} else {
			out[d] = "1"
		}
	}
	return out
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]

	if flagEmitTokens {
		return emitTokens(path)
	}

	limits := ctfe.DefaultLimits()
	if flagMaxSteps > 0 {
		limits.MaxSteps = flagMaxSteps
	}

	c := interp.New(interp.Options{
		IncludePaths: flagIncludes,
		Defines:      parseDefines(flagDefines),
		Strict:       flagStrict,
		Verbose:      flagVerbose,
		Limits:       limits,
	})

	if flagModuleMode {
		return runModuleGraph(c, path)
	}

	art, err := c.CompilePath(path)
	if err != nil {
		return err
	}
	return report(art, path)
}

// emitTokens preprocesses and lexes path, printing one line per token
// instead of running the rest of the pipeline. Useful for debugging the
// lexer/preprocessor without a full compile.
func emitTokens(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fset := source.NewFileSet()
	file := fset.AddFile(path, string(data))
	bag := diag.NewBag()
	expanded := preprocess.Process(fset, bag, file, nil, parseDefines(flagDefines))
	expandedFile := fset.AddFile(path+".expanded", expanded)
	toks := lexer.New(expandedFile, bag).Tokenize()
	for _, t := range toks {
		fmt.Printf("%-20s %-12s %q\n", t.Pos, t.Kind, t.Text)
	}
	if len(bag.Items()) > 0 {
		fmt.Fprint(os.Stderr, bag.Render(fset))
	}
	return nil
}

func runModuleGraph(c *interp.Compiler, rootPath string) error {
	arts, err := c.CompileModuleGraph(context.Background(), rootPath)
	if err != nil {
		return err
	}
	failed := false
	for path, art := range arts {
		if rerr := report(art, path); rerr != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("compilation failed")
	}
	return nil
}

func report(art *interp.Artifact, path string) error {
	banner := phaseSummaryStyle.Render(fmt.Sprintf("compiled %s", path))
	if flagVerbose {
		fmt.Fprintln(os.Stderr, banner)
	}
	if len(art.Diags.Items()) > 0 {
		fmt.Fprint(os.Stderr, art.Diags.Render(art.Fset))
	}
	if art.HasErrors(flagStrict) {
		return fmt.Errorf("%s failed to compile", path)
	}
	if flagEmitIR {
		fmt.Println(art.IR)
	}
	return nil
}

var phaseSummaryStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("42")).
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)
