// Package driver orchestrates the full pipeline — lex, parse, analyze,
// emit, and optionally invoke a C toolchain — behind the single entry point
// the CLI calls.
package driver

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/hinglish-lang/hpc/pkg/analyzer"
	"github.com/hinglish-lang/hpc/pkg/diag"
	"github.com/hinglish-lang/hpc/pkg/emitter"
	"github.com/hinglish-lang/hpc/pkg/parser"
)

// recognizedExt is the conventional Hinglish source extension. Any other
// extension is accepted but triggers a warning.
const recognizedExt = ".hp"

// Options configures a single compile invocation.
type Options struct {
	InputPath string
	OutputPath string // compiled binary path; defaults to the input path without its extension
	KeepC     bool    // keep the generated .c file instead of removing it
	Verbose   bool
	Run       bool // execute the compiled binary after a successful build
	CC        string
	CCFlags   []string

	Logger *zap.Logger
}

// Result carries the artifacts a successful Compile produced, for callers
// that want to inspect them (tests, --run exit-code propagation).
type Result struct {
	CPath      string
	BinaryPath string
	RunExitCode int
	Ran        bool
}

// Compile runs the full pipeline against opts.InputPath. Errors are wrapped
// in one of the diag sentinel errors so callers can classify the failing
// phase with errors.Is.
func Compile(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if ext := filepath.Ext(opts.InputPath); ext != recognizedExt {
		logger.Warn("unrecognized source extension, expected .hp",
			zap.String("path", opts.InputPath), zap.String("ext", ext))
	}

	src, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", diag.ErrToolchain, opts.InputPath, err)
	}
	logger.Info("Starting lexical analysis...", zap.String("path", opts.InputPath), zap.Int("bytes", len(src)))

	logger.Info("Parsing tokens to AST...")
	program, err := parser.New(string(src)).Parse()
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed source", zap.Int("statements", len(program.Statements)))

	logger.Info("Performing semantic analysis...")
	a := analyzer.New()
	if err := a.Analyze(program); err != nil {
		return nil, err
	}
	for _, d := range a.Diagnostics() {
		if d.Severity == diag.SeverityWarning {
			logger.Warn(d.String())
		}
	}

	logger.Info("Generating C code...")
	cSource, err := emitter.Emit(program)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(opts.InputPath, filepath.Ext(opts.InputPath))
	cPath := base + ".c"
	if err := os.WriteFile(cPath, []byte(cSource), 0o644); err != nil {
		return nil, fmt.Errorf("%w: writing %s: %v", diag.ErrToolchain, cPath, err)
	}
	logger.Info("emitted C source", zap.String("path", cPath))

	result := &Result{CPath: cPath}
	cleanupC := func() {
		if opts.KeepC {
			return
		}
		if err := os.Remove(cPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove intermediate C file", zap.String("path", cPath), zap.Error(err))
		}
	}
	defer cleanupC()

	binaryPath := opts.OutputPath
	if binaryPath == "" {
		binaryPath = base
	}
	if err := invokeCC(opts, cPath, binaryPath, logger); err != nil {
		return result, err
	}
	result.BinaryPath = binaryPath
	logger.Info("compiled binary", zap.String("path", binaryPath))

	if opts.Run {
		code, err := runBinary(binaryPath, logger)
		result.Ran = true
		result.RunExitCode = code
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func invokeCC(opts Options, cPath, binaryPath string, logger *zap.Logger) error {
	cc := opts.CC
	if cc == "" {
		cc = "gcc"
	}
	args := append([]string{cPath, "-o", binaryPath}, opts.CCFlags...)
	logger.Debug("invoking C toolchain", zap.String("cc", cc), zap.Strings("args", args))

	cmd := exec.Command(cc, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s failed: %v", diag.ErrToolchain, cc, err)
	}
	return nil
}

func runBinary(binaryPath string, logger *zap.Logger) (int, error) {
	abs := binaryPath
	if !strings.Contains(abs, string(os.PathSeparator)) {
		abs = "." + string(os.PathSeparator) + abs
	}
	logger.Debug("running compiled binary", zap.String("path", abs))

	cmd := exec.Command(abs)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("%w: running %s: %v", diag.ErrToolchain, binaryPath, err)
}

// ReportError writes err to stderr in the teacher's colorized style,
// distinguishing pipeline phase via errors.Is against the diag sentinels.
func ReportError(err error) {
	red := color.New(color.FgRed, color.Bold)
	switch {
	case errors.Is(err, diag.ErrParse):
		red.Fprintln(os.Stderr, "syntax error:")
	case errors.Is(err, diag.ErrAnalysis):
		red.Fprintln(os.Stderr, "semantic error:")
	case errors.Is(err, diag.ErrEmit):
		red.Fprintln(os.Stderr, "code generation error:")
	case errors.Is(err, diag.ErrToolchain):
		red.Fprintln(os.Stderr, "toolchain error:")
	default:
		red.Fprintln(os.Stderr, "error:")
	}
	fmt.Fprintln(os.Stderr, err)
}
