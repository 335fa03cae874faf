// Command hpc is the Hinglish-to-C compiler CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hinglish-lang/hpc/pkg/config"
	"github.com/hinglish-lang/hpc/pkg/driver"
)

// version is set at build time via -ldflags; it defaults to "dev" for
// local, un-released builds.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hpc",
		Short: "Compile Hinglish source files to native executables",
		Long: "hpc translates .hp source files to C and drives a C toolchain " +
			"to produce a native executable.",
	}

	root.AddCommand(newCompileCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hpc version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func newCompileCmd() *cobra.Command {
	var (
		output  string
		keepC   bool
		verbose bool
		run     bool
		cc      string
		ccFlags []string
	)

	cmd := &cobra.Command{
		Use:   "compile <file.hp>",
		Short: "Compile a single Hinglish source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			if cc == "" {
				cc = cfg.CC
			}
			if len(ccFlags) == 0 {
				ccFlags = cfg.CCFlags
			}
			if !verbose {
				verbose = cfg.Verbose
			}
			if !keepC {
				keepC = cfg.KeepC
			}

			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer logger.Sync()

			opts := driver.Options{
				InputPath:  args[0],
				OutputPath: output,
				KeepC:      keepC,
				Verbose:    verbose,
				Run:        run,
				CC:         cc,
				CCFlags:    ccFlags,
				Logger:     logger,
			}

			result, err := driver.Compile(opts)
			if err != nil {
				driver.ReportError(err)
				return err
			}
			if result.Ran && result.RunExitCode != 0 {
				os.Exit(result.RunExitCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output binary path")
	cmd.Flags().BoolVar(&keepC, "keep-c", false, "keep the generated intermediate C file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print progress as each pipeline stage runs")
	cmd.Flags().BoolVar(&run, "run", false, "run the compiled binary after a successful build")
	cmd.Flags().StringVar(&cc, "cc", "", "C compiler to invoke (default gcc)")
	cmd.Flags().StringArrayVar(&ccFlags, "cc-flag", nil, "extra flag to pass to the C compiler (repeatable)")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
