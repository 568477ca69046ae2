package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/listatree/hypothesis/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	configFileFlag string
	noColorFlag    bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "exampledb",
		Short: "Inspect and seed a database of failing examples",
		Long: color.CyanString(`exampledb - example database for property-based tests

Failing examples are stored keyed by the descriptor of the values that
produced them, so later runs can replay them before searching again.

Descriptors are written the way they display:
  int, float, text, binary, bool, complex, Random
  [int]  (int, text)  {int}  frozenset({int})  {'a': int, 'b': text}
  one_of(int, text)  sampled_from(('x', 'y'))  just(None)`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColorFlag {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFileFlag, "config", "", "Config file (default ./exampledb.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewSaveCommand())
	rootCmd.AddCommand(NewFetchCommand())
	rootCmd.AddCommand(NewServeCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the exampledb version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(out, "exampledb version: ")
			fmt.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			ui.Write(rootCmd.ErrOrStderr(), ui.ForError(err, noColorFlag))
		}
		return err
	}
	return nil
}
