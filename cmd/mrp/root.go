// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"mrp-cli/internal/issue"
	"mrp-cli/internal/settings"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug diagnostics
	verbose bool
	// cfgFile allows specifying a custom settings file
	cfgFile string

	// toolSettings holds the loaded tool settings for subcommands
	toolSettings = settings.DefaultSettings()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "mrp",
		Short: "Run models through the Model Run Protocol",
		Long: TitleStyle.Render("mrp") + SubtitleStyle.Render(" - Run models through the Model Run Protocol") + `

mrp merges configuration from files, programmatic values, and command-line
overrides into a canonical run document, stages referenced files locally,
and dispatches the run to a runtime adapter: a child process, the built-in
shell interpreter, or an in-process callable.

Run configs are TOML, YAML, or JSON files, conventionally named
'[name].mrp.toml'.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Describe your model in a [name].mrp.toml file
  2. Point runtime.command at the model executable
  3. Run it with: mrp run <name>

` + SubtitleStyle.Render("Examples:") + `
  mrp run diceroll                        Run diceroll.mrp.toml
  mrp run model.mrp.toml --set input.seed=42
  mrp run model.mrp.toml --profile output=file --output-dir results
  mrp adapters                            List available runtime adapters`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is $HOME/.config/mrp/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(adaptersCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitHost)
	}
}

// initRootConfig loads tool settings and configures logging.
func initRootConfig() {
	opts := settings.LoadOptions{SettingsFilePath: cfgFile}

	s, err := settings.NewProvider().Load(context.Background(), opts)
	if err != nil {
		// Settings problems degrade to defaults, loudly.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		s = settings.DefaultSettings()
	}
	toolSettings = s

	// Apply verbose from settings if not set via flag
	if !verbose {
		verbose = s.UI.Verbose
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetOutput(os.Stderr)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
