// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"mrp-cli/internal/app/execute"
	"mrp-cli/internal/config"
	"mrp-cli/internal/issue"
	"mrp-cli/internal/runtime"
	"mrp-cli/internal/stage"
	"mrp-cli/internal/transport"
)

var (
	setFlags      []string
	inputFlag     string
	outputDirFlag string
	profileFlags  []string

	runCmd = &cobra.Command{
		Use:   "run <config>",
		Short: "Execute a model run",
		Long: `Execute a model run from a config file.

The config is merged with --input values and --set overrides (overrides
win), file references are staged locally, and the resulting run document
is dispatched to the runtime adapter named by runtime.spec.

The model's stdout and stderr are forwarded; pipeline diagnostics go to
stderr only.`,
		Example: `  mrp run diceroll
  mrp run model.mrp.toml --set input.seed=42 --set 'input.tag="0042"'
  mrp run model.mrp.toml --input params.json
  mrp run model.mrp.toml --profile output=file --output-dir results`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().StringArrayVar(&setFlags, "set", nil, "override a config value (path.to.key=value, repeatable)")
	runCmd.Flags().StringVar(&inputFlag, "input", "", "input values: a JSON file, inline JSON, or key=value pairs")
	runCmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "output directory for filesystem output")
	runCmd.Flags().StringArrayVar(&profileFlags, "profile", nil, "select a section profile (section=name, repeatable)")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Failures past argument parsing are reported with styling here,
	// so cobra must not echo them again.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	sources, err := buildSources(args[0])
	if err != nil {
		return hostFailure(err)
	}

	buildOpts := transport.BuildOptions{
		OutputDir:      outputDirFlag,
		DefaultAdapter: toolSettings.DefaultAdapter,
	}
	if err := applyProfileFlags(&buildOpts); err != nil {
		return hostFailure(err)
	}

	for _, src := range sources {
		log.Debug("config source", "source", src.Describe())
	}

	stager := stage.New(
		stage.WithDir(toolSettings.Stage.Dir),
		stage.WithHTTPTimeout(time.Duration(toolSettings.Stage.HTTPTimeoutSeconds)*time.Second),
		stage.WithConcurrency(toolSettings.Stage.Concurrency),
	)

	orc := execute.NewOrchestrator(execute.WithStager(stager))
	outcome, err := orc.Run(cmd.Context(), execute.Request{
		Sources: sources,
		Build:   buildOpts,
	})
	if err != nil {
		return hostFailure(err)
	}

	// The model's streams are forwarded as-is; everything the pipeline
	// has to say goes to stderr.
	os.Stdout.Write(outcome.Result.Stdout)
	os.Stderr.Write(outcome.Result.Stderr)

	result := outcome.Result
	if !result.Success() {
		if result.TimedOut() {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Model timed out")+
				SubtitleStyle.Render(fmt.Sprintf(" (exit code %s after %s)", result.ExitCode, result.Duration.Round(time.Millisecond))))
		} else {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Model failed")+
				SubtitleStyle.Render(fmt.Sprintf(" (exit code %s)", result.ExitCode)))
		}
		renderIssue(issue.ModelFailedId)
		return &ExitError{Code: exitModel}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, SuccessStyle.Render("Run completed")+
			SubtitleStyle.Render(fmt.Sprintf(" (input hash %s, %s)",
				outcome.Document.Protocol.InputHash,
				result.Duration.Round(time.Millisecond))))
	}
	return nil
}

// buildSources assembles config layers in precedence order: the config
// file, then --input values, then --set overrides.
func buildSources(configArg string) ([]config.Source, error) {
	sources := []config.Source{config.NewFileSource(configArg)}

	if inputFlag != "" {
		input, err := config.ParseInputArg(inputFlag)
		if err != nil {
			return nil, err
		}
		sources = append(sources, config.NewValuesSource("--input",
			map[string]any{transport.SectionInput: input}))
	}
	if len(setFlags) > 0 {
		sources = append(sources, config.NewOverridesSource(setFlags))
	}

	return sources, nil
}

func applyProfileFlags(opts *transport.BuildOptions) error {
	for _, pair := range profileFlags {
		section, name, found := strings.Cut(pair, "=")
		if !found || section == "" || name == "" {
			return fmt.Errorf("invalid profile selection %q: expected section=name", pair)
		}
		switch section {
		case transport.SectionRuntime:
			opts.RuntimeProfile = name
		case transport.SectionOutput:
			opts.OutputProfile = name
		default:
			return fmt.Errorf("profiles are supported for the runtime and output sections, not %q", section)
		}
	}
	return nil
}

// hostFailure prints an error with its issue card and maps it to the
// host-failure exit code.
func hostFailure(err error) error {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	renderIssue(issueFor(err))
	return &ExitError{Code: exitHost, Err: err}
}

// issueFor maps an error to its catalog entry.
func issueFor(err error) issue.Id {
	var (
		mergeConflict  *config.MergeConflictError
		unknownProfile *config.UnknownProfileError
		ambiguous      *config.AmbiguousProfileError
		unsupported    *stage.UnsupportedSchemeError
		stageErr       *stage.Error
		unknownAdapter *runtime.UnknownAdapterError
		unknownSection *transport.UnknownSectionError
		reserved       *transport.ReservedSectionError
	)

	switch {
	case errors.As(err, &unknownProfile), errors.As(err, &ambiguous):
		return issue.UnknownProfileId
	case errors.As(err, &mergeConflict):
		return issue.ConfigMergeFailedId
	case errors.As(err, &unsupported):
		return issue.UnsupportedSchemeId
	case errors.As(err, &stageErr):
		return issue.StagingFailedId
	case errors.As(err, &unknownAdapter):
		return issue.UnknownAdapterId
	case errors.As(err, &unknownSection), errors.As(err, &reserved):
		return issue.ProtocolInvalidId
	default:
		return issue.ConfigMergeFailedId
	}
}

// renderIssue prints the issue card for an error in verbose mode, where
// the extra guidance is welcome and the output is already chatty.
func renderIssue(id issue.Id) {
	if !verbose {
		return
	}
	i := issue.Get(id)
	if i == nil {
		return
	}
	card, err := i.Render("dark")
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, card)
}
