package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/modeling"
)

// CheckResult holds check results.
type CheckResult struct {
	Valid    bool                       `json:"valid"`
	Recipes  int                        `json:"recipes"`
	Errors   []modeling.ValidationError `json:"errors,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the recipe table against the model",
		Long: `Validate every recipe of the table against the model.

Checks that each recipe's resource is retrievable and that its paths,
filters and joins resolve. When the table is valid, every recipe is then
resolved against a null operand and the resulting library is checked
for structural warnings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	session, err := NewSession(opts, opts.NewLogger(cmd.ErrOrStderr()))
	if err != nil {
		return formatter.Fail(errorCode(err), err, ExitCommandError)
	}

	table := session.Dispatcher.Table()
	result := CheckResult{Valid: true, Recipes: countRecipes(table)}

	result.Errors = modeling.ValidateTable(session.Model, table)
	if len(result.Errors) > 0 {
		result.Valid = false
		return outputCheckErrors(formatter, result)
	}

	for _, template := range table.Templates() {
		paths, _ := table.Paths(template)
		for _, path := range paths {
			key := modeling.Key(template, path)
			formatter.VerboseLog("Resolving %s", key)
			expr, err := session.Dispatcher.ResolveModeling(key, elm.Null(), "==")
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", key, err))
				continue
			}
			if _, err := session.Library.Define(key.String(), expr); err != nil {
				result.Warnings = append(result.Warnings, err.Error())
			}
		}
	}
	result.Warnings = append(result.Warnings, session.Library.Validate().Warnings...)
	for _, d := range session.Library.Diagnostics() {
		result.Warnings = append(result.Warnings, d.String())
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	formatter.Warn(result.Warnings...)
	fmt.Fprintf(formatter.Writer, "✓ All %d recipes valid\n", result.Recipes)
	return nil
}

func countRecipes(table modeling.Table) int {
	n := 0
	for _, paths := range table {
		n += len(paths)
	}
	return n
}

// outputCheckErrors outputs table validation errors.
func outputCheckErrors(formatter *OutputFormatter, result CheckResult) error {
	errs := result.Errors
	summary := fmt.Sprintf("validation failed with %d error(s)", len(errs))
	if formatter.JSON() {
		if err := formatter.Report(result, errs[0].Code, errs[0].Message); err != nil {
			return err
		}
		return NewExitError(ExitFailure, summary)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
	}

	return NewExitError(ExitFailure, summary)
}
