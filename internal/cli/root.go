package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ModelDir       string // CUE model directory; embedded default when empty
	Strict         bool   // promote recoverable retrieve conditions to errors
	LibraryName    string
	LibraryVersion string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cqlgen CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cqlgen",
		Short: "cqlgen - clinical query expression builder",
		Long: `Build typed clinical query expressions from template paths.

Each (template, path) pair maps to a recipe over the data model. A
comparison against a literal, code or value set is resolved into an
expression tree and registered in a library with its terminology.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ModelDir, "model", "", "CUE model directory (default: embedded FHIR model)")
	cmd.PersistentFlags().BoolVar(&opts.Strict, "strict", false, "fail on recoverable retrieve conditions")
	cmd.PersistentFlags().StringVar(&opts.LibraryName, "library", "Generated", "library name")
	cmd.PersistentFlags().StringVar(&opts.LibraryVersion, "library-version", "1.0.0", "library version")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewPathsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// NewLogger returns the structured logger commands hand to the builder.
// Debug records are emitted only with --verbose.
func (o *RootOptions) NewLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
