package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/cqlgen/internal/modeling"
)

// PathEntry describes one recipe of the table.
type PathEntry struct {
	Request  string `json:"request"`
	Resource string `json:"resource"`
	Property string `json:"property"`
	Doc      string `json:"doc,omitempty"`
}

// NewPathsCommand creates the paths command.
func NewPathsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths [template]",
		Short: "List the template paths the dispatcher can resolve",
		Long: `List every (template, path) pair of the recipe table, or only the
paths of one template.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			template := ""
			if len(args) == 1 {
				template = args[0]
			}
			return runPaths(rootOpts, template, cmd)
		},
	}

	return cmd
}

func runPaths(opts *RootOptions, template string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	entries, err := listPaths(modeling.DefaultTable(), template)
	if err != nil {
		return formatter.Fail(errorCode(err), err, ExitFailure)
	}

	if formatter.JSON() {
		return formatter.Success(entries)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s.%s\t%s\n", e.Request, e.Resource, e.Property, e.Doc)
	}
	return tw.Flush()
}

// listPaths returns the entries of table sorted by template and path.
func listPaths(table modeling.Table, template string) ([]PathEntry, error) {
	templates := table.Templates()
	if template != "" {
		templates = []string{template}
	}

	entries := []PathEntry{}
	for _, name := range templates {
		paths, err := table.Paths(name)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			key := modeling.Key(name, path)
			r, err := table.Lookup(key)
			if err != nil {
				return nil, err
			}
			entries = append(entries, PathEntry{
				Request:  key.String(),
				Resource: r.Resource,
				Property: r.Path,
				Doc:      r.Doc,
			})
		}
	}
	return entries, nil
}
