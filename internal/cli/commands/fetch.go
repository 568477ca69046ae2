package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/listatree/hypothesis/internal/cli/ui"
	"github.com/listatree/hypothesis/internal/value"
)

var fetchJSONFlag bool

// NewFetchCommand creates the fetch command
func NewFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <descriptor>",
		Short: "List the examples stored for a descriptor",
		Long: `Read every example stored for a descriptor, decode it and check that
it still matches the descriptor. Listing stops at the first stored record
that does not, since that means the store is corrupt or was written by an
incompatible version.`,
		Example: `  # Show stored examples in literal syntax
  exampledb fetch '[int]'

  # Show the stored JSON text instead
  exampledb fetch --json 'one_of(int, text)'`,
		Args: cobra.ExactArgs(1),
		RunE: runFetch,
	}

	cmd.Flags().BoolVar(&fetchJSONFlag, "json", false, "Print stored JSON text instead of values")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	storage, err := s.storage(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table := ui.NewTable(out, []string{"VALUE", "STORED"}, noColorFlag)
	for v, err := range storage.Fetch(cmd.Context()) {
		if err != nil {
			return err
		}
		text, err := storage.Encode(v)
		if err != nil {
			return err
		}
		if fetchJSONFlag {
			fmt.Fprintln(out, text)
			continue
		}
		table.AddRow(value.Repr(v), text)
	}

	if fetchJSONFlag {
		return nil
	}
	if table.Len() == 0 {
		fmt.Fprint(out, ui.Info(fmt.Sprintf("No examples stored for %s", storage.Key()), noColorFlag))
		return nil
	}
	table.Render()
	color.New(color.FgCyan).Fprintf(out, "\n%d example(s) for %s\n", table.Len(), storage.Key())
	return nil
}
