package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/listatree/hypothesis/internal/cli/ui"
	"github.com/listatree/hypothesis/internal/value"
)

var saveEncodedFlag bool

// NewSaveCommand creates the save command
func NewSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <descriptor> <value>",
		Short: "Store an example for a descriptor",
		Long: `Validate a value against a descriptor and store it in the configured
backend. Saving an example that is already stored changes nothing.

With --encoded the value is read as stored JSON text instead of literal
syntax; it is decoded and validated before being stored.`,
		Example: `  # Store a failing list
  exampledb save '[int]' '[1, 2, 3]'

  # Store a record in its JSON form (keys in canonical order)
  exampledb save --encoded "{'a': int, 'b': text}" '[1, "x"]'

  # Keep examples in a sqlite file
  EXAMPLEDB_DATABASE_FILE=examples.db exampledb save text "'boom'"`,
		Args: cobra.ExactArgs(2),
		RunE: runSave,
	}

	cmd.Flags().BoolVar(&saveEncodedFlag, "encoded", false, "Read the value as stored JSON text")

	return cmd
}

func runSave(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	storage, err := s.storage(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var v any
	if saveEncodedFlag {
		v, err = storage.SaveEncoded(ctx, args[1])
		if err != nil {
			return err
		}
	} else {
		v, err = parseValue(cmd, args[1])
		if err != nil {
			return err
		}
		if err := storage.Save(ctx, v); err != nil {
			return err
		}
	}

	ui.WriteSuccess(cmd.OutOrStdout(),
		fmt.Sprintf("Saved %s under %s", value.Repr(v), storage.Key()), noColorFlag)
	return nil
}
