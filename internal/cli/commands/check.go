package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/listatree/hypothesis/internal/cli/ui"
	"github.com/listatree/hypothesis/internal/value"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <descriptor> <value>",
		Short: "Encode a value without storing it",
		Long: `Validate a value against a descriptor, encode it the way save would,
and decode it again to confirm the round trip. Nothing is written.`,
		Example: `  # A list of integers
  exampledb check '[int]' '[1, 2, 3]'

  # A union stores the index of the first matching alternative
  exampledb check 'one_of(int, text)' "'x'"

  # Binary is stored as base64
  exampledb check binary "b'\x00\xff'"`,
		Args: cobra.ExactArgs(2),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	storage, err := s.storage(cmd, args[0])
	if err != nil {
		return err
	}
	v, err := parseValue(cmd, args[1])
	if err != nil {
		return err
	}

	text, err := storage.Encode(v)
	if err != nil {
		return err
	}
	decoded, err := storage.Decode(text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table := ui.NewKeyValueTable(out, noColorFlag)
	table.AddRow("Key", storage.Key())
	table.AddRow("Value", value.Repr(v))
	table.AddRow("Encoded", text)
	table.AddRow("Decoded", value.Repr(decoded))
	table.Render()

	if !value.Equal(v, decoded) {
		fmt.Fprint(out, ui.Warning("decoded value differs from the input", []string{
			"a custom rule for this descriptor may not decode what it encodes",
		}, noColorFlag))
		return nil
	}
	ui.WriteSuccess(out, "round trip ok", noColorFlag)
	return nil
}
