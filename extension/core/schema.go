// schema.go implements the "flagsync schema" command.
//
// The printed document is generated from the same field tree the
// validator walks, so editors and CI tools that check flag files with it
// agree with "flagsync validate".

package core

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for flag files",
		Long: `Prints the JSON Schema (draft-07) every flag file must satisfy.

  flagsync schema > feature-flags/flag.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			doc := schema.JSONSchema()
			if cmd.JSON() {
				return cmd.PrintJSON(doc)
			}
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}
			fmt.Fprintln(cmd.Out(), string(b))
			return nil
		},
	}
}
