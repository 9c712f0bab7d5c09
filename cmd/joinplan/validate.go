package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/joinplan/internal/cli"
	"github.com/pthm/joinplan/pkg/schema"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a schema file",
	Long:  `Validate that every association names a declared target, has its key columns, and that many_to_many associations declare a join table.`,
	Example: `  # Validate a specific schema file
  joinplan validate --schema db/schema.yaml

  # Validate using config file settings
  joinplan validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(validateSchema, cfg.Schema)

		if _, err := os.Stat(schemaPath); err != nil {
			return cli.SchemaParseError(fmt.Sprintf("schema not found: %s", schemaPath), nil)
		}

		s, err := schema.ParseFile(schemaPath)
		if err != nil {
			return cli.SchemaParseError("parsing schema", err)
		}

		if !quiet {
			entities := s.Entities()
			fmt.Printf("Schema is valid. Found %d entities:\n", len(entities))
			for _, e := range entities {
				fmt.Printf("  - %s (table %s, %d associations)\n", e.Name, e.Table, len(e.Associations))
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "path to schema YAML file")
}
