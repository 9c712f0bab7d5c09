package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/joinplan/internal/cli"
	"github.com/pthm/joinplan/pkg/introspect"
	"github.com/pthm/joinplan/pkg/schema"
)

var (
	introspectDB      string
	introspectSchemas []string
	introspectOutput  string
)

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Derive a schema file from a database",
	Long: `Read tables, primary keys, foreign keys and unique indexes from PostgreSQL
and print the schema they imply. Review the result before use: association
names are derived from column and table names.`,
	Example: `  # Print the schema of the public schema
  joinplan introspect --db postgres://localhost/mydb

  # Write it to a file
  joinplan introspect --db postgres://localhost/mydb --schemas public,blog --output schema.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := resolveDSN(introspectDB)
		if err != nil {
			return err
		}
		schemas := introspectSchemas
		if len(schemas) == 0 {
			schemas = cfg.Introspect.Schemas
		}
		return runIntrospect(cmd.Context(), dsn, schemas, resolveString(introspectOutput, cfg.Introspect.Output))
	},
}

func init() {
	f := introspectCmd.Flags()
	f.StringVar(&introspectDB, "db", "", "database URL")
	f.StringSliceVar(&introspectSchemas, "schemas", nil, "database schemas to read (default from config: public)")
	f.StringVarP(&introspectOutput, "output", "o", "", "write the schema to this file instead of stdout")
}

func runIntrospect(ctx context.Context, dsn string, schemas []string, output string) error {
	db, err := openDB(ctx, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	s, err := introspect.Load(ctx, db, schemas...)
	if err != nil {
		return cli.GeneralError("introspecting database", err)
	}

	out, err := schema.Marshal(s)
	if err != nil {
		return cli.GeneralError("encoding schema", err)
	}

	if output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return cli.GeneralError("writing schema", err)
	}
	if !quiet {
		fmt.Printf("Wrote %d entities to %s\n", len(s.Names()), output)
	}
	return nil
}
