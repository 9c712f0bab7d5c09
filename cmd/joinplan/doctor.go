package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/joinplan/internal/cli"
	"github.com/pthm/joinplan/internal/doctor"
)

var (
	doctorDB      string
	doctorSchema  string
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long: `Check the schema file and, when a database is configured, that its tables
and key columns exist and that fetch key columns are indexed.`,
	Example: `  # Check the schema file only
  joinplan doctor

  # Check against a database with verbose output
  joinplan doctor --db postgres://localhost/mydb --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(doctorSchema, cfg.Schema)
		verboseFlag := resolveBool(doctorVerbose, cfg.Doctor.Verbose)

		var dsn string
		if doctorDB != "" || cfg.HasDatabase() {
			var err error
			if dsn, err = resolveDSN(doctorDB); err != nil {
				return err
			}
		}
		return runDoctor(cmd.Context(), dsn, schemaPath, verboseFlag)
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorDB, "db", "", "database URL")
	f.StringVar(&doctorSchema, "schema", "", "path to schema YAML file")
	f.BoolVar(&doctorVerbose, "verbose", false, "show detailed output")
}

func runDoctor(ctx context.Context, dsn, schemaPath string, verboseFlag bool) error {

	var d *doctor.Doctor
	if dsn == "" {
		d = doctor.New(nil, schemaPath)
	} else {
		db, err := openDB(ctx, dsn)
		if err != nil {
			return err
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)
		d = doctor.New(db, schemaPath, cfg.Introspect.Schemas...)
	}

	if !quiet {
		fmt.Println("joinplan doctor - Health Check")
	}

	report, err := d.Run(ctx)
	if err != nil {
		return cli.GeneralError("running doctor", err)
	}

	report.Print(os.Stdout, verboseFlag)

	if report.HasErrors() {
		return cli.GeneralError("health checks failed", nil)
	}
	return nil
}
