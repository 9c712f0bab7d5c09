// Package doctor provides health checks for a joinplan schema and the
// database it describes.
//
// The doctor command validates that preload plans built from the schema will
// run: the schema file parses and validates, every table and key column it
// names exists, and the columns follow-up fetches filter on are indexed.
//
// Example usage:
//
//	d := doctor.New(db, "schema.yaml")
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pthm/joinplan/pkg/introspect"
	"github.com/pthm/joinplan/pkg/schema"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Schema File", "Database").
	Category string

	// Name is a short identifier for the check.
	Name string

	Status  Status
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor checks a schema file and, when a database is given, the tables the
// schema describes.
type Doctor struct {
	db         introspect.Querier
	schemaPath string
	schemas    []string

	// Populated during Run.
	schema  *schema.Schema
	catalog *introspect.Catalog
}

// New creates a Doctor. db may be nil, in which case only the schema file is
// checked. Tables are looked up in the given database schemas (default
// "public").
func New(db introspect.Querier, schemaPath string, schemas ...string) *Doctor {
	return &Doctor{
		db:         db,
		schemaPath: schemaPath,
		schemas:    schemas,
	}
}

// Run executes all health checks and returns a report.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkSchemaFile(report)
	if d.schema == nil {
		return report, nil
	}
	d.checkConnectivity(report)

	if d.db == nil {
		report.AddCheck(CheckResult{
			Category: "Database",
			Name:     "configured",
			Status:   StatusWarn,
			Message:  "No database configured, skipping table checks",
			FixHint:  "Pass --db or set database.url in joinplan.yaml",
		})
		return report, nil
	}

	cat, err := introspect.ReadCatalog(ctx, d.db, d.schemas...)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	d.catalog = cat

	d.checkTables(report)
	d.checkKeyColumns(report)
	d.checkFetchIndexes(report)

	return report, nil
}

func (d *Doctor) checkSchemaFile(report *Report) {
	if _, err := os.Stat(d.schemaPath); err != nil {
		report.AddCheck(CheckResult{
			Category: "Schema File",
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Schema file not found at %s", d.schemaPath),
			FixHint:  "Run 'joinplan introspect --output schema.yaml' to derive one from the database",
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: "Schema File",
		Name:     "exists",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema file exists at %s", d.schemaPath),
	})

	s, err := schema.ParseFile(d.schemaPath)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Schema File",
			Name:     "valid",
			Status:   StatusFail,
			Message:  "Schema is invalid",
			Details:  err.Error(),
			FixHint:  "Run 'joinplan validate' to see detailed errors",
		})
		return
	}
	d.schema = s

	assocs := 0
	for _, e := range s.Entities() {
		assocs += len(e.Associations)
	}
	report.AddCheck(CheckResult{
		Category: "Schema File",
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema is valid (%d entities, %d associations)", len(s.Names()), assocs),
	})
}

// checkConnectivity warns about entities no association starts or ends at:
// they can be queried but never preloaded.
func (d *Doctor) checkConnectivity(report *Report) {
	linked := make(map[string]bool)
	for _, e := range d.schema.Entities() {
		for _, a := range e.Associations {
			linked[e.Name] = true
			linked[a.Target] = true
		}
	}

	var isolated []string
	for _, name := range d.schema.Names() {
		if !linked[name] {
			isolated = append(isolated, name)
		}
	}

	if len(isolated) > 0 && len(d.schema.Names()) > 1 {
		report.AddCheck(CheckResult{
			Category: "Schema File",
			Name:     "connected",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%d entities have no associations", len(isolated)),
			Details:  strings.Join(isolated, "\n"),
			FixHint:  "Declare associations for these entities or remove them",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "Schema File",
		Name:     "connected",
		Status:   StatusPass,
		Message:  "Every entity takes part in an association",
	})
}

func (d *Doctor) checkTables(report *Report) {
	var missing []string
	for _, table := range d.tables() {
		if d.catalog.Table(table) == nil {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		report.AddCheck(CheckResult{
			Category: "Database",
			Name:     "tables",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%d tables named by the schema do not exist", len(missing)),
			Details:  strings.Join(missing, "\n"),
			FixHint:  "Check the table names in the schema file or the --schemas search path",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "Database",
		Name:     "tables",
		Status:   StatusPass,
		Message:  fmt.Sprintf("All %d tables exist", len(d.tables())),
	})
}

func (d *Doctor) checkKeyColumns(report *Report) {
	var missing []string
	need := func(table, column string) {
		t := d.catalog.Table(table)
		if t == nil || t.HasColumn(column) {
			// Missing tables are reported by checkTables.
			return
		}
		missing = append(missing, table+"."+column)
	}

	for _, e := range d.schema.Entities() {
		need(e.Table, e.PrimaryKey)
		for _, a := range e.Associations {
			target, err := d.schema.Entity(a.Target)
			if err != nil {
				continue
			}
			need(e.Table, a.OwnerKey)
			need(target.Table, a.RelatedKey)
			if a.Through != nil {
				need(a.Through.Table, a.Through.OwnerKey)
				need(a.Through.Table, a.Through.RelatedKey)
			}
		}
	}
	missing = dedupe(missing)

	if len(missing) > 0 {
		report.AddCheck(CheckResult{
			Category: "Database",
			Name:     "columns",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%d key columns do not exist", len(missing)),
			Details:  strings.Join(missing, "\n"),
			FixHint:  "Set owner_key/related_key explicitly where the default column name does not apply",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "Database",
		Name:     "columns",
		Status:   StatusPass,
		Message:  "All key columns exist",
	})
}

// checkFetchIndexes warns about plural associations whose fetch filters on
// a column no index leads with. Those fetches scan the whole table.
func (d *Doctor) checkFetchIndexes(report *Report) {
	var unindexed []string
	for _, e := range d.schema.Entities() {
		for _, a := range e.Associations {
			if a.Cardinality() != schema.Plural {
				continue
			}
			table, column := "", a.RelatedKey
			if a.Through != nil {
				table, column = a.Through.Table, a.Through.OwnerKey
			} else if target, err := d.schema.Entity(a.Target); err == nil {
				table = target.Table
			}
			t := d.catalog.Table(table)
			if t == nil || !t.HasColumn(column) || t.Indexed[column] {
				continue
			}
			unindexed = append(unindexed, fmt.Sprintf("%s.%s (%s.%s)", table, column, e.Name, a.Name))
		}
	}

	if len(unindexed) > 0 {
		sort.Strings(unindexed)
		report.AddCheck(CheckResult{
			Category: "Database",
			Name:     "indexes",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%d fetch key columns are not indexed", len(unindexed)),
			Details:  strings.Join(unindexed, "\n"),
			FixHint:  "CREATE INDEX on the listed columns",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "Database",
		Name:     "indexes",
		Status:   StatusPass,
		Message:  "All fetch key columns are indexed",
	})
}

// tables returns every table the schema names, join tables included.
func (d *Doctor) tables() []string {
	var out []string
	for _, e := range d.schema.Entities() {
		out = append(out, e.Table)
		for _, a := range e.Associations {
			if a.Through != nil {
				out = append(out, a.Through.Table)
			}
		}
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
