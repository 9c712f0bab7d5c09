// Command joinplan plans association preloads for a relational query and
// prints the joins, fetches and SQL it would run.
//
// Usage:
//
//	joinplan [flags] <command>
//
// Commands that inspect a database (introspect, doctor) need --db, a
// database section in joinplan.yaml, or JOINPLAN_DATABASE_URL. Commands that
// only read the schema file (plan, validate) do not.
package main

func main() {
	Execute()
}
