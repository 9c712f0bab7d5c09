package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/joinplan"
	"github.com/pthm/joinplan/internal/cli"
	"github.com/pthm/joinplan/internal/sqlgen"
	"github.com/pthm/joinplan/pkg/schema"
)

var (
	planSchema  string
	planRoot    string
	planPreload []string
	planJoin    []string
	planMode    string
	planFormat  string
	planSQL     bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a preload and print its joins, fetches and SQL",
	Long: `Plan how the requested associations are loaded with the root entity.

Associations use the compact preload syntax: comma-separated dotted paths,
with brackets to request several associations below one field, for example
"author[role, bio], comments.author".`,
	Example: `  # Preload the author chain and comments of articles
  joinplan plan --root article --preload "author.role, comments"

  # Join comments into the main query for filtering, then preload their authors
  joinplan plan --root article --join comments --preload comments.author --sql

  # Machine-readable output
  joinplan plan --root article --preload tags --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := planOptions{
			schemaPath: resolveString(planSchema, cfg.Schema),
			root:       planRoot,
			preload:    planPreload,
			join:       planJoin,
			mode:       resolveString(planMode, cfg.Plan.Mode),
			format:     resolveString(planFormat, cfg.Plan.Format),
			sql:        planSQL,
		}
		return runPlan(os.Stdout, opts)
	},
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planSchema, "schema", "", "path to schema YAML file")
	f.StringVar(&planRoot, "root", "", "root entity")
	f.StringArrayVar(&planPreload, "preload", nil, "associations to preload (repeatable)")
	f.StringArrayVar(&planJoin, "join", nil, "associations to join into the main query (repeatable)")
	f.StringVar(&planMode, "mode", "", "join mode: if_preferable, always or never")
	f.StringVar(&planFormat, "format", "", "output format: text or yaml")
	f.BoolVar(&planSQL, "sql", false, "include SQL in text output")
	_ = planCmd.MarkFlagRequired("root")
}

type planOptions struct {
	schemaPath string
	root       string
	preload    []string
	join       []string
	mode       string
	format     string
	sql        bool
}

func runPlan(w io.Writer, opts planOptions) error {
	mode, err := joinplan.ParseJoinMode(opts.mode)
	if err != nil {
		return cli.ConfigError("join mode", err)
	}

	s, err := schema.ParseFile(opts.schemaPath)
	if err != nil {
		return cli.SchemaParseError("loading schema", err)
	}

	q, err := joinplan.From(s, opts.root, joinplan.WithMode(mode))
	if err != nil {
		return cli.PlanError("root entity", err)
	}
	for _, spec := range opts.join {
		if err := q.Join(spec); err != nil {
			return cli.PlanError(fmt.Sprintf("join %q", spec), err)
		}
	}
	for _, spec := range opts.preload {
		if err := q.Preload(spec); err != nil {
			return cli.PlanError(fmt.Sprintf("preload %q", spec), err)
		}
	}

	res, err := q.Build()
	if err != nil {
		return cli.PlanError("planning", err)
	}

	switch opts.format {
	case "", "text":
		if opts.sql {
			_, err = io.WriteString(w, res.Explain())
		} else {
			_, err = io.WriteString(w, sqlgen.Explain(res.Plan, nil))
		}
		return err
	case "yaml":
		out, err := yaml.Marshal(newPlanOutput(res))
		if err != nil {
			return cli.GeneralError("encoding plan", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return cli.ConfigError("output format", errors.New("unknown format "+opts.format))
	}
}

// planOutput is the YAML rendering of a built plan.
type planOutput struct {
	Root    string        `json:"root"`
	Binding string        `json:"binding"`
	Mode    string        `json:"mode"`
	Paths   []string      `json:"paths,omitempty"`
	Joins   []joinOutput  `json:"joins,omitempty"`
	Fetches []fetchOutput `json:"fetches,omitempty"`
	SQL     string        `json:"sql"`
}

type joinOutput struct {
	Path    string `json:"path"`
	Binding string `json:"binding"`
	Parent  string `json:"parent"`
	Kind    string `json:"kind"`
	Table   string `json:"table"`
}

type fetchOutput struct {
	Path      string        `json:"path"`
	Anchor    string        `json:"anchor,omitempty"`
	Kind      string        `json:"kind"`
	ParentKey string        `json:"parent_key"`
	MatchKey  string        `json:"match_key"`
	SQL       string        `json:"sql"`
	Nested    []fetchOutput `json:"nested,omitempty"`
}

func newPlanOutput(res *joinplan.Result) planOutput {
	out := planOutput{
		Root:    res.Plan.Root,
		Binding: res.Plan.RootBinding,
		Mode:    res.Plan.Mode.String(),
		SQL:     res.SQL,
	}
	for _, p := range res.Plan.Paths {
		out.Paths = append(out.Paths, p.String())
	}
	for _, j := range res.Joins {
		out.Joins = append(out.Joins, joinOutput{
			Path:    strings.Join(j.Path, "."),
			Binding: j.Binding,
			Parent:  j.ParentBinding,
			Kind:    string(j.Association.Kind),
			Table:   j.Target.Table,
		})
	}
	for _, f := range res.Fetches {
		out.Fetches = append(out.Fetches, newFetchOutput(f))
	}
	return out
}

func newFetchOutput(f sqlgen.FetchQuery) fetchOutput {
	out := fetchOutput{
		Path:      strings.Join(f.Path, "."),
		Anchor:    f.Anchor.String(),
		Kind:      string(f.Association.Kind),
		ParentKey: f.ParentKey,
		MatchKey:  f.MatchKey,
		SQL:       f.SQL,
	}
	for _, c := range f.Children {
		out.Nested = append(out.Nested, newFetchOutput(c))
	}
	return out
}
