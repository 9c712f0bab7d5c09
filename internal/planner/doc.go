// Package planner decides how requested associations are preloaded.
//
// # Overview
//
// Given a root entity and a tree of requested associations, the planner
// decides for every association edge whether it is satisfied by a LEFT JOIN
// folded into the main query or by a follow-up fetch keyed by the parent
// rows' identifiers. It then emits the directives a query engine needs to
// populate the association tree from one main query plus zero or more
// follow-up fetches.
//
// # Pipeline
//
// A planning call runs these stages in order:
//
//  1. Build: merge the requested Specs into the Token's descriptor forest,
//     resolving each field against the schema (Build).
//  2. Decide: record a join decision on each undecided descriptor (Decide).
//  3. Flatten: enumerate root-to-leaf paths (Flatten).
//  4. Reduce: keep only the maximal joined prefixes (JoinedPrefix, Reduce).
//  5. Emit: build JoinDirectives from the reduced chains and FetchDirectives
//     from the unjoined suffixes (EmitJoins, EmitFetches).
//
// # Join Rules
//
// Under IfPreferable, singular associations (belongs_to, has_one) are joined
// when their parent is joined or is the root. Plural associations are never
// joined. A descriptor whose parent is unjoined stays unjoined, so join
// chains are always contiguous from the root. A decision, once recorded, is
// never changed.
//
// # Tokens
//
// A Token accumulates descriptors across Preload and Join calls on one query
// build. Each call stages its changes on a copy and commits only on success.
// Plan consumes the token; a Token must not be shared between goroutines.
//
// Example:
//
//	p := planner.New(sch, query)
//	tok := planner.NewToken("article")
//	_ = p.Preload(tok, planner.Field("author", planner.Field("role")))
//	_ = p.Preload(tok, planner.Field("comments"))
//	plan, err := p.Plan(tok)
//	// plan.Joins:   a0 -> author(u1) -> role(r2)
//	// plan.Fetches: root => comments
package planner
