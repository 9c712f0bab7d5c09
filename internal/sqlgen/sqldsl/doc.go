// Package sqldsl renders the main preload query from typed pieces.
//
// It covers exactly what that query needs: column references, a function
// call over a binding, key equality for ON clauses, LEFT JOINs and a
// SELECT ordered by the root key.
//
//	stmt := SelectStmt{
//	    Columns: []Expr{Star("a0"), SelectAs(Func{Name: "to_jsonb", Args: []Expr{Raw("u1")}}, "u1")},
//	    From:    TableAs("articles", "a0"),
//	    Joins: []JoinClause{{
//	        Table: TableAs("users", "u1"),
//	        On:    Eq{Left: Col{Table: "u1", Column: "id"}, Right: Col{Table: "a0", Column: "author_id"}},
//	    }},
//	    OrderBy: []Expr{Col{Table: "a0", Column: "id"}},
//	}
//	stmt.SQL()
//
// Identifiers that are not plain lower-case names, or that collide with a
// common keyword, are double-quoted.
package sqldsl
