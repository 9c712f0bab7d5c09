// Package sqlgen is the reference query engine for preload plans.
//
// # Overview
//
// A Query is the join-construction collaborator handed to the planner. Each
// association the planner decides to join is recorded on the Query as a
// LEFT JOIN with a freshly allocated binding. After planning, Compile renders
// the main SELECT with the sqldsl subpackage and one follow-up fetch query
// per fetch directive node with bob.
//
// # Main Query
//
// The root row is selected as root.*; every joined binding is selected as a
// JSON object named after the binding:
//
//	SELECT a0.*, to_jsonb(u1) AS u1, to_jsonb(r2) AS r2
//	FROM articles AS a0
//	LEFT JOIN users AS u1 ON u1.id = a0.author_id
//	LEFT JOIN roles AS r2 ON r2.id = u1.role_id
//	ORDER BY a0.id
//
// A join directive tells the engine which of these columns to copy onto
// which association field.
//
// # Fetch Queries
//
// A fetch query selects the associated rows for a batch of parent keys bound
// as a single array argument:
//
//	SELECT c0.* FROM "comments" AS "c0" WHERE ("c0"."article_id" = ANY($1))
//
// Nested fetch nodes become child queries keyed by the rows their parent
// query returned. many_to_many fetches join through the join table and also
// select its owner column as OwnerKeyColumn.
//
// Executing the queries and materializing results is left to the caller.
package sqlgen
