// Package database manages connections to the underlying storage engines
// (MySQL, PostgreSQL, SQLite via Bun), provides configuration loading,
// query logging hooks, correlation-tag command rewriting, SQL error
// classification, model registration, and on-demand health contribution.
package database
