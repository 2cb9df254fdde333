// Package store persists the course catalog and the content derived from it:
// ordered sections, their resources, and extracted problems.
//
// SQLite (modernc.org/sqlite) is the default backend; Postgres is reached via
// pgx's database/sql driver when store.driver is "postgres". Queries are
// written with ? placeholders and rebound per dialect. Schema changes ship as
// embedded, per-dialect migration files recorded in schema_migrations.
//
// Replacement operations (ReplaceCourseContent, ReplaceProblems) run inside a
// single transaction and are retried as a unit on lock contention. Deleting a
// course's resources cascades to their problems.
package store
