// Package sqlite stores documents, students and interactions in a single
// SQLite file using modernc.org/sqlite (no cgo).
//
// The schema matches the tables written by the original Python ingest and
// web app (docs, users, interactions), so an existing db.sqlite can be
// served directly. Tables are created with IF NOT EXISTS and versioned in
// schema_migrations.
package sqlite
