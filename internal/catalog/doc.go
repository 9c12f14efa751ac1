// Package catalog persists shelves and documents in SQLite.
//
// The Store opens the database with WAL, foreign keys and a busy timeout,
// creates the embedded schema on first use and refuses to open a database
// whose schema_version does not match. Shelves are provisioned through
// CreateShelf and are otherwise read-only; documents are written only through
// a Tx so a whole import batch commits or rolls back together.
//
// Lookups that find nothing return (nil, nil); callers decide whether that is
// an error. Schema changes bump schemaVersion in schema.go.
package catalog
