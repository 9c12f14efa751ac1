// Package shelves opens a shelf by pulsing the relay pin recorded for it in
// the catalog. The HTTP API and the CLI share this path so both report the
// same outcomes and error classes.
package shelves
