// Package preflight provides readiness checks for the filesystem paths and
// relay hardware SmartShelf depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs a warning for each failure.
//   - The CLI "smartshelf config validate" command renders every result and
//     exits non-zero when a check fails.
package preflight
