// Package daemon runs the long-lived SmartShelf process.
//
// It takes the single-instance lock, sweeps scratch directories left by
// crashed imports, and serves the HTTP API that accepts bulk ZIP uploads and
// opens shelves. Orchestration lives here; the ingest pipeline and the relay
// drivers live in their own packages.
package daemon
