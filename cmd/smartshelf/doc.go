// Package main hosts the smartshelf CLI entrypoint and command graph.
//
// The Cobra command tree runs the HTTP daemon (serve), performs one-off bulk
// imports from a local ZIP, manages the shelf registry, pulses shelf relays and
// scaffolds configuration. Commands other than serve work directly against the
// catalog database, so they are usable without a running daemon.
//
// Keep this package lean: functionality belongs in the internal packages and
// is only surfaced here.
package main
