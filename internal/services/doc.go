// Package services defines shared utilities consumed by the ingest pipeline,
// the shelf hardware trigger, and the HTTP API.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, shelf IDs, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, and HTTPStatus which
//     translates marked failures into response codes (client input errors
//     become 400s, missing records 404s).
package services
