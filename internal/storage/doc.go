// Package storage indexes PDFs found in an extracted archive and moves them
// into the durable uploads root under content-opaque names.
package storage
