// Package archive unpacks untrusted ZIP uploads into a scratch directory.
//
// Entries are planned and checked up front; absolute names, ".." escapes and
// symlink entries reject the archive before a single file is written.
package archive
