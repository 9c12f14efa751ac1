// Package manifest finds and parses the bulk import manifest: a CSV, TSV,
// XLSX or XLS table listing filename, document title and shelf identifier per
// row. Header matching is whitespace-trimmed and case-folded; any invalid data
// row fails the whole manifest.
package manifest
