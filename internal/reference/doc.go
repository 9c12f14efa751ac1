// Package reference derives human-readable document references from uploaded
// filenames and disambiguates them with numeric suffixes within a cabinet.
package reference
