package storage

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Index maps a file's basename to its absolute path in the scratch tree.
type Index map[string]string

// BuildIndex walks root and records every regular file whose extension is in
// extensions (compared case-insensitively). A basename seen twice anywhere in
// the tree fails with DuplicateFileError. An empty index is not an error.
func BuildIndex(root string, extensions []string) (Index, error) {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	index := make(Index)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "__MACOSX" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}
		name := d.Name()
		if existing, dup := index[name]; dup {
			return &DuplicateFileError{Name: name, Paths: []string{existing, path}}
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		index[name] = abs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// Lookup returns the scratch path recorded for name.
func (i Index) Lookup(name string) (string, bool) {
	path, ok := i[name]
	return path, ok
}
