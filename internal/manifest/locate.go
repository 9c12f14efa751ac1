package manifest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// candidateGroups lists the recognized manifest extensions in preference order.
var candidateGroups = []string{".csv", ".tsv", ".xlsx", ".xls"}

// Locate finds the manifest inside an extracted archive. The shallowest
// candidate wins; equal depths fall back to extension preference and then
// lexical walk order.
func Locate(root string) (string, error) {
	grouped := make(map[string][]string, len(candidateGroups))
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
		ext := strings.ToLower(filepath.Ext(d.Name()))
		grouped[ext] = append(grouped[ext], path)
		return nil
	})
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, ext := range candidateGroups {
		candidates = append(candidates, grouped[ext]...)
	}
	if len(candidates) == 0 {
		return "", &ManifestNotFoundError{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return depth(root, candidates[i]) < depth(root, candidates[j])
	})
	return candidates[0], nil
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/")
}
