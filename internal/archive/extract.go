package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// macResourceDir holds Finder metadata that archives created on macOS carry
// alongside the real content.
const macResourceDir = "__MACOSX"

// Options tunes extraction limits.
type Options struct {
	// MaxExtractedBytes caps the total uncompressed size. Zero disables the cap.
	MaxExtractedBytes int64
}

// Stats summarizes an extraction.
type Stats struct {
	Files int
	Dirs  int
	Bytes int64
}

type plannedEntry struct {
	file   *zip.File
	target string
	dir    bool
}

// Verify reports whether src is a readable ZIP container.
func Verify(src string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return &InvalidArchiveError{Reason: "not a zip archive", Err: err}
	}
	return reader.Close()
}

// Extract unpacks src into dest. Every entry is validated before anything is
// written, so an unsafe entry rejects the whole archive and leaves dest empty.
func Extract(src, dest string, opts Options) (Stats, error) {
	var stats Stats

	reader, err := zip.OpenReader(src)
	if err != nil {
		return stats, &InvalidArchiveError{Reason: "not a zip archive", Err: err}
	}
	defer reader.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return stats, fmt.Errorf("create extraction dir: %w", err)
	}
	root, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return stats, fmt.Errorf("resolve extraction dir: %w", err)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return stats, fmt.Errorf("resolve extraction dir: %w", err)
	}

	plan, declared, err := planEntries(reader.File, root)
	if err != nil {
		return stats, err
	}
	if opts.MaxExtractedBytes > 0 && declared > uint64(opts.MaxExtractedBytes) {
		return stats, &InvalidArchiveError{
			Reason: fmt.Sprintf("uncompressed size %d exceeds limit of %d bytes", declared, opts.MaxExtractedBytes),
		}
	}

	for _, entry := range plan {
		if entry.dir {
			if err := os.MkdirAll(entry.target, 0o755); err != nil {
				return stats, fmt.Errorf("create directory %s: %w", entry.file.Name, err)
			}
			stats.Dirs++
			continue
		}
		remaining := int64(-1)
		if opts.MaxExtractedBytes > 0 {
			remaining = opts.MaxExtractedBytes - stats.Bytes
		}
		written, err := writeEntry(entry, remaining)
		stats.Bytes += written
		if err != nil {
			return stats, err
		}
		stats.Files++
	}
	return stats, nil
}

func planEntries(files []*zip.File, root string) ([]plannedEntry, uint64, error) {
	plan := make([]plannedEntry, 0, len(files))
	var declared uint64
	for _, file := range files {
		name := strings.ReplaceAll(file.Name, `\`, "/")
		if isResourceFork(name) {
			continue
		}
		if file.Mode()&os.ModeSymlink != 0 {
			return nil, 0, &UnsafeArchiveError{Entry: file.Name, Reason: "symbolic links are not allowed"}
		}
		if path.IsAbs(name) || hasDrivePrefix(name) {
			return nil, 0, &UnsafeArchiveError{Entry: file.Name, Reason: "absolute path"}
		}
		cleaned := path.Clean(name)
		if cleaned == "." {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(cleaned))
		rel, err := filepath.Rel(root, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, 0, &UnsafeArchiveError{Entry: file.Name, Reason: "path escapes extraction directory"}
		}
		isDir := file.FileInfo().IsDir() || strings.HasSuffix(name, "/")
		if !isDir {
			declared += file.UncompressedSize64
		}
		plan = append(plan, plannedEntry{file: file, target: target, dir: isDir})
	}
	return plan, declared, nil
}

// writeEntry copies one file. A non-negative limit bounds the bytes actually
// inflated, since declared sizes in the central directory can lie.
func writeEntry(entry plannedEntry, limit int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(entry.target), 0o755); err != nil {
		return 0, fmt.Errorf("create parent for %s: %w", entry.file.Name, err)
	}
	rc, err := entry.file.Open()
	if err != nil {
		return 0, &InvalidArchiveError{Reason: fmt.Sprintf("open entry %s", entry.file.Name), Err: err}
	}
	defer rc.Close()

	out, err := os.OpenFile(entry.target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", entry.file.Name, err)
	}

	var src io.Reader = rc
	if limit >= 0 {
		src = io.LimitReader(rc, limit+1)
	}
	written, copyErr := io.Copy(out, src)
	closeErr := out.Close()
	if copyErr != nil {
		return written, &InvalidArchiveError{Reason: fmt.Sprintf("read entry %s", entry.file.Name), Err: copyErr}
	}
	if closeErr != nil {
		return written, fmt.Errorf("close %s: %w", entry.file.Name, closeErr)
	}
	if limit >= 0 && written > limit {
		return written, &InvalidArchiveError{Reason: "uncompressed size exceeds configured limit"}
	}
	return written, nil
}

func isResourceFork(name string) bool {
	first, _, _ := strings.Cut(strings.TrimPrefix(name, "./"), "/")
	return first == macResourceDir
}

func hasDrivePrefix(name string) bool {
	return len(name) >= 2 && name[1] == ':' &&
		((name[0] >= 'a' && name[0] <= 'z') || (name[0] >= 'A' && name[0] <= 'Z'))
}
