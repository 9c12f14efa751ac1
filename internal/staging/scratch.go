package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	scratchPrefix = "bulk-"
	payloadName   = "payload.zip"
	extractedName = "extracted"
)

// Scratch is the private working directory of one import batch.
type Scratch struct {
	Dir string
}

// NewScratch allocates a uniquely named directory under root so concurrent
// batches never share files.
func NewScratch(root string) (*Scratch, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}
	dir, err := os.MkdirTemp(root, scratchPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Scratch{Dir: dir}, nil
}

// PayloadPath is where the uploaded archive bytes are persisted.
func (s *Scratch) PayloadPath() string {
	return filepath.Join(s.Dir, payloadName)
}

// ExtractDir is the destination for archive contents.
func (s *Scratch) ExtractDir() string {
	return filepath.Join(s.Dir, extractedName)
}

// SavePayload streams r into PayloadPath and returns the byte count.
func (s *Scratch) SavePayload(r io.Reader) (int64, error) {
	out, err := os.OpenFile(s.PayloadPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create payload: %w", err)
	}
	written, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return written, fmt.Errorf("write payload: %w", copyErr)
	}
	if closeErr != nil {
		return written, fmt.Errorf("close payload: %w", closeErr)
	}
	return written, nil
}

// Cleanup removes the scratch directory and everything still in it.
func (s *Scratch) Cleanup() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
