package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"smartshelf/internal/fileutil"
)

const pdfExtension = ".pdf"

// Stored describes a file that now lives under the uploads root.
type Stored struct {
	Path      string
	SizeBytes int64
	// PageCount is zero when content validation is disabled.
	PageCount int
}

// Relocator moves validated PDFs from scratch space into durable storage.
type Relocator struct {
	root     string
	validate bool
}

// NewRelocator returns a relocator writing into root. With validate set, each
// file is parsed with pdfcpu before it is moved.
func NewRelocator(root string, validate bool) *Relocator {
	return &Relocator{root: root, validate: validate}
}

// Root returns the uploads directory.
func (r *Relocator) Root() string {
	return r.root
}

// Relocate moves src under a random 32 hex character name. Once this returns,
// src no longer exists so scratch teardown cannot touch the stored copy.
func (r *Relocator) Relocate(src string) (Stored, error) {
	name := filepath.Base(src)
	if strings.ToLower(filepath.Ext(name)) != pdfExtension {
		return Stored{}, &NotAPdfError{Name: name}
	}

	info, err := os.Stat(src)
	if err != nil {
		return Stored{}, fmt.Errorf("stat %s: %w", name, err)
	}

	stored := Stored{SizeBytes: info.Size()}
	if r.validate {
		pages, err := inspectPDF(src)
		if err != nil {
			return Stored{}, &NotAPdfError{Name: name, Reason: "failed PDF validation", Err: err}
		}
		stored.PageCount = pages
	}

	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return Stored{}, fmt.Errorf("create uploads root: %w", err)
	}
	target := filepath.Join(r.root, storedName())
	if err := fileutil.MoveFile(src, target); err != nil {
		return Stored{}, fmt.Errorf("move %s into storage: %w", name, err)
	}
	stored.Path = target
	return stored, nil
}

// Remove deletes a previously relocated file. Missing files are ignored.
func (r *Relocator) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func storedName() string {
	id := uuid.New()
	return fmt.Sprintf("%x%s", id[:], pdfExtension)
}

func inspectPDF(path string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, err
	}
	return api.PageCountFile(path)
}
