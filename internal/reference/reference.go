package reference

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxBaseLength bounds the derived label before any collision suffix.
const MaxBaseLength = 240

// maxAttempts caps the suffix search; BASE-99 is followed by BASE-100 and so on.
const maxAttempts = 10000

// Checker reports whether a reference is already taken. A nil cabinetID means
// the check is not scoped to a cabinet.
type Checker interface {
	ReferenceExists(ctx context.Context, reference string, cabinetID *int64) (bool, error)
}

// Base derives the unsuffixed reference label for filename: the name without
// its extension, upper-cased, spaces replaced by hyphens, truncated to
// MaxBaseLength runes. An empty result becomes an 8 character hex token.
func Base(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}
	stem := strings.TrimSuffix(name, path.Ext(name))
	label := strings.ReplaceAll(strings.ToUpper(stem), " ", "-")
	if runes := []rune(label); len(runes) > MaxBaseLength {
		label = string(runes[:MaxBaseLength])
	}
	if label == "" {
		label = randomToken()
	}
	return label
}

// Generate returns the first free reference among BASE, BASE-01, BASE-02, ...
// Checks run against whatever the checker sees, so a checker bound to the
// batch transaction observes references created earlier in the same batch.
func Generate(ctx context.Context, checker Checker, filename string, cabinetID *int64) (string, error) {
	base := Base(filename)
	candidate := base
	for suffix := 1; suffix <= maxAttempts; suffix++ {
		taken, err := checker.ReferenceExists(ctx, candidate, cabinetID)
		if err != nil {
			return "", fmt.Errorf("check reference %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%02d", base, suffix)
	}
	return "", fmt.Errorf("no free reference for %q after %d attempts", base, maxAttempts)
}

func randomToken() string {
	id := uuid.New()
	return strings.ToUpper(fmt.Sprintf("%x", id[:4]))
}
