// Package deck owns the template catalog and the .pptx serialization of a
// generated presentation.
package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CatalogSize is the number of visual templates shipped with the bot,
// identified 1..CatalogSize and backed by static preview images.
const CatalogSize = 10

var ErrTemplateMissing = errors.New("template not found")

// Catalog enumerates the fixed template range and resolves preview images.
// Browsing is cyclic: next after the last template is the first one.
type Catalog struct {
	dir  string
	size int
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir, size: CatalogSize}
}

func (c *Catalog) Size() int { return c.size }

func (c *Catalog) Valid(id int) bool { return id >= 1 && id <= c.size }

func (c *Catalog) Next(id int) int {
	if id >= c.size {
		return 1
	}
	return id + 1
}

func (c *Catalog) Prev(id int) int {
	if id <= 1 {
		return c.size
	}
	return id - 1
}

// PreviewPath returns the preview image for a template id, or
// ErrTemplateMissing when the id is out of range or the image is absent.
func (c *Catalog) PreviewPath(id int) (string, error) {
	if !c.Valid(id) {
		return "", fmt.Errorf("%w: id %d out of range", ErrTemplateMissing, id)
	}
	path := filepath.Join(c.dir, fmt.Sprintf("%d.png", id))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateMissing, path)
	}
	return path, nil
}
