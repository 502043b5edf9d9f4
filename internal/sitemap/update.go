package sitemap

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// UpdateFile reconciles against the sitemap stored at path and overwrites it
// with the result. A missing or unreadable previous sitemap is treated as
// absent.
func (r *Reconciler) UpdateFile(path string) (Stats, error) {
	prev := r.readPrevious(path)

	doc, stats, err := r.Reconcile(prev)
	if err != nil {
		return stats, err
	}
	out, err := doc.Bytes()
	if err != nil {
		return stats, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return stats, fmt.Errorf("write sitemap %s: %w", path, err)
	}
	return stats, nil
}

func (r *Reconciler) readPrevious(path string) *Document {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("Could not read previous sitemap", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		r.logger.Warn("Ignoring malformed previous sitemap", zap.String("path", path), zap.Error(err))
		return nil
	}
	return doc
}
