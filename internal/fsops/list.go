package fsops

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/petasbytes/sqlagent/internal/safety"
)

// Export describes one file found under the output directory.
type Export struct {
	Path    string    // relative to the output directory, slash separated
	Size    int64     // bytes
	ModTime time.Time // last modification
}

// ListExports walks root and returns its files sorted by path.
// Hidden directories and hidden non-CSV files are skipped. A missing root yields an empty list.
func ListExports(root string) ([]Export, error) {
	absRoot, err := safety.ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	out := []Export{}
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == absRoot {
				return fs.SkipAll
			}
			return err
		}
		if p != absRoot && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".csv") {
				return nil
			}
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		out = append(out, Export{Path: filepath.ToSlash(rel), Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
