package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/slotfill/pkg/schema"
)

// Report is the validation outcome of one template file.
type Report struct {
	Path   string
	ID     string
	Issues schema.Issues
	Err    error
}

// Valid reports whether the file compiled cleanly.
func (r Report) Valid() bool {
	return r.Err == nil && len(r.Issues) == 0
}

func isTemplateFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// ValidatePaths compiles every template file named by paths. Directories are walked for
// YAML and JSON files; hidden directories are skipped.
func ValidatePaths(paths ...string) ([]Report, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isTemplateFile(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}
	sort.Strings(files)

	reports := make([]Report, 0, len(files))
	for _, f := range files {
		rep := Report{Path: f}
		tpl, err := schema.Load(f)
		switch {
		case err == nil:
			rep.ID = tpl.ID
		case schema.IssuesOf(err) != nil:
			rep.Issues = schema.IssuesOf(err)
		default:
			rep.Err = err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
