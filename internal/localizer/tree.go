package localizer

import (
	"io/fs"
	"os"
	"path/filepath"
)

// ProjectTree walks root and returns every regular file's path relative to
// root, skipping the excluded directories formatStructure also filters on
// (ported from the original _get_project_structure's os.walk exclude list).
func ProjectTree(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); excludeDirs[name] {
				return fs.SkipDir
			}
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return paths, nil
}
