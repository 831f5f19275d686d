package files

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

// FileInfo describes one discovered instrument file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery walks the input tree for instrument files.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindInstrumentFiles recursively collects files whose base name
// matches the glob pattern, sorted by full path.
func (d *Discovery) FindInstrumentFiles(pattern string) ([]FileInfo, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	var files []FileInfo
	err := filepath.WalkDir(d.basePath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil || !ok {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.basePath, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}
