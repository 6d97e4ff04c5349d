package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrReportNotFound is returned for unknown or invalid report names.
var ErrReportNotFound = errors.New("report not found")

// Info describes one report file on disk.
type Info struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// List returns the reports in dir, newest first. A missing directory yields
// an empty list.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading report directory: %w", err)
	}

	reports := []Info{}
	for _, e := range entries {
		if e.IsDir() || !validName(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		reports = append(reports, Info{Name: e.Name(), Size: fi.Size(), Modified: fi.ModTime()})
	}

	// Names embed a sortable timestamp.
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Name > reports[j].Name
	})
	return reports, nil
}

// Read returns the contents of the named report in dir.
func Read(dir, name string) ([]byte, error) {
	if !validName(name) {
		return nil, ErrReportNotFound
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading report %q: %w", name, err)
	}
	return data, nil
}

// validName accepts bare file names of the form cyber_news_<ts>.md.
func validName(name string) bool {
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExt) &&
		len(name) > len(filePrefix)+len(fileExt)
}
