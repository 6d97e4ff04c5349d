// Package keywords loads the newline-delimited list of search terms that
// decides which stories are relevant.
package keywords

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// Load reads the keyword file at path and returns its non-blank lines with
// surrounding whitespace removed, in file order. A missing file is not an
// error: it yields an empty slice and a warning.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("keyword file not found", "path", path)
			return []string{}, nil
		}
		return nil, fmt.Errorf("opening keyword file: %w", err)
	}
	defer f.Close()

	kws, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading keyword file %q: %w", path, err)
	}
	return kws, nil
}

// Parse reads keywords from r, one per line. Lines may be any length.
func Parse(r io.Reader) ([]string, error) {
	kws := []string{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if kw := strings.TrimSpace(line); kw != "" {
			kws = append(kws, kw)
		}
		if errors.Is(err, io.EOF) {
			return kws, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
