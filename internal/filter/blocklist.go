package filter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// Blocklist is the set of lower-cased source names to drop.
type Blocklist map[string]struct{}

// NewBlocklist normalizes names into a set.
func NewBlocklist(names ...string) Blocklist {
	b := Blocklist{}
	for _, name := range names {
		b.Add(name)
	}
	return b
}

// Add inserts a normalized source name; blanks are ignored.
func (b Blocklist) Add(name string) {
	name = normalizeSource(name)
	if name == "" {
		return
	}
	b[name] = struct{}{}
}

// Contains reports whether the source is blocked. A nil list blocks nothing.
func (b Blocklist) Contains(source string) bool {
	_, ok := b[normalizeSource(source)]
	return ok
}

// Len returns the number of blocked sources.
func (b Blocklist) Len() int { return len(b) }

// LoadBlocklist reads the first column of a CSV file with a header row.
// A missing file yields an empty list.
func LoadBlocklist(path string, log *slog.Logger) (Blocklist, error) {
	if path == "" {
		return Blocklist{}, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if log != nil {
			log.Info("source block-list not found, filtering disabled", "path", path)
		}
		return Blocklist{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open block-list %s: %w", path, err)
	}
	defer f.Close()

	return ReadBlocklist(f)
}

// ReadBlocklist parses block-list rows from r, skipping the header.
func ReadBlocklist(r io.Reader) (Blocklist, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	list := Blocklist{}
	header := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return list, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read block-list: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) > 0 {
			list.Add(row[0])
		}
	}
}

func normalizeSource(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
