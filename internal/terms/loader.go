package terms

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"EnterpriseRiskNews/internal/domain"
)

// LoadCSV reads `(id, encoded_value)` rows after a header line and returns
// the decodable, non-empty terms in file order. limit <= 0 keeps all terms.
func LoadCSV(path string, limit int, log *slog.Logger) ([]domain.SearchTerm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open terms %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, limit, log)
}

// Read is LoadCSV over an arbitrary reader.
func Read(r io.Reader, limit int, log *slog.Logger) ([]domain.SearchTerm, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read terms header: %w", err)
	}

	var out []domain.SearchTerm
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read terms line %d: %w", line, err)
		}
		if len(row) < 2 {
			warn(log, "terms row without encoded value", "line", line)
			continue
		}

		term, ok := DecodeTerm(row[0], row[1])
		if !ok {
			warn(log, "drop undecodable term", "line", line, "id", row[0])
			continue
		}
		if strings.TrimSpace(term.Query) == "" {
			warn(log, "drop empty term", "line", line, "id", row[0])
			continue
		}

		out = append(out, term)
		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out, nil
}

func warn(log *slog.Logger, msg string, args ...any) {
	if log != nil {
		log.Warn(msg, args...)
	}
}
