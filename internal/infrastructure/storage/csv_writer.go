package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/ports"
	"EnterpriseRiskNews/internal/sentiment"
)

// Columns is the header of the record CSV, in order.
var Columns = []string{
	"SEARCH_TERMS",
	"TITLE",
	"SUMMARY",
	"KEYWORDS",
	"PUBLISHED_DATE",
	"LINK",
	"SOURCE",
	"SOURCE_URL",
	"SENTIMENT",
	"POLARITY",
	"LAST_RUN_TIMESTAMP",
}

const (
	publishedLayout = "2006-01-02"
	runAtLayout     = "2006-01-02T15:04:05.000000"
)

// CSVWriter replaces the file at path with the records of a run.
type CSVWriter struct {
	path string
}

var _ ports.RecordRepository = (*CSVWriter)(nil)

// NewCSVWriter targets path; parent directories are created on write.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Path returns the output file location.
func (w *CSVWriter) Path() string { return w.path }

// SaveRecords writes the header and one row per record.
func (w *CSVWriter) SaveRecords(ctx context.Context, _ string, records []domain.OutputRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmp := w.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	if err := WriteCSV(f, records); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("replace csv: %w", err)
	}
	return nil
}

// WriteCSV encodes records with the Columns header.
func WriteCSV(out io.Writer, records []domain.OutputRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func row(rec domain.OutputRecord) []string {
	published := ""
	if rec.Published != nil {
		published = rec.Published.Format(publishedLayout)
	}
	return []string{
		rec.SearchTerm,
		rec.Title,
		rec.Summary,
		strings.Join(rec.Keywords, ","),
		published,
		rec.Link,
		rec.Source,
		rec.SourceURL,
		string(rec.Sentiment.Label),
		sentiment.FormatPolarity(rec.Sentiment.Score),
		rec.RunAt.Format(runAtLayout),
	}
}
