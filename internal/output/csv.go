package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/sirseerhq/sirseer-harvest/internal/github"
)

// Header is the fixed CSV header row. Column order is part of the output
// contract and must not change between releases.
var Header = []string{
	"number",
	"title",
	"created_at",
	"merged_at",
	"user.type",
	"base.ref",
	"comments",
	"additions",
	"deletions",
}

// timestampFormat matches GitHub's second-granularity UTC timestamps.
const timestampFormat = "2006-01-02T15:04:05Z"

// CSVWriter streams pull-request records to CSV. The header is written
// eagerly on construction so even an immediately-interrupted run produces a
// valid file.
type CSVWriter struct {
	mu        sync.Mutex
	w         *csv.Writer
	count     int
	closeFunc func() error
}

// NewCSVWriter creates a writer on top of an existing io.Writer and writes
// the header row.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w)}
	if err := cw.w.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV header: %w", err)
	}
	return cw, nil
}

// NewFileWriter creates a CSV writer backed by a file, truncating any
// previous run's output. The caller must call Close() when done.
func NewFileWriter(filename string) (*CSVWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	cw, err := NewCSVWriter(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	cw.closeFunc = file.Close
	return cw, nil
}

// Write appends a single record as one CSV row.
func (w *CSVWriter) Write(pr github.PullRequest) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	mergedAt := ""
	if pr.MergedAt != nil {
		mergedAt = pr.MergedAt.UTC().Format(timestampFormat)
	}

	row := []string{
		strconv.Itoa(pr.Number),
		pr.Title,
		pr.CreatedAt.UTC().Format(timestampFormat),
		mergedAt,
		pr.AuthorType,
		pr.BaseRef,
		strconv.Itoa(pr.Comments),
		strconv.Itoa(pr.Additions),
		strconv.Itoa(pr.Deletions),
	}

	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("failed to write record %d: %w", pr.Number, err)
	}

	w.count++
	return nil
}

// Flush pushes buffered rows to the underlying writer.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Count returns the number of records written.
func (w *CSVWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes remaining rows and closes the underlying file, if any.
func (w *CSVWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closeFunc != nil {
		fn := w.closeFunc
		w.closeFunc = nil
		return fn()
	}
	return nil
}
