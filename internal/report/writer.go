package report

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strconv"
)

// Summary describes what a Writer produced.
type Summary struct {
	Rows   int
	Digest string
}

// Writer writes report rows as CSV with the report header.
type Writer struct {
	csv    *csv.Writer
	digest hash.Hash
	rows   int
	header bool
}

// NewWriter creates a CSV report writer. useCRLF ends lines with \r\n for
// spreadsheet tools.
func NewWriter(w io.Writer, useCRLF bool) *Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = useCRLF
	return &Writer{csv: cw, digest: sha256.New()}
}

func (w *Writer) writeHeader() error {
	if w.header {
		return nil
	}
	w.header = true
	if err := w.csv.Write(Header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	return nil
}

// Write appends one row.
func (w *Writer) Write(r Row) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	fields := r.Fields()
	if err := w.csv.Write(fields); err != nil {
		return fmt.Errorf("failed to write report row %d: %w", w.rows+1, err)
	}
	hashFields(w.digest, fields)
	w.rows++
	return nil
}

// Close writes the header if no row was written and flushes buffered output.
func (w *Writer) Close() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// Summary returns the number of rows written and their digest.
func (w *Writer) Summary() Summary {
	return Summary{Rows: w.rows, Digest: hex.EncodeToString(w.digest.Sum(nil))}
}

// WriteFile writes all rows produced by each to path, replacing any existing file.
func WriteFile(path string, useCRLF bool, each func(func(Row) error) error) (Summary, error) {
	f, err := os.Create(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	w := NewWriter(f, useCRLF)
	if err := each(w.Write); err != nil {
		return Summary{}, err
	}
	if err := w.Close(); err != nil {
		return Summary{}, err
	}
	if err := f.Close(); err != nil {
		return Summary{}, fmt.Errorf("failed to close report: %w", err)
	}
	return w.Summary(), nil
}

// hashFields feeds length-prefixed fields to h so that field boundaries are unambiguous.
func hashFields(h hash.Hash, fields []string) {
	for _, f := range fields {
		io.WriteString(h, strconv.Itoa(len(f)))
		io.WriteString(h, ":")
		io.WriteString(h, f)
	}
	io.WriteString(h, "\n")
}
