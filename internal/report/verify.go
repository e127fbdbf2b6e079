package report

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/dbsmedya/breakingchanges/internal/logger"
)

// VerificationMethod defines how a written report is checked.
type VerificationMethod string

const (
	// MethodCount compares the number of data rows (fast)
	MethodCount VerificationMethod = "count"
	// MethodSHA256 compares a digest over all logical rows
	MethodSHA256 VerificationMethod = "sha256"
	// MethodSkip skips verification entirely
	MethodSkip VerificationMethod = "skip"
)

// VerifyResult holds the outcome of re-reading a report.
type VerifyResult struct {
	Path         string
	Method       VerificationMethod
	WrittenRows  int
	ReadRows     int
	WrittenHash  string
	ReadHash     string
	Match        bool
	ErrorMessage string
}

// Verifier re-reads a written report with a CSV reader and compares it
// with what the Writer recorded.
type Verifier struct {
	method VerificationMethod
	logger *logger.Logger
}

// NewVerifier creates a verifier; an empty method means count.
func NewVerifier(method VerificationMethod, log *logger.Logger) *Verifier {
	if method == "" {
		method = MethodCount
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Verifier{method: method, logger: log}
}

// Method returns the configured verification method.
func (v *Verifier) Method() VerificationMethod {
	return v.method
}

// Verify checks the report at path against written. A mismatch is returned as
// an error together with the populated result.
func (v *Verifier) Verify(path string, written Summary) (*VerifyResult, error) {
	result := &VerifyResult{
		Path:        path,
		Method:      v.method,
		WrittenRows: written.Rows,
		WrittenHash: written.Digest,
	}

	if v.method == MethodSkip {
		v.logger.Info("Report verification SKIPPED (method=skip)")
		result.Match = true
		return result, nil
	}

	read, err := readSummary(path)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("failed to re-read report: %w", err)
	}
	result.ReadRows = read.Rows
	result.ReadHash = read.Digest

	switch v.method {
	case MethodCount:
		result.Match = read.Rows == written.Rows
		if !result.Match {
			result.ErrorMessage = fmt.Sprintf("row count mismatch: wrote %d, read %d", written.Rows, read.Rows)
		}
	case MethodSHA256:
		result.Match = read.Rows == written.Rows && read.Digest == written.Digest
		if !result.Match {
			result.ErrorMessage = fmt.Sprintf("digest mismatch: wrote %s (%d rows), read %s (%d rows)",
				written.Digest, written.Rows, read.Digest, read.Rows)
		}
	default:
		return result, fmt.Errorf("unknown verification method %q", v.method)
	}

	if !result.Match {
		v.logger.Errorf("Report verification FAILED: %s", result.ErrorMessage)
		return result, errors.New(result.ErrorMessage)
	}

	v.logger.Infof("Report verification PASSED (method=%s, rows=%d)", v.method, read.Rows)
	return result, nil
}

// ReadRows parses a report file back into rows.
func ReadRows(path string) ([]Row, error) {
	var rows []Row
	err := scan(path, func(fields []string) {
		rows = append(rows, Row{
			ID:        fields[0],
			Namespace: fields[1],
			Type:      fields[2],
			Member:    fields[3],
			Package:   fields[4],
			Path:      fields[5],
		})
	})
	return rows, err
}

func readSummary(path string) (Summary, error) {
	h := sha256.New()
	n := 0
	err := scan(path, func(fields []string) {
		hashFields(h, fields)
		n++
	})
	if err != nil {
		return Summary{}, err
	}
	return Summary{Rows: n, Digest: hex.EncodeToString(h.Sum(nil))}, nil
}

// scan reads the report at path, checks its header and calls fn for each data row.
func scan(path string, fn func([]string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("report %s is empty", path)
		}
		return err
	}
	if !slices.Equal(header, Header) {
		return fmt.Errorf("unexpected report header %v", header)
	}

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fn(fields)
	}
}
