package usage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/dbsmedya/breakingchanges/internal/progress"
)

// Compression modes accepted by LoadOptions.
const (
	CompressionAuto = "auto"
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// LoadOptions controls how a usage file is read.
type LoadOptions struct {
	// Compression is one of auto, none, gzip or zstd. Empty means auto.
	Compression string
}

// LoadError reports a usage file that is missing, truncated or malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load usage results: %v", e.Err)
	}
	return fmt.Sprintf("failed to load usage results from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// FormatError reports usage data that decoded but violates the record invariants.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "invalid usage data: " + e.Msg
}

// Load decodes an uncompressed usage document from r.
func Load(r io.Reader) (*Results, error) {
	res, err := decode(r)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return res, nil
}

// LoadFile reads the usage file at path, reporting bytes read to sink.
// The file is closed before LoadFile returns.
func LoadFile(path string, opts LoadOptions, sink progress.Sink) (*Results, error) {
	sink = progress.OrNop(sink)

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	sink.SetTask("Loading usage results")
	sink.SetDetails(path)

	in, closeFn, err := decompress(progress.NewReader(f, size, sink), opts.Compression)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer closeFn()

	res, err := decode(in)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return res, nil
}

func decode(r io.Reader) (*Results, error) {
	dec := json.NewDecoder(r)

	var res Results
	if err := dec.Decode(&res); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty usage document")
		}
		return nil, fmt.Errorf("decode usage document: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after usage document")
	}

	if err := res.index(); err != nil {
		return nil, err
	}
	return &res, nil
}

// decompress wraps r according to mode, sniffing magic bytes in auto mode.
// The returned func releases decoder resources.
func decompress(r io.Reader, mode string) (io.Reader, func(), error) {
	br := bufio.NewReader(r)
	nop := func() {}

	if mode == "" || mode == CompressionAuto {
		head, _ := br.Peek(len(zstdMagic))
		switch {
		case bytes.HasPrefix(head, zstdMagic):
			mode = CompressionZstd
		case bytes.HasPrefix(head, gzipMagic):
			mode = CompressionGzip
		default:
			mode = CompressionNone
		}
	}

	switch mode {
	case CompressionNone:
		return br, nop, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nop, fmt.Errorf("open gzip stream: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nop, fmt.Errorf("open zstd stream: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return nil, nop, fmt.Errorf("unknown compression %q", mode)
	}
}
