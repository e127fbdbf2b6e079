// Package progress reports pipeline progress without tying the pipeline to a console.
package progress

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Sink receives progress notifications from long-running stages.
// Implementations must tolerate Report being called for every element visited.
type Sink interface {
	// SetTask starts a new task, e.g. "Loading API catalog".
	SetTask(task string)
	// SetDetails attaches a secondary line, e.g. the file being read.
	SetDetails(details string)
	// Report records done out of total units; total <= 0 means unknown.
	Report(done, total int64)
}

// Nop is a Sink that discards everything.
type Nop struct{}

func (Nop) SetTask(string)      {}
func (Nop) SetDetails(string)   {}
func (Nop) Report(int64, int64) {}

// OrNop returns s, or a Nop sink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// New builds the sink for a progress mode: "never" discards, "always" renders,
// "auto" renders only when out is a terminal.
func New(mode string, interval time.Duration, out *os.File) Sink {
	switch mode {
	case "never":
		return Nop{}
	case "always":
		return NewConsole(out, interval)
	default:
		if out != nil && IsTerminal(out) {
			return NewConsole(out, interval)
		}
		return Nop{}
	}
}

// IsTerminal reports whether f is attached to a terminal (including Cygwin/MSYS).
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Finish ends the current progress line if the sink renders one.
func Finish(s Sink) {
	if c, ok := s.(interface{ Finish() }); ok {
		c.Finish()
	}
}

// Reader counts bytes flowing through an io.Reader and reports them to a Sink.
type Reader struct {
	r     io.Reader
	sink  Sink
	total int64
	read  int64
}

// NewReader wraps r; total is the expected size in bytes (<= 0 if unknown).
func NewReader(r io.Reader, total int64, sink Sink) *Reader {
	return &Reader{r: r, sink: OrNop(sink), total: total}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.sink.Report(p.read, p.total)
	}
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (p *Reader) BytesRead() int64 {
	return p.read
}
