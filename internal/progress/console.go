package progress

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/time/rate"
)

const (
	barWidth     = 24
	defaultWidth = 100
)

// Console renders a single self-overwriting progress line.
type Console struct {
	out      io.Writer
	width    int
	interval time.Duration
	throttle *rate.Sometimes

	task      string
	details   string
	lastWidth int
	active    bool
}

// NewConsole creates a console sink writing to out. Redraws are limited to
// one per interval, and a zero interval draws every report. The final report
// of a task is always drawn.
func NewConsole(out io.Writer, interval time.Duration) *Console {
	return &Console{
		out:      out,
		width:    terminalWidth(),
		interval: interval,
		throttle: newThrottle(interval),
	}
}

func newThrottle(interval time.Duration) *rate.Sometimes {
	if interval <= 0 {
		return &rate.Sometimes{Every: 1}
	}
	return &rate.Sometimes{Interval: interval}
}

// terminalWidth honours $COLUMNS and falls back to a fixed width.
func terminalWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 20 {
		return n - 1
	}
	return defaultWidth
}

func (c *Console) SetTask(task string) {
	c.Finish()
	c.task = task
	c.details = ""
	c.throttle = newThrottle(c.interval)
	fmt.Fprintln(c.out, color.New(color.FgCyan, color.OpBold).Sprint("==> "+task))
}

func (c *Console) SetDetails(details string) {
	c.details = details
	fmt.Fprintln(c.out, "    "+color.Gray.Sprint(details))
}

func (c *Console) Report(done, total int64) {
	if total > 0 && done >= total {
		c.draw(done, total)
		return
	}
	c.throttle.Do(func() { c.draw(done, total) })
}

// Finish terminates the current progress line.
func (c *Console) Finish() {
	if c.active {
		fmt.Fprintln(c.out)
		c.active = false
		c.lastWidth = 0
	}
}

func (c *Console) draw(done, total int64) {
	line := FormatLine(done, total)
	line = runewidth.Truncate(line, c.width, "…")

	w := runewidth.StringWidth(line)
	pad := ""
	if c.lastWidth > w {
		pad = strings.Repeat(" ", c.lastWidth-w)
	}
	c.lastWidth = w
	c.active = true

	fmt.Fprint(c.out, "\r"+colorize(line)+pad)
}

// FormatLine renders the uncoloured progress text for done/total.
func FormatLine(done, total int64) string {
	if total <= 0 {
		return fmt.Sprintf("    %d", done)
	}
	if done > total {
		done = total
	}
	filled := int(done * barWidth / total)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	pct := float64(done) * 100 / float64(total)
	return fmt.Sprintf("    [%s] %5.1f%% (%d/%d)", bar, pct, done, total)
}

func colorize(line string) string {
	if i := strings.Index(line, "]"); i > 0 {
		return color.Green.Sprint(line[:i+1]) + line[i+1:]
	}
	return line
}
