package report

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Opener shows a finished report to the user.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// NopOpener leaves the report alone.
type NopOpener struct{}

func (NopOpener) Open(context.Context, string) error { return nil }

// SystemOpener launches the desktop's default viewer for the report, or the
// configured viewer command when one is set. It does not wait for the viewer.
type SystemOpener struct {
	// Viewer is a command line the report path is appended to, e.g. "libreoffice --calc".
	Viewer string
	// GOOS selects the platform default; empty means runtime.GOOS.
	GOOS string
}

// Command returns the program and arguments used to open path.
func (o SystemOpener) Command(path string) (string, []string) {
	if fields := strings.Fields(o.Viewer); len(fields) > 0 {
		return fields[0], append(fields[1:], path)
	}

	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

func (o SystemOpener) Open(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, args := o.Command(path)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s with %s: %w", path, name, err)
	}
	return cmd.Process.Release()
}

// NewOpener returns a SystemOpener when open is set and a NopOpener otherwise.
func NewOpener(open bool, viewer string) Opener {
	if !open {
		return NopOpener{}
	}
	return SystemOpener{Viewer: viewer}
}
