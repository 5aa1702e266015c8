package launcher

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// Opener hands a URL to something outside the process
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Browser opens URLs with the desktop's default handler
type Browser struct {
	logger zerolog.Logger
	goos   string
	run    func(cmd *exec.Cmd) error
}

// NewBrowser creates a browser launcher for the current platform
func NewBrowser(logger zerolog.Logger) *Browser {
	return &Browser{
		logger: logger.With().Str("component", "launcher").Logger(),
		goos:   runtime.GOOS,
		run:    func(cmd *exec.Cmd) error { return cmd.Run() },
	}
}

// Open starts the platform URL handler and waits for it to exit, so no
// child is left behind when the loop moves on. The handler is killed if ctx
// is cancelled first.
func (b *Browser) Open(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("refusing to open non-http url %q", url)
	}

	name, args := Command(b.goos, url)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	b.logger.Debug().
		Str("command", name).
		Str("url", url).
		Msg("Opening browser")

	if err := b.run(cmd); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Command returns the URL handler invocation for goos
func Command(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
