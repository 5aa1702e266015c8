package launcher

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"linux", "xdg-open", []string{"https://x"}},
		{"freebsd", "xdg-open", []string{"https://x"}},
		{"darwin", "open", []string{"https://x"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "https://x"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := Command(tt.goos, "https://x")
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBrowserOpen(t *testing.T) {
	var got *exec.Cmd
	b := NewBrowser(zerolog.Nop())
	b.goos = "linux"
	b.run = func(cmd *exec.Cmd) error {
		got = cmd
		return nil
	}

	require.NoError(t, b.Open(context.Background(), "https://icinga/monitoring/host/show?host=a"))
	require.NotNil(t, got)
	assert.Equal(t, []string{"xdg-open", "https://icinga/monitoring/host/show?host=a"}, got.Args)
}

func TestBrowserOpenError(t *testing.T) {
	b := NewBrowser(zerolog.Nop())
	b.run = func(*exec.Cmd) error { return errors.New("exec: not found") }

	err := b.Open(context.Background(), "https://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBrowserOpenRejectsNonHTTP(t *testing.T) {
	b := NewBrowser(zerolog.Nop())
	b.run = func(*exec.Cmd) error {
		t.Fatal("must not run")
		return nil
	}
	assert.Error(t, b.Open(context.Background(), "file:///etc/passwd"))
	assert.Error(t, b.Open(context.Background(), ""))
}
