package controller

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Action is what a line of console input asks for
type Action int

const (
	ActionRefresh Action = iota
	ActionSelect
	ActionQuit
)

// ParseInput interprets one console line. A number selects that 1-based
// entry; "q" quits; anything else, including an empty line, refreshes.
func ParseInput(line string) (Action, int) {
	t := strings.TrimSpace(line)
	if t == "q" {
		return ActionQuit, 0
	}
	if n, err := strconv.Atoi(t); err == nil {
		return ActionSelect, n
	}
	return ActionRefresh, 0
}

// lineReader turns a blocking reader into a cancellable one. A single
// goroutine owns the reader; ReadLine waits for either its next line or ctx.
type lineReader struct {
	r     io.Reader
	lines chan string
	once  sync.Once

	mu  sync.Mutex
	err error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: r, lines: make(chan string)}
}

func (l *lineReader) ReadLine(ctx context.Context) (string, error) {
	l.once.Do(func() { go l.pump() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-l.lines:
		if !ok {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.err != nil {
				return "", l.err
			}
			return "", io.EOF
		}
		return line, nil
	}
}

func (l *lineReader) pump() {
	scanner := bufio.NewScanner(l.r)
	for scanner.Scan() {
		l.lines <- scanner.Text()
	}
	l.mu.Lock()
	l.err = scanner.Err()
	l.mu.Unlock()
	close(l.lines)
}
