package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/wtc-cli/wtc/internal/types"
	"github.com/wtc-cli/wtc/internal/view"
)

const (
	clearScreen   = "\x1b[H\x1b[2J"
	colorReset    = "\x1b[0m"
	colorRed      = 31
	colorGreen    = 32
	colorYellow   = 33
	colorCyan     = 36
	footerEntries = 5
)

// Frame is everything shown for one refresh
type Frame struct {
	Rows []view.Row
	// Warnings are shown under the table, e.g. sources skipped this cycle.
	Warnings []string
	// Since selects which buffered log entries belong to this cycle.
	Since time.Time
}

// Renderer draws frames and prompts on a terminal
type Renderer struct {
	out   io.Writer
	color bool
	clear bool
	logs  *LogBuffer
}

// NewRenderer creates a renderer writing to out. Colours and screen clearing
// are only used when out is a terminal.
func NewRenderer(out io.Writer, logs *LogBuffer) *Renderer {
	tty := isTerminal(out)
	return &Renderer{
		out:   out,
		color: tty && colorAllowed(),
		clear: tty,
		logs:  logs,
	}
}

// NewStdoutRenderer renders to stdout, translating ANSI sequences on
// consoles that need it.
func NewStdoutRenderer(logs *LogBuffer) *Renderer {
	r := NewRenderer(os.Stdout, logs)
	if r.clear {
		r.out = colorable.NewColorableStdout()
	}
	return r
}

// SetColor overrides terminal detection
func (r *Renderer) SetColor(enabled bool) {
	r.color = enabled
}

// SetClear overrides terminal detection for screen clearing
func (r *Renderer) SetClear(enabled bool) {
	r.clear = enabled
}

// Show clears the screen and draws the frame
func (r *Renderer) Show(f Frame) error {
	var b strings.Builder
	if r.clear {
		b.WriteString(clearScreen)
	}
	r.writeTable(&b, f.Rows)

	var footer []string
	footer = append(footer, f.Warnings...)
	if r.logs != nil {
		for _, e := range r.logs.Since(f.Since, zerolog.WarnLevel, footerEntries) {
			footer = append(footer, e.String())
		}
	}
	if len(footer) > 0 {
		b.WriteString("\n")
		for _, line := range footer {
			b.WriteString(r.paint("! "+line, colorYellow))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// Prompt prints the input prompt
func (r *Renderer) Prompt(hint string) error {
	_, err := fmt.Fprintf(r.out, "%s\n([0-9]|q)> ", hint)
	return err
}

// ShowURL prints a resolved URL for the operator to copy
func (r *Renderer) ShowURL(url string) error {
	_, err := fmt.Fprintf(r.out, "%s\ncopy or open url and press enter to refresh screen\n", url)
	return err
}

var headers = []string{"#", "Timestamp", "State", "Recovered", "Hostname", "Service"}

func (r *Renderer) writeTable(b *strings.Builder, rows []view.Row) {
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for i, row := range rows {
		cells[i] = []string{
			fmt.Sprintf("%02d", row.Index),
			row.Timestamp,
			row.StateLabel(),
			row.RecoveredLabel(),
			row.Host,
			row.Service,
		}
		for j, c := range cells[i] {
			widths[j] = max(widths[j], utf8.RuneCountInString(c))
		}
	}

	total := 0
	for j, h := range headers {
		if j > 0 {
			b.WriteString("  ")
			total += 2
		}
		b.WriteString(pad(h, widths[j], j == len(headers)-1))
		total += widths[j]
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("━", total))
	b.WriteString("\n")

	for i, row := range rows {
		for j, c := range cells[i] {
			if j > 0 {
				b.WriteString("  ")
			}
			text := pad(c, widths[j], j == len(headers)-1)
			switch j {
			case 2:
				text = r.paint(text, stateColor(row.State))
			case 3:
				if row.Recovered {
					text = r.paint(text, colorGreen)
				} else {
					text = r.paint(text, colorRed)
				}
			}
			b.WriteString(text)
		}
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString("no notifications\n")
	}
}

func (r *Renderer) paint(s string, code int) string {
	if !r.color || code == 0 {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s%s", code, s, colorReset)
}

func stateColor(s types.State) int {
	switch s {
	case types.StateOK:
		return colorGreen
	case types.StateWarning:
		return colorYellow
	case types.StateCritical:
		return colorRed
	case types.StateUnknown:
		return colorCyan
	default:
		return 0
	}
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func colorAllowed() bool {
	return os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
