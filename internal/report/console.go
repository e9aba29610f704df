package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	isatty "github.com/mattn/go-isatty"

	"github.com/aliskhannn/watermarker/internal/model"
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)  // green
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red
	styleWarnLbl = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true) // yellow
	styleDesc    = lipgloss.NewStyle().Faint(true)
	styleTotal   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
)

// Printer writes per-job lines and the batch summary to a terminal.
// It is safe for concurrent use.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer for w. Colors are used only when w is a
// terminal and noColor is false.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &Printer{w: w, color: color && !noColor}
}

func (p *Printer) r(st lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return st.Render(s)
}

// Result prints one finished job.
func (p *Printer) Result(res model.JobResult) {
	var line string
	if res.Succeeded() {
		line = fmt.Sprintf("%s Saved %s %s\n",
			p.r(styleOK, "✓"),
			res.OutputPath,
			p.r(styleDesc, fmt.Sprintf("(%dx%d, %s)", res.Width, res.Height, humanize.Bytes(uint64(res.Bytes)))),
		)
	} else {
		line = fmt.Sprintf("%s Failed %s: %s\n", p.r(styleFail, "✗"), res.SourcePath, res.Error)
	}

	p.write(line)
}

// DiscoveryFailure prints an input that produced no jobs.
func (p *Printer) DiscoveryFailure(f model.DiscoveryFailure) {
	p.write(fmt.Sprintf("%s %s\n", p.r(styleFail, "✗"), f.Error))
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, a ...interface{}) {
	p.write(p.r(styleWarnLbl, "Warning:") + " " + fmt.Sprintf(format, a...) + "\n")
}

// Summary prints discovery failures and the totals of a finished batch.
func (p *Printer) Summary(r *model.Report) {
	for _, f := range r.DiscoveryErrors {
		p.DiscoveryFailure(f)
	}

	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(10 * time.Millisecond)
	p.write(fmt.Sprintf("%s %s, %s, %s written in %s\n",
		p.r(styleTotal, "Done:"),
		p.r(styleOK, fmt.Sprintf("%d succeeded", r.Succeeded())),
		p.failed(r.Failed()),
		humanize.Bytes(uint64(r.TotalBytes())),
		elapsed,
	))
}

func (p *Printer) failed(n int) string {
	s := fmt.Sprintf("%d failed", n)
	if n == 0 {
		return p.r(styleDesc, s)
	}
	return p.r(styleFail, s)
}

func (p *Printer) write(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.w, s)
}
