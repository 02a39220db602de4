package diag

import (
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// OnWarn receives one warning diagnostic as it is produced, mirroring
// spec.md §6's onWarn(diagnostic) compiler option.
type OnWarn func(Diagnostic)

// Collector accumulates warnings for a single module compile, the same
// aggregation the teacher's internal/cli.Run performs over []rules.Issue,
// generalized to forward live through an OnWarn callback when one is
// configured instead of only buffering.
type Collector struct {
	mu       sync.Mutex
	warnings []Diagnostic
	onWarn   OnWarn
}

// NewCollector creates a Collector. onWarn may be nil, in which case
// warnings are only buffered for later retrieval via Warnings().
func NewCollector(onWarn OnWarn) *Collector {
	return &Collector{onWarn: onWarn}
}

// Warn records a warning diagnostic and forwards it live if a callback was
// configured.
func (c *Collector) Warn(d Diagnostic) {
	c.mu.Lock()
	c.warnings = append(c.warnings, d)
	cb := c.onWarn
	c.mu.Unlock()

	if cb != nil {
		cb(d)
	}
}

// Warnings returns every warning collected so far, in emission order.
func (c *Collector) Warnings() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// WriteText renders diagnostics as the stable one-line-per-diagnostic
// format spec.md §7 requires of the CLI/plugin harness, using pterm's
// leveled printers (wired from bennypowers-cem's CLI, which renders every
// user-facing message this way) in place of the teacher's raw
// fmt.Fprintf(os.Stderr, ...).
func WriteText(w io.Writer, diagnostics []Diagnostic) {
	for _, d := range diagnostics {
		line := fmt.Sprintf("%s:%d:%d: %s %s: %s", d.FilePath, d.Line, d.Column, d.Severity, d.Code, d.Message)
		switch d.Severity {
		case Fatal, Internal:
			pterm.Error.WithWriter(w).Println(line)
		default:
			pterm.Warning.WithWriter(w).Println(line)
		}
	}
}
