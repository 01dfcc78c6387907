package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats Diagnostics for a terminal, Rust-compiler-style, the
// way the teacher compiler's ErrorReporter does for source diagnostics —
// except the location line shows only the file:line:col position the
// front end attached to the offending command, since there is no
// source text available at this layer to show a context gutter.
type Reporter struct {
	levelColor func(...interface{}) string
}

// NewReporter returns a Reporter ready to format Diagnostics.
func NewReporter() *Reporter {
	return &Reporter{
		levelColor: color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

// Format renders one Diagnostic as a single human-readable block.
func (r *Reporter) Format(d Diagnostic) string {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", r.levelColor("error"), d.Kind, bold(d.Message))
	loc := d.Loc
	if loc.File == "" {
		loc.File = "<ir>"
	}
	fmt.Fprintf(&b, "  %s %s:%d:%d\n", dim("-->"), loc.File, loc.Line, loc.Col)
	return b.String()
}

// FormatAll renders every diagnostic in the sink, in report order.
func (r *Reporter) FormatAll(s *Sink) string {
	var b strings.Builder
	for _, d := range s.Diagnostics() {
		b.WriteString(r.Format(d))
	}
	return b.String()
}
