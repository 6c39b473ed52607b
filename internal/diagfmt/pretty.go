package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jsema/internal/diag"
	"jsema/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code            *color.Color
	gutter          *color.Color
	note            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		writeDiagnostic(w, fs, d, opts, pal)
	}
}

func writeDiagnostic(w io.Writer, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts, pal palette) {
	sev := pal.severity(d.Severity)
	file := fileOf(fs, d.Primary)
	if loc := location(file, d.Primary, opts.PathMode, opts.BaseDir); loc != "" {
		fmt.Fprintf(w, "%s: ", loc)
	}
	fmt.Fprintf(w, "%s %s: %s\n", sev.Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()), d.Message)
	if file != nil {
		writeSnippet(w, file, d.Primary, opts, pal, sev)
	}
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		loc := location(fileOf(fs, n.Span), n.Span, opts.PathMode, opts.BaseDir)
		if loc != "" {
			loc += ": "
		}
		fmt.Fprintf(w, "  %s %s%s\n", pal.note.Sprint("= note:"), loc, n.Msg)
	}
}

func fileOf(fs *source.FileSet, sp source.Span) *source.File {
	if fs == nil {
		return nil
	}
	return fs.Get(sp.File)
}

func location(f *source.File, sp source.Span, mode PathMode, base string) string {
	if f == nil {
		return ""
	}
	pos := f.Position(sp.Start)
	return fmt.Sprintf("%s:%d:%d", displayPath(f, mode, base), pos.Line, pos.Col)
}

func writeSnippet(w io.Writer, f *source.File, sp source.Span, opts PrettyOpts, pal palette, sev *color.Color) {
	start := f.Position(sp.Start)
	end := f.Position(sp.End)

	first := start.Line
	for i := 0; i < opts.Context && first > 1; i++ {
		first--
	}
	gw := len(strconv.FormatUint(uint64(start.Line), 10))
	for line := first; line <= start.Line; line++ {
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gw, line), clip(f.GetLine(line), opts.Width))
	}

	text := f.GetLine(start.Line)
	col := min(int(start.Col-1), len(text))
	stop := len(text)
	if end.Line == start.Line {
		stop = min(max(int(end.Col-1), col), len(text))
	}
	width := max(runewidth.StringWidth(text[col:stop]), 1)
	marks := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gw, ""), padding(text[:col]), sev.Sprint(marks))
}

// padding blanks out prefix, keeping tabs so the caret lines up.
func padding(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

func clip(line string, width int) string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return line
	}
	if width <= 3 {
		return runewidth.Truncate(line, width, "")
	}
	return runewidth.Truncate(line, width, "...")
}
