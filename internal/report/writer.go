package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"
)

// Writer renders a Report to some destination.
type Writer interface {
	Write(r *Report) (int, error)
}

// Format names accepted by NewWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// NewWriter returns the writer for format.
func NewWriter(format string, out io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(out), nil
	case FormatJSON:
		return NewJSONWriter(out), nil
	case FormatMarkdown:
		return NewMarkdownWriter(out), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// JSONWriter writes the report as indented JSON.
type JSONWriter struct {
	out io.Writer
}

func NewJSONWriter(out io.Writer) *JSONWriter {
	return &JSONWriter{out: out}
}

func (w *JSONWriter) Write(r *Report) (int, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return 0, err
	}
	return w.out.Write(append(data, '\n'))
}

// TextWriter writes an aligned table followed by a verdict summary.
type TextWriter struct {
	out io.Writer
}

func NewTextWriter(out io.Writer) *TextWriter {
	return &TextWriter{out: out}
}

func (w *TextWriter) Write(r *Report) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Site: %s\nStatus: %s (%d/%d pages)\n\n", r.Site, r.Status, r.Completed, r.Planned)

	tbl := table.New("#", "VERDICT", "URL", "TITLE", "ISSUES").WithWriter(&sb)
	for _, row := range r.Rows {
		verdict := string(row.Verdict)
		if !row.Done {
			verdict = "pending"
		}
		kinds := make([]string, len(row.Issues))
		for i, is := range row.Issues {
			kinds[i] = string(is.Kind)
		}
		tbl.AddRow(row.Row+1, verdict, row.URL, orAbsent(row.Title), orAbsent(strings.Join(kinds, ",")))
	}
	tbl.Print()

	ok, bad := r.Counts()
	fmt.Fprintf(&sb, "\nok: %d  bad: %d\n", ok, bad)

	return io.WriteString(w.out, sb.String())
}
