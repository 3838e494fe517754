package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bytedance/sonic"
)

// OutputFormat selects how commands render their results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// NoRows is printed in place of an empty text table.
const NoRows = "(no results)"

// Formatter renders command results. Every command writes through one, so
// that --output json yields a single JSON document per invocation.
type Formatter interface {
	// Success reports a completed mutation.
	Success(message string) error
	// Failure reports an item that failed without aborting the command.
	Failure(message string) error
	// Table renders rows under headers.
	Table(headers []string, rows [][]string) error
	// JSON renders v as a document regardless of the format.
	JSON(v any) error
}

// NewFormatter returns the formatter for format. Unknown formats fall back
// to text.
func NewFormatter(format OutputFormat, w io.Writer) Formatter {
	if w == nil {
		w = os.Stdout
	}
	if format == FormatJSON {
		return &jsonFormatter{w: w}
	}
	return &textFormatter{w: w}
}

// encodeJSON writes v indented, with map keys sorted.
func encodeJSON(w io.Writer, v any) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type textFormatter struct {
	w io.Writer
}

func (f *textFormatter) Success(message string) error {
	_, err := fmt.Fprintf(f.w, "✓ %s\n", message)
	return err
}

func (f *textFormatter) Failure(message string) error {
	_, err := fmt.Fprintf(f.w, "✗ %s\n", message)
	return err
}

// Table aligns columns with a tabwriter under upper-cased headers. Short
// rows are padded with "-".
func (f *textFormatter) Table(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(f.w, NoRows)
		return err
	}

	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	upper := make([]string, len(headers))
	for i, h := range headers {
		upper[i] = strings.ToUpper(h)
	}
	fmt.Fprintln(tw, strings.Join(upper, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(padRow(row, len(headers), "-"), "\t"))
	}
	return tw.Flush()
}

func (f *textFormatter) JSON(v any) error {
	return encodeJSON(f.w, v)
}

type jsonFormatter struct {
	w io.Writer
}

func (f *jsonFormatter) Success(message string) error {
	return encodeJSON(f.w, map[string]any{"ok": true, "message": message})
}

func (f *jsonFormatter) Failure(message string) error {
	return encodeJSON(f.w, map[string]any{"ok": false, "message": message})
}

// Table renders each row as an object keyed by header.
func (f *jsonFormatter) Table(headers []string, rows [][]string) error {
	objects := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		row = padRow(row, len(headers), "")
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			obj[h] = row[i]
		}
		objects = append(objects, obj)
	}
	return encodeJSON(f.w, objects)
}

func (f *jsonFormatter) JSON(v any) error {
	return encodeJSON(f.w, v)
}

func padRow(row []string, width int, fill string) []string {
	if len(row) >= width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	for i := len(row); i < width; i++ {
		out[i] = fill
	}
	return out
}
