// Package csvio reads and writes the catalog's CSV format.
//
// Parse turns a header-plus-records document into header-keyed rows and a list
// of per-row problems. Write and WriteDownload produce documents that Parse reads
// back to the same values.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const bom = "\uFEFF"

// Row is one data record keyed by trimmed header name.
// Number is the 1-based record number counting the header as row 1.
type Row struct {
	Number int
	Values map[string]string
}

// Get returns the value under header name, or "" if the column is absent.
func (r Row) Get(name string) string {
	return r.Values[name]
}

// ParseResult holds the rows that parsed and a message for every record that did not.
type ParseResult struct {
	Rows   []Row
	Errors []string
}

// Structural failures. Both halt parsing with no rows.
const (
	MsgEmpty          = "CSV file is empty"
	MsgHeadersMissing = "CSV headers are missing"
)

// Parse reads text as CSV. Blank and whitespace-only lines are ignored and not
// counted. Unquoted values are trimmed; quoted values are kept exactly.
// A record whose field count differs from the header's is skipped and reported.
func Parse(text string) ParseResult {
	res := ParseResult{Rows: []Row{}, Errors: []string{}}

	text = strings.TrimPrefix(text, bom)
	if strings.TrimSpace(text) == "" {
		res.Errors = append(res.Errors, MsgEmpty)
		return res
	}

	lines := lineOffsets(text)
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var header []string
	n := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %v", n+1, err))
				break
			}
			n++
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %v", n, pe.Err))
			continue
		}

		values := make([]string, len(rec))
		for i, v := range rec {
			if quoted(text, lines, r, i) {
				values[i] = v
			} else {
				values[i] = strings.TrimSpace(v)
			}
		}
		if len(values) == 1 && values[0] == "" && !quoted(text, lines, r, 0) {
			continue
		}
		n++

		if header == nil {
			header = make([]string, len(rec))
			named := false
			for i, h := range rec {
				header[i] = strings.TrimSpace(h)
				if header[i] != "" {
					named = true
				}
			}
			if !named {
				res.Errors = append(res.Errors, MsgHeadersMissing)
				return res
			}
			continue
		}

		if len(values) != len(header) {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: Column count mismatch", n))
			continue
		}
		row := Row{Number: n, Values: make(map[string]string, len(header))}
		for i, h := range header {
			row.Values[h] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}

	if header == nil {
		res.Errors = append(res.Errors, MsgEmpty)
	}
	return res
}

// lineOffsets returns the byte offset where each line of text starts.
func lineOffsets(text string) []int {
	offs := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offs = append(offs, i+1)
		}
	}
	return offs
}

// quoted reports whether field i of the record last returned by r opened with a quote.
func quoted(text string, lines []int, r *csv.Reader, i int) bool {
	line, col := r.FieldPos(i)
	if line < 1 || line > len(lines) {
		return false
	}
	off := lines[line-1] + col - 1
	return off >= 0 && off < len(text) && text[off] == '"'
}

// Write emits header and records as CSV with LF line endings.
func Write(w io.Writer, header []string, records [][]string) error {
	return write(w, header, records, "\n")
}

// WriteDownload emits a spreadsheet-friendly CSV: UTF-8 BOM and CRLF line endings.
func WriteDownload(w io.Writer, header []string, records [][]string) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	return write(w, header, records, "\r\n")
}

func write(w io.Writer, header []string, records [][]string, eol string) error {
	var b strings.Builder
	writeRecord(&b, header, eol)
	for _, rec := range records {
		writeRecord(&b, rec, eol)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRecord(b *strings.Builder, rec []string, eol string) {
	for i, f := range rec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(f))
	}
	b.WriteString(eol)
}

// Escape quotes a field when it contains a comma, quote, CR or LF, or has
// surrounding whitespace that Parse would otherwise trim.
func Escape(f string) string {
	if f == "" {
		return f
	}
	if !strings.ContainsAny(f, ",\"\r\n") && strings.TrimSpace(f) == f {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
