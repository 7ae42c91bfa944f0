// Package output provides report formatters for scored loci.
package output

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/inodb/vibe-assess/internal/score"
)

// Columns is the report header, in output order.
var Columns = []string{
	"Panel",
	"Chr",
	"Start",
	"End",
	"Annot",
	"TP",
	"TN",
	"FP",
	"FN",
	"Specificity",
	"Sensitivity",
	"Accuracy",
}

// RowWriter is implemented by every report format.
type RowWriter interface {
	WriteHeader() error
	Write(row *score.Row) error
	Flush() error
}

// TabWriter writes scored loci in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(Columns, "\t") + "\n")
	return err
}

// Write writes a single locus.
func (tw *TabWriter) Write(row *score.Row) error {
	values := []string{
		row.Panel,
		row.Chrom,
		strconv.FormatInt(row.Start, 10),
		strconv.FormatInt(row.End, 10),
		row.Annotation,
		strconv.Itoa(row.Counts.TP),
		strconv.Itoa(row.Counts.TN),
		strconv.Itoa(row.Counts.FP),
		strconv.Itoa(row.Counts.FN),
		FormatRatio(row.Specificity),
		FormatRatio(row.Sensitivity),
		FormatRatio(row.Accuracy),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// FormatRatio renders a ratio with two decimals; undefined ratios print as "nan".
func FormatRatio(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteAll writes the header and every row, then flushes.
func WriteAll(w RowWriter, rows []score.Row) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for i := range rows {
		if err := w.Write(&rows[i]); err != nil {
			return err
		}
	}
	return w.Flush()
}
