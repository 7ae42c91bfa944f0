package output

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/inodb/vibe-assess/internal/score"
)

// DefaultChunkSize is the number of rows per Arrow record batch.
const DefaultChunkSize = 10000

// ArrowSchema describes the typed report columns.
var ArrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "Panel", Type: arrow.BinaryTypes.String},
	{Name: "Chr", Type: arrow.BinaryTypes.String},
	{Name: "Start", Type: arrow.PrimitiveTypes.Int64},
	{Name: "End", Type: arrow.PrimitiveTypes.Int64},
	{Name: "Annot", Type: arrow.BinaryTypes.String},
	{Name: "TP", Type: arrow.PrimitiveTypes.Int64},
	{Name: "TN", Type: arrow.PrimitiveTypes.Int64},
	{Name: "FP", Type: arrow.PrimitiveTypes.Int64},
	{Name: "FN", Type: arrow.PrimitiveTypes.Int64},
	{Name: "Specificity", Type: arrow.PrimitiveTypes.Float64},
	{Name: "Sensitivity", Type: arrow.PrimitiveTypes.Float64},
	{Name: "Accuracy", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// ArrowWriter writes scored loci to an Arrow IPC file in chunked record batches.
// Ratios keep full precision; undefined ratios are stored as NaN.
type ArrowWriter struct {
	file           *os.File
	writer         *ipc.FileWriter
	builder        *array.RecordBuilder
	chunkSize      int
	numRowsInChunk int
}

// NewArrowWriter creates the file at path. chunkSize <= 0 uses DefaultChunkSize.
func NewArrowWriter(path string, chunkSize int) (*ArrowWriter, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create arrow file: %w", err)
	}

	pool := memory.NewGoAllocator()
	writer, err := ipc.NewFileWriter(file, ipc.WithSchema(ArrowSchema), ipc.WithAllocator(pool))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create arrow writer: %w", err)
	}

	return &ArrowWriter{
		file:      file,
		writer:    writer,
		builder:   array.NewRecordBuilder(pool, ArrowSchema),
		chunkSize: chunkSize,
	}, nil
}

// WriteHeader is a no-op; the schema is written with the first batch.
func (aw *ArrowWriter) WriteHeader() error { return nil }

// Write appends a row, emitting a record batch when the chunk is full.
func (aw *ArrowWriter) Write(row *score.Row) error {
	b := aw.builder
	b.Field(0).(*array.StringBuilder).Append(row.Panel)
	b.Field(1).(*array.StringBuilder).Append(row.Chrom)
	b.Field(2).(*array.Int64Builder).Append(row.Start)
	b.Field(3).(*array.Int64Builder).Append(row.End)
	b.Field(4).(*array.StringBuilder).Append(row.Annotation)
	b.Field(5).(*array.Int64Builder).Append(int64(row.Counts.TP))
	b.Field(6).(*array.Int64Builder).Append(int64(row.Counts.TN))
	b.Field(7).(*array.Int64Builder).Append(int64(row.Counts.FP))
	b.Field(8).(*array.Int64Builder).Append(int64(row.Counts.FN))
	b.Field(9).(*array.Float64Builder).Append(row.Specificity)
	b.Field(10).(*array.Float64Builder).Append(row.Sensitivity)
	b.Field(11).(*array.Float64Builder).Append(row.Accuracy)

	aw.numRowsInChunk++
	if aw.numRowsInChunk == aw.chunkSize {
		return aw.writeChunk()
	}
	return nil
}

func (aw *ArrowWriter) writeChunk() error {
	// NewRecord resets the builder for the next chunk.
	record := aw.builder.NewRecord()
	defer record.Release()

	if err := aw.writer.Write(record); err != nil {
		return fmt.Errorf("write arrow record: %w", err)
	}
	aw.numRowsInChunk = 0
	return nil
}

// Flush writes any buffered rows as a final batch.
func (aw *ArrowWriter) Flush() error {
	if aw.numRowsInChunk > 0 {
		return aw.writeChunk()
	}
	return nil
}

// Close flushes remaining rows and closes the file.
func (aw *ArrowWriter) Close() error {
	defer aw.builder.Release()
	if err := aw.Flush(); err != nil {
		aw.writer.Close()
		aw.file.Close()
		return err
	}
	if err := aw.writer.Close(); err != nil {
		aw.file.Close()
		return fmt.Errorf("close arrow writer: %w", err)
	}
	return aw.file.Close()
}
