package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-assess/internal/score"
)

// WriteRows batch-inserts scored rows for one run using the Appender API.
// Undefined ratios are stored as NULL.
func (s *Store) WriteRows(runID string, rows []score.Row) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "locus_stats")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range rows {
		if err := appender.AppendRow(
			runID, r.Panel, int32(r.PanelIndex), r.Chrom, r.Start, r.End, r.Annotation,
			int32(r.Counts.TP), int32(r.Counts.TN), int32(r.Counts.FP), int32(r.Counts.FN),
			nullable(r.Specificity), nullable(r.Sensitivity), nullable(r.Accuracy),
		); err != nil {
			return fmt.Errorf("append locus row: %w", err)
		}
	}

	return appender.Flush()
}

// nullable maps NaN to NULL.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// Rows returns the rows stored for a run, ordered as the report orders them.
func (s *Store) Rows(runID string) ([]score.Row, error) {
	return s.query(`SELECT
		panel, panel_index, chrom, start_pos, end_pos, annotation,
		tp, tn, fp, fn, specificity, sensitivity, accuracy
		FROM locus_stats
		WHERE run_id=?`, runID)
}

// RowsForPanel returns every stored row for a panel across runs.
func (s *Store) RowsForPanel(panel string) ([]score.Row, error) {
	return s.query(`SELECT
		panel, panel_index, chrom, start_pos, end_pos, annotation,
		tp, tn, fp, fn, specificity, sensitivity, accuracy
		FROM locus_stats
		WHERE panel=?`, panel)
}

func (s *Store) query(q string, args ...any) ([]score.Row, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query loci: %w", err)
	}
	defer rows.Close()

	var result []score.Row
	for rows.Next() {
		var (
			r                 score.Row
			panelIndex        int32
			tp, tn, fp, fn    int32
			spec, sens, accur sql.NullFloat64
		)
		if err := rows.Scan(
			&r.Panel, &panelIndex, &r.Chrom, &r.Start, &r.End, &r.Annotation,
			&tp, &tn, &fp, &fn, &spec, &sens, &accur,
		); err != nil {
			return nil, fmt.Errorf("scan locus: %w", err)
		}
		r.PanelIndex = int(panelIndex)
		r.Counts = score.Counts{TP: int(tp), TN: int(tn), FP: int(fp), FN: int(fn)}
		r.Specificity = fromNull(spec)
		r.Sensitivity = fromNull(sens)
		r.Accuracy = fromNull(accur)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loci: %w", err)
	}

	score.Sort(result)
	return result, nil
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// Runs returns the distinct run IDs stored.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT run_id FROM locus_stats ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}

// Clear removes all stored rows.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM locus_stats")
	return err
}
