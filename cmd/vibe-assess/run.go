package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-assess/internal/classify"
	"github.com/inodb/vibe-assess/internal/duckdb"
	"github.com/inodb/vibe-assess/internal/output"
	"github.com/inodb/vibe-assess/internal/panel"
	"github.com/inodb/vibe-assess/internal/score"
)

// runOptions holds the resolved settings of one assessment.
type runOptions struct {
	VCFs       []string
	Names      []string
	Groups     []int
	Panels     []string
	FilterPass bool
	Verbose    bool
	Workers    int
	Output     string
	Arrow      string
	DB         string
	RunID      string
	CPUProfile string
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score every panel region hit by an indel in any sample",
		Long: `Score panel regions by how well indel presence separates two groups.

Each VCF is one sample. Regions are read from tab-delimited panel files
(chrom, start, end, optional annotation). Every region hit by at least one
qualifying indel is reported with its confusion counts, specificity,
sensitivity and accuracy.`,
		Example: `  vibe-assess run --vcfs a.vcf,b.vcf,c.vcf --names a,b,c --groups 1,0,0 --panels msi.bed
  vibe-assess run --vcfs a.vcf.gz --vcfs b.vcf.gz --names cohort --groups 1,0 \
    --panels msi.bed,homopolymers.bed --filter-pass -o report.tsv`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveRunOptions(v)
			if err != nil {
				return err
			}
			if err := opts.validate(); err != nil {
				return err
			}

			logger := newLogger(opts.Verbose, cmd.ErrOrStderr())
			defer logger.Sync() //nolint:errcheck

			if opts.CPUProfile != "" {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.CPUProfile), profile.Quiet).Stop()
			}

			return runAssess(cmd.Context(), opts, cmd.OutOrStdout(), logger)
		},
	}

	f := cmd.Flags()
	f.StringSlice("vcfs", nil, "VCF files to analyse, one per sample (required)")
	f.StringSlice("names", nil, "Sample names: one per VCF, or a single name for all (required)")
	f.IntSlice("groups", nil, "Group of each sample, 0 or 1 (required)")
	f.StringSlice("panels", nil, "Panel region files to assess (required)")
	f.Bool("filter-pass", false, "Only consider PASS calls")
	f.Bool("verbose", false, "More logging")
	f.Int("workers", 1, "Samples to classify concurrently")
	f.StringP("output", "o", "", "Output file (default: stdout)")
	f.String("arrow", "", "Also write the report as an Arrow IPC file")
	f.String("db", "", "Also append the report to a DuckDB database")
	f.String("run-id", "", "Run identifier stored with --db rows (default: random UUID)")
	f.String("cpuprofile", "", "Write a CPU profile to this directory")

	return cmd
}

func resolveRunOptions(v *viper.Viper) (runOptions, error) {
	groups, err := groupsOption(v)
	if err != nil {
		return runOptions{}, err
	}
	return runOptions{
		VCFs:       listOption(v, "vcfs"),
		Names:      listOption(v, "names"),
		Groups:     groups,
		Panels:     listOption(v, "panels"),
		FilterPass: v.GetBool("filter-pass"),
		Verbose:    v.GetBool("verbose"),
		Workers:    v.GetInt("workers"),
		Output:     v.GetString("output"),
		Arrow:      v.GetString("arrow"),
		DB:         v.GetString("db"),
		RunID:      v.GetString("run-id"),
		CPUProfile: v.GetString("cpuprofile"),
	}, nil
}

// listOption reads a list setting. Environment variables and hand-written
// config entries arrive as a single comma-separated string.
func listOption(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return splitList(s)
	}
	return v.GetStringSlice(key)
}

func groupsOption(v *viper.Viper) ([]int, error) {
	if s, ok := v.Get("groups").(string); ok {
		return parseGroups(s)
	}
	return v.GetIntSlice("groups"), nil
}

func (o runOptions) validate() error {
	switch {
	case len(o.VCFs) == 0:
		return &usageError{msg: "--vcfs is required"}
	case len(o.Names) == 0:
		return &usageError{msg: "--names is required"}
	case len(o.Groups) == 0:
		return &usageError{msg: "--groups is required"}
	case len(o.Panels) == 0:
		return &usageError{msg: "--panels is required"}
	case o.Workers < 1:
		return &usageError{msg: fmt.Sprintf("--workers must be at least 1, got %d", o.Workers)}
	}
	return nil
}

// runAssess loads the panels, classifies every sample and writes the report to out.
func runAssess(ctx context.Context, opts runOptions, out io.Writer, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	samples, err := classify.NewSamples(opts.VCFs, opts.Names, opts.Groups)
	if err != nil {
		return err
	}
	group0, group1 := classify.CountGroups(samples)
	logger.Info("starting",
		zap.Int("vcfs", len(samples)),
		zap.Int("group0", group0),
		zap.Int("group1", group1),
		zap.Bool("filter_pass", opts.FilterPass))

	panels, err := panel.LoadAll(opts.Panels, logger)
	if err != nil {
		return fmt.Errorf("load panels: %w", err)
	}

	classifier := classify.NewClassifier(panels, opts.FilterPass)
	classifier.SetLogger(logger)

	if _, err := classifier.ClassifyAll(ctx, samples, classify.OpenVCF, opts.Workers); err != nil {
		return err
	}

	rows := score.Score(panels, classifier.Registry(), classify.Groups(samples))

	if err := writeReport(opts.Output, out, rows); err != nil {
		return err
	}

	if opts.Arrow != "" {
		aw, err := output.NewArrowWriter(opts.Arrow, 0)
		if err != nil {
			return err
		}
		if err := output.WriteAll(aw, rows); err != nil {
			aw.Close()
			return fmt.Errorf("write arrow report: %w", err)
		}
		if err := aw.Close(); err != nil {
			return err
		}
		logger.Info("wrote arrow report", zap.String("path", opts.Arrow), zap.Int("rows", len(rows)))
	}

	if opts.DB != "" {
		runID := opts.RunID
		if runID == "" {
			runID = uuid.NewString()
		}
		runs, err := storeRows(opts.DB, runID, rows)
		if err != nil {
			return err
		}
		logger.Info("stored report",
			zap.String("db", opts.DB),
			zap.String("run_id", runID),
			zap.Int("rows", len(rows)),
			zap.Int("runs", runs))
	}

	for _, s := range score.Summarize(panels, rows) {
		fields := []zap.Field{zap.String("panel", s.Panel), zap.Int("loci", s.Loci)}
		if s.Best != nil {
			fields = append(fields,
				zap.String("best", fmt.Sprintf("%s:%d-%d", s.Best.Chrom, s.Best.Start, s.Best.End)),
				zap.String("best_accuracy", output.FormatRatio(s.Best.Accuracy)))
		}
		logger.Info("panel summary", fields...)
	}

	logger.Info("done")
	return nil
}

func writeReport(path string, stdout io.Writer, rows []score.Row) error {
	if path == "" {
		if err := output.WriteAll(output.NewTabWriter(stdout), rows); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := output.WriteAll(output.NewTabWriter(f), rows); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

// storeRows appends rows under runID and returns the number of runs now stored.
func storeRows(path, runID string, rows []score.Row) (int, error) {
	store, err := duckdb.Open(path)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if err := store.WriteRows(runID, rows); err != nil {
		return 0, fmt.Errorf("store report: %w", err)
	}
	runs, err := store.Runs()
	if err != nil {
		return 0, err
	}
	return len(runs), nil
}
