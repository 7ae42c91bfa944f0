package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-assess/internal/duckdb"
)

const vcfHeader = "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

const reportHeader = "Panel\tChr\tStart\tEnd\tAnnot\tTP\tTN\tFP\tFN\tSpecificity\tSensitivity\tAccuracy\n"

type fixture struct {
	dir   string
	panel string
	vcf0  string
	vcf1  string
}

func newFixture(t *testing.T, filter string) fixture {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	f := fixture{
		dir:   dir,
		panel: filepath.Join(dir, "panel.bed"),
		vcf0:  filepath.Join(dir, "s0.vcf"),
		vcf1:  filepath.Join(dir, "s1.vcf"),
	}
	require.NoError(t, os.WriteFile(f.panel, []byte("chr1\t100\t200\tA\nchr1\t500\t600\tB\n"), 0o644))
	require.NoError(t, os.WriteFile(f.vcf0, []byte(vcfHeader+"chr1\t150\t.\tA\tAT\t.\t"+filter+"\t.\n"), 0o644))
	require.NoError(t, os.WriteFile(f.vcf1, []byte(vcfHeader+"chr2\t150\t.\tA\tAT\t.\tPASS\t.\n"), 0o644))
	return f
}

func (f fixture) args(extra ...string) []string {
	args := []string{"run",
		"--vcfs", f.vcf0 + "," + f.vcf1,
		"--names", "s0,s1",
		"--groups", "1,0",
		"--panels", f.panel,
	}
	return append(args, extra...)
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_EndToEnd(t *testing.T) {
	f := newFixture(t, ".")

	code, stdout, stderr := runCLI(f.args()...)
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Equal(t, reportHeader+f.panel+"\t1\t100\t200\tA\t1\t1\t0\t0\t1.00\t1.00\t1.00\n", stdout)
	assert.Contains(t, stderr, "processed panel")
	assert.Contains(t, stderr, "done")
	assert.NotContains(t, stderr, "DEBUG")
}

func TestRun_PassOnly(t *testing.T) {
	f := newFixture(t, "q10")

	code, stdout, _ := runCLI(f.args("--filter-pass")...)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, reportHeader, stdout, "filtered variant leaves no locus")

	code, stdout, _ = runCLI(f.args()...)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "\t1\t100\t200\tA\t1\t1\t0\t0\t1.00\t1.00\t1.00\n")
}

func TestRun_PassOnlyFromEnv(t *testing.T) {
	f := newFixture(t, "q10")
	t.Setenv("VIBE_ASSESS_FILTER_PASS", "true")

	code, stdout, _ := runCLI(f.args()...)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, reportHeader, stdout)
}

func TestRun_BroadcastName(t *testing.T) {
	f := newFixture(t, ".")
	vcf2 := filepath.Join(f.dir, "s2.vcf")
	require.NoError(t, os.WriteFile(vcf2, []byte(vcfHeader+"1\t160\t.\tAT\tA\t.\t.\t.\n"), 0o644))

	code, stdout, stderr := runCLI("run",
		"--vcfs", f.vcf0, "--vcfs", f.vcf1, "--vcfs", vcf2,
		"--names", "cohort",
		"--groups", "1,0,0",
		"--panels", f.panel,
		"--verbose")
	require.Equal(t, ExitSuccess, code, stderr)

	var processing []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, "processing sample") {
			processing = append(processing, line)
		}
	}
	require.Len(t, processing, 3)
	for _, line := range processing {
		assert.Contains(t, line, "cohort")
	}
	assert.Contains(t, stderr, "DEBUG")

	// s0 (group 1) and s2 (group 0) hit 1:100-200.
	assert.Contains(t, stdout, "\t1\t100\t200\tA\t1\t1\t1\t0\t0.50\t1.00\t0.67\n")
}

func TestRun_OutputFiles(t *testing.T) {
	f := newFixture(t, ".")
	report := filepath.Join(f.dir, "report.tsv")
	arrowPath := filepath.Join(f.dir, "report.arrow")
	dbPath := filepath.Join(f.dir, "runs.duckdb")

	code, stdout, stderr := runCLI(f.args(
		"-o", report,
		"--arrow", arrowPath,
		"--db", dbPath,
		"--run-id", "first",
		"--workers", "2",
	)...)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), reportHeader))

	info, err := os.Stat(arrowPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	store, err := duckdb.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()
	rows, err := store.Rows("first")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Annotation)
}

func TestRun_ConfigErrors(t *testing.T) {
	f := newFixture(t, ".")

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing vcfs", []string{"run", "--names", "a", "--groups", "1", "--panels", f.panel}, "--vcfs is required"},
		{"missing panels", []string{"run", "--vcfs", f.vcf0, "--names", "a", "--groups", "1"}, "--panels is required"},
		{"names mismatch", []string{"run", "--vcfs", f.vcf0 + "," + f.vcf1, "--names", "a,b,c", "--groups", "1,0", "--panels", f.panel}, "3 names for 2 vcfs"},
		{"bad group", []string{"run", "--vcfs", f.vcf0 + "," + f.vcf1, "--names", "a", "--groups", "1,2", "--panels", f.panel}, "must be 0 or 1"},
		{"bad workers", f.args("--workers", "0"), "--workers must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(tt.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.msg)
		})
	}
}

func TestRun_MissingFiles(t *testing.T) {
	f := newFixture(t, ".")

	code, _, stderr := runCLI("run", "--vcfs", f.vcf0, "--names", "a", "--groups", "1",
		"--panels", filepath.Join(f.dir, "missing.bed"))
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "load panels")

	code, _, stderr = runCLI("run", "--vcfs", filepath.Join(f.dir, "missing.vcf"), "--names", "a", "--groups", "1",
		"--panels", f.panel)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "open sample")
}

func TestConfigSetGet(t *testing.T) {
	f := newFixture(t, "q10")
	cfg := filepath.Join(f.dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))

	code, stdout, stderr := runCLI("config", "--config", cfg, "set", "filter-pass", "true")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Set filter-pass = true")

	code, stdout, _ = runCLI("config", "--config", cfg, "get", "filter-pass")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "true\n", stdout)

	code, stdout, _ = runCLI(f.args("--config", cfg)...)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, reportHeader, stdout, "filter-pass default comes from the config file")

	code, _, stderr = runCLI("config", "--config", cfg, "get", "missing")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, `key "missing" is not set`)
}

func TestConfigListDefaults(t *testing.T) {
	f := newFixture(t, ".")
	panel2 := filepath.Join(f.dir, "panel2.bed")
	require.NoError(t, os.WriteFile(panel2, []byte("chr1\t140\t160\tC\n"), 0o644))
	cfg := filepath.Join(f.dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))

	code, _, stderr := runCLI("config", "--config", cfg, "set", "groups", "1,0")
	require.Equal(t, ExitSuccess, code, stderr)
	code, _, stderr = runCLI("config", "--config", cfg, "set", "panels", f.panel+","+panel2)
	require.Equal(t, ExitSuccess, code, stderr)

	code, stdout, _ := runCLI("config", "--config", cfg, "get", "groups")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "[1 0]\n", stdout)

	code, stdout, stderr = runCLI("run", "--config", cfg,
		"--vcfs", f.vcf0+","+f.vcf1,
		"--names", "s0,s1")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, reportHeader+
		f.panel+"\t1\t100\t200\tA\t1\t1\t0\t0\t1.00\t1.00\t1.00\n"+
		panel2+"\t1\t140\t160\tC\t1\t1\t0\t0\t1.00\t1.00\t1.00\n", stdout)

	code, _, stderr = runCLI("config", "--config", cfg, "set", "groups", "1,x")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, `invalid group "x"`)
}

func TestRun_ListsFromEnv(t *testing.T) {
	f := newFixture(t, ".")
	t.Setenv("VIBE_ASSESS_VCFS", f.vcf0+","+f.vcf1)
	t.Setenv("VIBE_ASSESS_NAMES", "s0,s1")
	t.Setenv("VIBE_ASSESS_GROUPS", "1,0")
	t.Setenv("VIBE_ASSESS_PANELS", f.panel)

	code, stdout, stderr := runCLI("run")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, reportHeader+f.panel+"\t1\t100\t200\tA\t1\t1\t0\t0\t1.00\t1.00\t1.00\n", stdout)

	t.Setenv("VIBE_ASSESS_GROUPS", "1,zero")
	code, _, stderr = runCLI("run")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, `invalid group "zero"`)
}

func TestRun_OutputWriteFails(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	f := newFixture(t, ".")

	code, _, stderr := runCLI(f.args("-o", "/dev/full")...)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "write report")
}

func TestDB(t *testing.T) {
	f := newFixture(t, ".")
	dbPath := filepath.Join(f.dir, "runs.duckdb")
	row := f.panel + "\t1\t100\t200\tA\t1\t1\t0\t0\t1.00\t1.00\t1.00\n"

	for _, id := range []string{"r1", "r2"} {
		code, _, stderr := runCLI(f.args("--db", dbPath, "--run-id", id)...)
		require.Equal(t, ExitSuccess, code, stderr)
	}

	code, stdout, stderr := runCLI("db", "runs", "--db", dbPath)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "r1\nr2\n", stdout)

	code, stdout, _ = runCLI("db", "show", "--db", dbPath, "--run-id", "r1")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, reportHeader+row, stdout)

	code, stdout, _ = runCLI("db", "show", "--db", dbPath, "--panel", f.panel)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, reportHeader+row+row, stdout, "one row per stored run")

	code, _, stderr = runCLI("db", "show", "--db", dbPath)
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "exactly one of --run-id or --panel")

	code, _, stderr = runCLI("db", "runs")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "--db is required")

	code, stdout, _ = runCLI("db", "clear", "--db", dbPath)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Cleared")

	code, stdout, _ = runCLI("db", "runs", "--db", dbPath)
	require.Equal(t, ExitSuccess, code)
	assert.Empty(t, stdout)
}

func TestVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	code, stdout, _ := runCLI("version")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "vibe-assess version dev (none) built unknown\n", stdout)
}
