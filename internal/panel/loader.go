package panel

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// progressInterval is how often, in lines, loading progress is logged.
const progressInterval = 100000

// ParseError reports an unusable line in a region file.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("panel parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
}

// LoadAll loads each panel file in order.
func LoadAll(paths []string, logger *zap.Logger) ([]*Panel, error) {
	panels := make([]*Panel, 0, len(paths))
	for i, path := range paths {
		p, err := Load(path, i, logger)
		if err != nil {
			return nil, err
		}
		panels = append(panels, p)
	}
	return panels, nil
}

// Load reads a tab-delimited region file (chrom, start, end, optional annotation).
// Gzipped files are detected by their magic bytes.
func Load(path string, index int, logger *zap.Logger) (*Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panel file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var reader io.Reader = br

	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read panel file: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return Parse(reader, path, index, logger)
}

// Parse builds a panel from region lines read from r. Lines with fewer than
// three fields are skipped with a warning; unparseable coordinates are fatal.
func Parse(r io.Reader, name string, index int, logger *zap.Logger) (*Panel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("processing panel", zap.String("panel", name))

	p := New(name, index)

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		if lineNum%progressInterval == 0 {
			logger.Debug("loading panel", zap.String("panel", name), zap.Int("lines", lineNum))
		}

		if line == "" || isHeaderLine(line) {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			p.Skipped++
			logger.Warn("skipped line",
				zap.String("panel", name),
				zap.Int("line", lineNum),
				zap.Int("fields", len(fields)))
			continue
		}

		region, err := parseRegion(fields)
		if err != nil {
			return nil, &ParseError{Path: name, Line: lineNum, Message: err.Error()}
		}
		region.Line = lineNum
		p.Add(region)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read panel %s: %w", name, err)
	}

	p.Build()

	for _, chrom := range p.Chromosomes() {
		for _, r := range p.trees[chrom].Overlapping() {
			logger.Debug("overlapping region",
				zap.String("panel", name),
				zap.Stringer("region", r),
				zap.Int("line", r.Line))
		}
	}

	logger.Info("processed panel",
		zap.String("panel", name),
		zap.Int("regions", p.RegionCount()),
		zap.Int64("bases", p.TotalBases),
		zap.Int("skipped", p.Skipped))

	return p, nil
}

// isHeaderLine reports comment and UCSC track/browser lines.
func isHeaderLine(line string) bool {
	return strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

// parseRegion converts chrom/start/end/annotation fields into a region.
func parseRegion(fields []string) (*Region, error) {
	start, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %q", fields[1])
	}
	end, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %q", fields[2])
	}
	if end <= start {
		return nil, fmt.Errorf("end %d not after start %d", end, start)
	}

	annotation := ""
	if len(fields) > 3 {
		annotation = fields[3]
	}

	return NewRegion(fields[0], start, end, annotation), nil
}
