// Command wardcheck validates a ward lookup table before it is deployed. It
// checks per-region integrity, confirms every centroid resolves, and
// optionally resolves sample points against expected ward codes.
//
// Usage:
//
//	go run ./cmd/wardcheck \
//	  -table ward_mapping.json \
//	  -points testdata/sample_points.csv
//
// The points CSV has a header row and the columns latitude, longitude,
// expected_ward.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/darshan1137/case/internal/ward"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type samplePoint struct {
	line     int
	lat, lon float64
	expected string
}

func main() {
	table := flag.String("table", "ward_mapping.json", "path to the ward lookup table")
	points := flag.String("points", "", "optional CSV of latitude,longitude,expected_ward")
	tieBreak := flag.String("tie-break", string(ward.TieBreakFirstMatch), "overlap rule: first_match or smallest_area")
	fallback := flag.String("fallback", string(ward.FallbackPlanar), "nearest-centroid metric: planar or haversine")
	flag.Parse()

	os.Exit(run(os.Stdout, *table, *points, ward.TieBreak(*tieBreak), ward.FallbackMetric(*fallback)))
}

func run(out io.Writer, tablePath, pointsPath string, tieBreak ward.TieBreak, fallback ward.FallbackMetric) int {
	fmt.Fprintln(out, "=== Ward Lookup Table Validation ===")
	fmt.Fprintln(out)

	data, err := os.ReadFile(tablePath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read table: %v\n", err)
		return 1
	}
	idx, err := ward.ParseTable(data, slog.New(slog.DiscardHandler))
	if err != nil {
		fmt.Fprintf(out, "FATAL: parse table: %v\n", err)
		return 1
	}
	resolver := ward.NewResolver(idx, ward.WithTieBreak(tieBreak), ward.WithFallback(fallback))

	phases := []*phase{
		validateRegions(idx),
		validateCentroids(resolver),
	}

	var samples []samplePoint
	if pointsPath != "" {
		samples, err = loadPoints(pointsPath)
		if err != nil {
			fmt.Fprintf(out, "FATAL: load points: %v\n", err)
			return 1
		}
		phases = append(phases, validateSamples(resolver, samples))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Wards: %d, sample points: %d\n", idx.Len(), len(samples))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Region integrity ──

func validateRegions(idx *ward.Index) *phase {
	p := &phase{name: "Phase 1: Region Integrity"}
	if idx.Len() == 0 {
		p.errorf("table contains no usable regions")
		return p
	}
	for _, r := range idx.Regions() {
		if r.Code == "" {
			p.errorf("region with empty ward code")
		}
		if r.VertexCount < 3 {
			p.errorf("%s: coordinates_count %d, want at least 3", r.Code, r.VertexCount)
		}
		if !r.BoundingBox.Contains(r.Center.Latitude, r.Center.Longitude) {
			p.errorf("%s: center (%.6f, %.6f) lies outside its bounding box", r.Code, r.Center.Latitude, r.Center.Longitude)
		}
		if r.BoundingBox.Area() == 0 {
			p.errorf("%s: bounding box has zero area", r.Code)
		}
	}
	return p
}

// ── Phase 2: Centroid resolution ──
// A region's own centroid must always resolve through a bounding box.

func validateCentroids(resolver *ward.Resolver) *phase {
	p := &phase{name: "Phase 2: Centroid Resolution"}
	for _, r := range resolver.Index().Regions() {
		res := resolver.Resolve(r.Center.Latitude, r.Center.Longitude)
		if res.Method != ward.MethodBoundingBox {
			p.errorf("%s: centroid resolved by %s, want bbox", r.Code, res.Method)
		}
	}
	return p
}

// ── Phase 3: Sample points ──

func validateSamples(resolver *ward.Resolver, samples []samplePoint) *phase {
	p := &phase{name: "Phase 3: Sample Points"}
	for _, s := range samples {
		res := resolver.Resolve(s.lat, s.lon)
		if got := res.CodeOr(""); got != s.expected {
			p.errorf("line %d: (%.6f, %.6f) resolved to %q via %s, want %q", s.line, s.lat, s.lon, got, res.Method, s.expected)
		}
	}
	return p
}

func loadPoints(path string) ([]samplePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	points := make([]samplePoint, 0, len(all)-1)
	for i, row := range all[1:] {
		line := i + 2
		if len(row) < 3 {
			return nil, fmt.Errorf("line %d: want 3 columns, got %d", line, len(row))
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}
		points = append(points, samplePoint{line: line, lat: lat, lon: lon, expected: ward.NormalizeCode(row[2])})
	}
	return points, nil
}
