// Command extract-wards converts ward boundary files (KML or GeoJSON) into
// the ordered JSON lookup table that wardd loads at startup, plus an optional
// human-readable summary.
//
// Usage:
//
//	go run ./cmd/extract-wards \
//	  -in data/mumbai-wards.kml \
//	  -out ward_mapping.json \
//	  -summary ward_mapping.txt
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/darshan1137/case/internal/observability"
	"github.com/darshan1137/case/internal/ward"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "boundary file (.kml or .geojson)")
	out := flag.String("out", "ward_mapping.json", "output path for the JSON lookup table")
	format := flag.String("format", "", "input format: kml or geojson (default: from file extension)")
	nameProp := flag.String("name-prop", ward.DefaultNameProperty, "GeoJSON feature property holding the ward code")
	summary := flag.String("summary", "", "optional output path for a text summary table")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	logger := observability.NewLogger(*logLevel, "text")

	f := *format
	if f == "" {
		f = formatFromPath(*in)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read boundaries: %w", err)
	}

	var regions []ward.Region
	switch f {
	case "kml":
		regions, err = ward.ExtractKML(bytes.NewReader(data), logger)
	case "geojson", "json":
		regions, err = ward.ExtractGeoJSON(data, *nameProp, logger)
	default:
		return fmt.Errorf("unsupported format %q (want kml or geojson)", f)
	}
	if err != nil {
		return fmt.Errorf("extract regions: %w", err)
	}

	if err := writeFile(*out, func(w io.Writer) error { return ward.WriteTable(w, regions) }); err != nil {
		return err
	}
	if *summary != "" {
		if err := writeFile(*summary, func(w io.Writer) error { return ward.WriteSummary(w, regions) }); err != nil {
			return err
		}
	}

	logger.Info("ward lookup table written", "regions", len(regions), "out", *out, "summary", *summary)
	return nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kml":
		return "kml"
	case ".geojson", ".json":
		return "geojson"
	default:
		return ""
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
