package ward

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteTable writes regions as the lookup JSON object keyed by ward code.
// Keys are emitted in slice order; encoding/json would sort map keys and
// lose the order resolution depends on.
func WriteTable(w io.Writer, regions []Region) error {
	bw := bufio.NewWriter(w)
	if len(regions) == 0 {
		if _, err := bw.WriteString("{}\n"); err != nil {
			return err
		}
		return bw.Flush()
	}

	if _, err := bw.WriteString("{\n"); err != nil {
		return err
	}
	for i, r := range regions {
		key, err := json.Marshal(r.Code)
		if err != nil {
			return fmt.Errorf("encode ward code %q: %w", r.Code, err)
		}
		val, err := json.MarshalIndent(r, "  ", "  ")
		if err != nil {
			return fmt.Errorf("encode ward %q: %w", r.Code, err)
		}
		sep := ","
		if i == len(regions)-1 {
			sep = ""
		}
		if _, err := fmt.Fprintf(bw, "  %s: %s%s\n", key, val, sep); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteSummary writes a fixed-width text table of regions sorted by code.
func WriteSummary(w io.Writer, regions []Region) error {
	sorted := append([]Region(nil), regions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Ward Code | Latitude | Longitude | North | South | East | West")
	fmt.Fprintln(bw, strings.Repeat("-", 80))
	for _, r := range sorted {
		b := r.BoundingBox
		fmt.Fprintf(bw, "%-10s | %9.6f | %10.6f | %9.6f | %9.6f | %10.6f | %10.6f\n",
			r.Code, r.Center.Latitude, r.Center.Longitude, b.North, b.South, b.East, b.West)
	}
	return bw.Flush()
}
