package ward

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// ExtractKML reads a KML document and returns one region per usable
// placemark, in document order. Element names are matched by local name so
// any KML namespace (or none) is accepted.
//
// A placemark is skipped when it has no name, no coordinates element, or no
// parseable vertex. Only the first coordinates element of each placemark is
// read. Individual malformed tuples are dropped without affecting the rest.
func ExtractKML(r io.Reader, logger *slog.Logger) ([]Region, error) {
	dec := xml.NewDecoder(r)
	c := newCollector(logger)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode kml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Placemark" {
			continue
		}
		name, coords, err := readPlacemark(dec)
		if err != nil {
			return nil, fmt.Errorf("decode kml placemark: %w", err)
		}
		c.add(name, parseCoordinates(coords))
	}
	return c.result(), nil
}

// readPlacemark consumes tokens up to the matching Placemark end element.
// It returns the first name and the first coordinates text it meets.
func readPlacemark(dec *xml.Decoder) (name, coords string, err error) {
	var haveName, haveCoords bool
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "name" && !haveName:
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return "", "", err
				}
				name, haveName = s, true
			case t.Name.Local == "coordinates" && !haveCoords:
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return "", "", err
				}
				coords, haveCoords = s, true
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return name, coords, nil
}

// parseCoordinates splits a KML coordinates string into vertices. Tuples are
// whitespace separated and each is "lon,lat[,alt]".
func parseCoordinates(text string) []LatLon {
	fields := strings.Fields(text)
	out := make([]LatLon, 0, len(fields))
	for _, f := range fields {
		parts := strings.Split(f, ",")
		if len(parts) < 2 {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		if !validVertex(lat, lon) {
			continue
		}
		out = append(out, LatLon{Latitude: lat, Longitude: lon})
	}
	return out
}
