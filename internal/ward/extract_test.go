package ward

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKML_SampleFile(t *testing.T) {
	f, err := os.Open("testdata/sample_wards.kml")
	require.NoError(t, err)
	defer f.Close()

	regions, err := ExtractKML(f, nil)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	a := regions[0]
	assert.Equal(t, "A", a.Code)
	assert.Equal(t, LatLon{Latitude: 5, Longitude: 5}, a.Center)
	assert.Equal(t, BoundingBox{North: 10, South: 0, East: 10, West: 0}, a.BoundingBox)
	assert.Equal(t, 4, a.VertexCount)
	assert.Len(t, a.SampleVertices, 4)

	b := regions[1]
	assert.Equal(t, "B", b.Code)
	assert.Equal(t, 2, b.VertexCount, "malformed tuples are dropped")
	assert.Equal(t, LatLon{Latitude: 25, Longitude: 25}, b.Center)
	assert.Equal(t, BoundingBox{North: 30, South: 20, East: 30, West: 20}, b.BoundingBox)
}

func TestExtractKML_WithoutNamespace(t *testing.T) {
	doc := `<kml><Placemark><name>W1</name><coordinates>72.8,18.9 72.9,19.0</coordinates></Placemark></kml>`
	regions, err := ExtractKML(strings.NewReader(doc), nil)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "W1", regions[0].Code)
	assert.InDelta(t, 18.95, regions[0].Center.Latitude, 1e-9)
	assert.InDelta(t, 72.85, regions[0].Center.Longitude, 1e-9)
}

func TestExtractKML_FirstCoordinatesOnly(t *testing.T) {
	doc := `<kml><Placemark><name>M</name>
		<MultiGeometry>
			<Polygon><coordinates>0,0 2,2</coordinates></Polygon>
			<Polygon><coordinates>100,50 101,51</coordinates></Polygon>
		</MultiGeometry>
	</Placemark></kml>`
	regions, err := ExtractKML(strings.NewReader(doc), nil)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, 2, regions[0].VertexCount)
	assert.Equal(t, 2.0, regions[0].BoundingBox.East)
}

func TestExtractKML_DuplicateCodeKeepsPosition(t *testing.T) {
	doc := `<kml>
		<Placemark><name>X</name><coordinates>0,0 1,1</coordinates></Placemark>
		<Placemark><name>Y</name><coordinates>5,5 6,6</coordinates></Placemark>
		<Placemark><name> X </name><coordinates>10,10 12,12</coordinates></Placemark>
	</kml>`
	regions, err := ExtractKML(strings.NewReader(doc), nil)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "X", regions[0].Code)
	assert.Equal(t, LatLon{Latitude: 11, Longitude: 11}, regions[0].Center)
	assert.Equal(t, "Y", regions[1].Code)
}

func TestExtractKML_RoundsDerivedValues(t *testing.T) {
	doc := `<kml><Placemark><name>R</name><coordinates>1.00000012,2.00000049 1.00000034,2.00000051</coordinates></Placemark></kml>`
	regions, err := ExtractKML(strings.NewReader(doc), nil)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, 1.0, regions[0].BoundingBox.West)
	assert.Equal(t, 2.000001, regions[0].BoundingBox.North)
}

func TestExtractKML_Malformed(t *testing.T) {
	_, err := ExtractKML(strings.NewReader("<kml><Placemark><name>A</name>"), nil)
	assert.Error(t, err)
}

func TestExtractKML_SampleCapped(t *testing.T) {
	doc := `<kml><Placemark><name>S</name><coordinates>0,0 1,1 2,2 3,3 4,4 5,5 6,6</coordinates></Placemark></kml>`
	regions, err := ExtractKML(strings.NewReader(doc), nil)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, 7, regions[0].VertexCount)
	assert.Len(t, regions[0].SampleVertices, sampleSize)
	assert.Equal(t, LatLon{Latitude: 0, Longitude: 0}, regions[0].SampleVertices[0])
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []LatLon
	}{
		{"empty", "", []LatLon{}},
		{"with altitude", "72.1,18.2,0", []LatLon{{Latitude: 18.2, Longitude: 72.1}}},
		{"newlines and tabs", "1,2\n\t3,4", []LatLon{{Latitude: 2, Longitude: 1}, {Latitude: 4, Longitude: 3}}},
		{"single value", "72.1", []LatLon{}},
		{"non numeric latitude", "72.1,north", []LatLon{}},
		{"nan", "NaN,1", []LatLon{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCoordinates(tt.in))
		})
	}
}

func TestExtractGeoJSON(t *testing.T) {
	data, err := os.ReadFile("testdata/wards.geojson")
	require.NoError(t, err)

	regions, err := ExtractGeoJSON(data, "", nil)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, "North", regions[0].Code)
	assert.Equal(t, 5, regions[0].VertexCount)
	assert.InDelta(t, 11.6, regions[0].Center.Latitude, 1e-9)
	assert.InDelta(t, 1.6, regions[0].Center.Longitude, 1e-9)

	islands := regions[1]
	assert.Equal(t, "Islands", islands.Code)
	assert.Equal(t, 10, islands.VertexCount)
	assert.Equal(t, BoundingBox{North: 6, South: 0, East: 22, West: 10}, islands.BoundingBox)
}

func TestExtractGeoJSON_NameProperty(t *testing.T) {
	data, err := os.ReadFile("testdata/wards.geojson")
	require.NoError(t, err)

	regions, err := ExtractGeoJSON(data, "ward_no", nil)
	require.NoError(t, err)
	require.Len(t, regions, 3)
	assert.Equal(t, "N-1", regions[0].Code)
	assert.Equal(t, "I-2", regions[1].Code)
	assert.Equal(t, "X-9", regions[2].Code)
}

func TestExtractGeoJSON_Invalid(t *testing.T) {
	_, err := ExtractGeoJSON([]byte(`{"type": "FeatureCollection", "features": [`), "", nil)
	assert.Error(t, err)
}
