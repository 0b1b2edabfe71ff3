// Package ward converts administrative boundary data into a region lookup
// table and resolves coordinates to the ward that owns them.
//
// # Lookup table
//
// The extractor reads named polygons (KML placemarks or GeoJSON features) and
// reduces each one to a centroid and an axis-aligned bounding box. The result
// is written once, offline, as a JSON object keyed by ward code:
//
//	{
//	  "A-1": {
//	    "ward_code": "A-1",
//	    "center": {"latitude": 18.93, "longitude": 72.83},
//	    "bounding_box": {"north": 18.95, "south": 18.91, "east": 72.85, "west": 72.81},
//	    "coordinates_count": 412,
//	    "sample_coordinates": [{"latitude": 18.91, "longitude": 72.81}]
//	  }
//	}
//
// Key order in the file is the order regions appeared in the boundary source.
// That order is significant: [Resolver] returns the first region whose box
// contains a point, so overlapping boxes resolve to whichever came first.
//
// # Resolution
//
// Containment is tested against the bounding box only, not the true polygon.
// Points inside the rectangle but outside the polygon are attributed to the
// region anyway. Points outside every box fall back to the region with the
// nearest centroid, so a non-empty index always yields a ward.
package ward
