package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// DefaultSpan is the span used when centering the camera on the user.
var DefaultSpan = Span{LatitudeDelta: 0.15, LongitudeDelta: 0.15}

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate validates and creates a Coordinate.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{Latitude: lat, Longitude: lng}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks that the coordinate lies on the globe.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude out of range: %v", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude out of range: %v", c.Longitude)
	}
	return nil
}

// Point converts to an orb point (x = longitude, y = latitude).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// FromPoint converts an orb point back to a Coordinate.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

// DistanceMeters returns the great-circle distance between two coordinates.
func DistanceMeters(a, b Coordinate) float64 {
	return orbgeo.Distance(a.Point(), b.Point())
}

// Span is the extent of a region in degrees.
type Span struct {
	LatitudeDelta  float64 `json:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta"`
}

// Validate rejects negative deltas.
func (s Span) Validate() error {
	if math.IsNaN(s.LatitudeDelta) || s.LatitudeDelta < 0 {
		return fmt.Errorf("latitude delta must be non-negative: %v", s.LatitudeDelta)
	}
	if math.IsNaN(s.LongitudeDelta) || s.LongitudeDelta < 0 {
		return fmt.Errorf("longitude delta must be non-negative: %v", s.LongitudeDelta)
	}
	return nil
}

// IsZero reports whether both deltas are zero.
func (s Span) IsZero() bool {
	return s.LatitudeDelta == 0 && s.LongitudeDelta == 0
}

// Swapped returns the span with its axes exchanged.
func (s Span) Swapped() Span {
	return Span{LatitudeDelta: s.LongitudeDelta, LongitudeDelta: s.LatitudeDelta}
}

// Region is a center plus span, the shape of a map viewport.
type Region struct {
	Center Coordinate `json:"center"`
	Span   Span       `json:"span"`
}

// NewRegion validates and creates a Region.
func NewRegion(center Coordinate, span Span) (Region, error) {
	if err := center.Validate(); err != nil {
		return Region{}, err
	}
	if err := span.Validate(); err != nil {
		return Region{}, err
	}
	return Region{Center: center, Span: span}, nil
}

// IsZero reports whether the region was never set.
func (r Region) IsZero() bool {
	return r.Center == (Coordinate{}) && r.Span.IsZero()
}

// Bound returns the region as an orb bound.
func (r Region) Bound() orb.Bound {
	halfLat := r.Span.LatitudeDelta / 2
	halfLng := r.Span.LongitudeDelta / 2
	return orb.Bound{
		Min: orb.Point{r.Center.Longitude - halfLng, r.Center.Latitude - halfLat},
		Max: orb.Point{r.Center.Longitude + halfLng, r.Center.Latitude + halfLat},
	}
}

// RegionFromBound converts an orb bound into a Region.
func RegionFromBound(b orb.Bound) Region {
	return Region{
		Center: FromPoint(b.Center()),
		Span: Span{
			LatitudeDelta:  b.Top() - b.Bottom(),
			LongitudeDelta: b.Right() - b.Left(),
		},
	}
}

// RegionAround returns a region centered on c with the default span.
func RegionAround(c Coordinate) Region {
	return Region{Center: c, Span: DefaultSpan}
}

// BoundingRegion returns the smallest region containing every coordinate,
// padded by the given fraction of its size on each side.
func BoundingRegion(coords []Coordinate, padding float64) (Region, bool) {
	if len(coords) == 0 {
		return Region{}, false
	}
	mp := make(orb.MultiPoint, len(coords))
	for i, c := range coords {
		mp[i] = c.Point()
	}
	b := mp.Bound()
	if padding > 0 {
		b = b.Pad(math.Max(b.Top()-b.Bottom(), b.Right()-b.Left()) * padding)
	}
	return RegionFromBound(b), true
}
