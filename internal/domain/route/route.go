package route

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mytrips/service-trips/internal/domain/geo"
)

// boundsPadding widens the route extent so the endpoints are not on the edge
// of the viewport.
const boundsPadding = 0.1

// TravelMode is the means of travel used for directions.
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeWalking TravelMode = "walking"
)

// IsValid returns true if the travel mode is recognized.
func (m TravelMode) IsValid() bool {
	return m == ModeDriving || m == ModeWalking
}

// Label returns the display prefix for the mode.
func (m TravelMode) Label() string {
	if m == ModeWalking {
		return "Walking"
	}
	return "Driving"
}

// ParseTravelMode converts a string to a TravelMode.
func ParseTravelMode(s string) (TravelMode, error) {
	m := TravelMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid travel mode: %s", s)
	}
	return m, nil
}

// Step is one turn-by-turn instruction.
type Step struct {
	Instruction string  `json:"instruction"`
	DistanceM   float64 `json:"distance_m"`
}

// Route is a computed path between two points. Routes are derived values and
// are never persisted.
type Route struct {
	Mode               TravelMode       `json:"mode"`
	Origin             geo.Coordinate   `json:"origin"`
	Target             geo.Coordinate   `json:"target"`
	Steps              []Step           `json:"steps"`
	Polyline           string           `json:"polyline"`
	Path               []geo.Coordinate `json:"path"`
	DistanceM          float64          `json:"distance_m"`
	ExpectedTravelTime time.Duration    `json:"expected_travel_time"`
}

// Bounds returns the region framing the whole route.
func (r *Route) Bounds() geo.Region {
	points := r.Path
	if len(points) == 0 {
		points = []geo.Coordinate{r.Origin, r.Target}
	}
	region, _ := geo.BoundingRegion(points, boundsPadding)
	return region
}

// FormatTravelTime renders a duration in abbreviated hours and minutes, such
// as "1h 5m" or "12m". Seconds are rounded to the nearest minute.
func FormatTravelTime(d time.Duration) string {
	minutes := int(math.Round(d.Minutes()))
	if minutes < 0 {
		minutes = 0
	}
	hours, minutes := minutes/60, minutes%60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatDistance renders meters with an SI prefix, such as "850 m" or "1.2 km".
func FormatDistance(meters float64) string {
	return humanize.SIWithDigits(meters, 1, "m")
}
