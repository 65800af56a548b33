package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	destinationDomain "github.com/mytrips/service-trips/internal/domain/destination"
	"github.com/mytrips/service-trips/internal/domain/geo"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	"github.com/mytrips/service-trips/internal/domain/route"
	"github.com/mytrips/service-trips/internal/location"
	"github.com/mytrips/service-trips/internal/maps"
	"github.com/mytrips/service-trips/pkg/domain"
)

// SessionMode is the kind of map view a session is showing.
type SessionMode string

const (
	// ModeTrip is the current-trip view with routing from the user location.
	ModeTrip SessionMode = "trip"
	// ModeDestination browses one destination's placemarks. No routing.
	ModeDestination SessionMode = "destination"
)

// SessionDependencies are the collaborators of a MapSession.
type SessionDependencies struct {
	Searcher     maps.Searcher
	Directions   maps.Directions
	Scenes       maps.SceneLookup
	Location     location.Provider
	Destinations destinationDomain.DestinationRepository
	Placemarks   placemarkDomain.PlacemarkRepository
	Logger       *zap.Logger
	Now          func() time.Time
}

func (d SessionDependencies) withDefaults() SessionDependencies {
	if d.Searcher == nil {
		d.Searcher = maps.Disabled{}
	}
	if d.Directions == nil {
		d.Directions = maps.Disabled{}
	}
	if d.Scenes == nil {
		d.Scenes = maps.Disabled{}
	}
	if d.Location == nil {
		d.Location = location.NewTracker()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// RouteDTO is the API representation of a computed route.
type RouteDTO struct {
	Mode                  route.TravelMode `json:"mode"`
	DistanceM             float64          `json:"distance_m"`
	Distance              string           `json:"distance"`
	ExpectedTravelSeconds int64            `json:"expected_travel_seconds"`
	TravelTime            string           `json:"travel_time"`
	Steps                 []StepDTO        `json:"steps"`
	Polyline              string           `json:"polyline,omitempty"`
	Path                  []geo.Coordinate `json:"path,omitempty"`
	Bounds                geo.Region       `json:"bounds"`
}

// StepDTO is one turn-by-turn instruction.
type StepDTO struct {
	Instruction string  `json:"instruction"`
	DistanceM   float64 `json:"distance_m"`
	Distance    string  `json:"distance"`
}

// SessionState is a point-in-time view of a map session. Placemark lists are
// re-queried on every call.
type SessionState struct {
	Active        bool              `json:"active"`
	Mode          SessionMode       `json:"mode"`
	DestinationID *uuid.UUID        `json:"destination_id,omitempty"`
	ManualPinMode bool              `json:"manual_pin_mode"`
	Location      location.Snapshot `json:"location"`
	Camera        *geo.Region       `json:"camera"`
	VisibleRegion *geo.Region       `json:"visible_region,omitempty"`
	Selected      *PlacemarkDTO     `json:"selected"`
	TravelMode    route.TravelMode  `json:"travel_mode"`
	RouteStatus   route.Status      `json:"route_status"`
	Route         *RouteDTO         `json:"route"`
	Scene         *maps.Scene       `json:"scene"`
	SearchResults []PlacemarkDTO    `json:"search_results"`
	Placemarks    []PlacemarkDTO    `json:"placemarks"`
}

// MapSession orchestrates search, selection, routing and scene preview for
// one user. A mutex guards the state; maps API calls run without it. Each
// async kind carries a monotonic token and results are applied only while
// their token is still the latest.
type MapSession struct {
	userID uuid.UUID
	deps   SessionDependencies
	logger *zap.Logger

	mu            sync.Mutex
	active        bool
	destinationID *uuid.UUID
	manualPinMode bool
	selected      *placemarkDomain.Placemark
	travelMode    route.TravelMode
	routeStatus   route.Status
	route         *route.Route
	scene         *maps.Scene
	camera        *geo.Region
	visibleRegion *geo.Region
	searchToken   uint64
	routeToken    uint64
	sceneToken    uint64
	lastUsed      time.Time
}

// NewMapSession creates an idle session for the user.
func NewMapSession(userID uuid.UUID, deps SessionDependencies) *MapSession {
	deps = deps.withDefaults()
	return &MapSession{
		userID:      userID,
		deps:        deps,
		logger:      deps.Logger.With(zap.String("user_id", userID.String())),
		travelMode:  route.ModeDriving,
		routeStatus: route.StatusIdle,
		lastUsed:    deps.Now(),
	}
}

// Enter starts a view. With a destination ID the session browses that
// destination and never routes; otherwise it is the trip view, which needs
// location access. Ephemeral results from earlier views are cleared.
func (s *MapSession) Enter(ctx context.Context, destinationID *uuid.UUID) error {
	var dest *destinationDomain.Destination
	if destinationID != nil {
		d, err := findOwnedDestination(ctx, s.deps.Destinations, s.userID, *destinationID)
		if err != nil {
			return err
		}
		dest = d
	}

	loc := s.deps.Location.Snapshot(ctx, s.userID)
	if dest == nil && loc.Authorization == location.AuthorizationDenied {
		return domain.NewLocationDeniedError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	s.active = true
	s.manualPinMode = false
	s.visibleRegion = nil
	s.deselectLocked()
	s.clearEphemeralLocked(ctx)

	s.destinationID = nil
	s.camera = nil
	switch {
	case dest != nil:
		id := dest.ID()
		s.destinationID = &id
		if dest.HasRegion() {
			region := dest.Region()
			s.camera = &region
		}
	case loc.Known():
		region := geo.RegionAround(loc.Fix.Coordinate)
		s.camera = &region
	}

	s.logger.Debug("map view entered", zap.Bool("destination_mode", dest != nil))
	return nil
}

// Exit leaves the current view, dropping the selection, any route and all
// ephemeral results. In-flight results are discarded.
func (s *MapSession) Exit(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	s.active = false
	s.manualPinMode = false
	s.destinationID = nil
	s.camera = nil
	s.visibleRegion = nil
	s.deselectLocked()
	s.clearEphemeralLocked(ctx)
}

// Search runs a place search and stores each candidate as an ephemeral
// placemark. A blank query does nothing. Search failures yield no results.
// Without an explicit bias the visible region is used.
func (s *MapSession) Search(ctx context.Context, query string, bias *geo.Region) ([]PlacemarkDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []PlacemarkDTO{}, nil
	}
	if bias != nil {
		if _, err := geo.NewRegion(bias.Center, bias.Span); err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid search region: %v", err))
		}
	}

	s.mu.Lock()
	s.touchLocked()
	s.searchToken++
	token := s.searchToken
	if bias == nil && s.visibleRegion != nil {
		region := *s.visibleRegion
		bias = &region
	}
	s.mu.Unlock()

	results, err := s.deps.Searcher.Search(ctx, query, bias)
	if err != nil {
		s.logger.Warn("place search failed", zap.String("query", query), zap.Error(err))
		return []PlacemarkDTO{}, nil
	}

	placemarks := make([]*placemarkDomain.Placemark, 0, len(results))
	for _, r := range results {
		p, err := placemarkDomain.NewPlacemark(s.userID, r.Name, r.Address, r.Coordinate)
		if err != nil {
			s.logger.Debug("skipping invalid search result", zap.String("name", r.Name), zap.Error(err))
			continue
		}
		placemarks = append(placemarks, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.searchToken {
		s.logger.Debug("discarding stale search results", zap.String("query", query))
		return []PlacemarkDTO{}, nil
	}
	if len(placemarks) == 0 {
		return []PlacemarkDTO{}, nil
	}
	if err := s.deps.Placemarks.SaveAll(ctx, placemarks); err != nil {
		return nil, fmt.Errorf("failed to store search results: %w", err)
	}

	s.logger.Debug("search results stored",
		zap.String("query", query),
		zap.Int("count", len(placemarks)),
	)
	return toPlacemarkDTOs(placemarks), nil
}

// ClearEphemeralResults deletes every search result and dropped pin of the
// user. It is idempotent and best-effort, and returns how many were removed.
func (s *MapSession) ClearEphemeralResults(ctx context.Context) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.clearEphemeralLocked(ctx)
}

// PlaceManualPin drops an unnamed ephemeral placemark and selects it.
func (s *MapSession) PlaceManualPin(ctx context.Context, coord geo.Coordinate) (*PlacemarkDTO, error) {
	p, err := placemarkDomain.NewPlacemark(s.userID, "", "", coord)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Placemarks.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save pin: %w", err)
	}

	s.selectPlacemark(ctx, p)

	result := toPlacemarkDTO(p)
	return &result, nil
}

// SelectPlacemark makes the placemark the current selection, fetching its
// scene preview and, when possible, a route to it.
func (s *MapSession) SelectPlacemark(ctx context.Context, placemarkID uuid.UUID) error {
	p, err := s.deps.Placemarks.FindByID(ctx, placemarkID)
	if err != nil {
		return err
	}
	if !p.IsOwnedBy(s.userID) {
		return domain.NewForbiddenError("placemark does not belong to this user")
	}
	s.selectPlacemark(ctx, p)
	return nil
}

// DismissSelection handles the detail sheet being closed. In manual pin mode
// the dropped pins are cleared as well.
func (s *MapSession) DismissSelection(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	s.deselectLocked()
	if s.manualPinMode {
		s.clearEphemeralLocked(ctx)
	}
}

// SetTravelMode changes the travel mode. An active route is recomputed.
func (s *MapSession) SetTravelMode(ctx context.Context, mode string) error {
	m, err := route.ParseTravelMode(mode)
	if err != nil {
		return domain.NewValidationError(err.Error())
	}
	loc := s.deps.Location.Snapshot(ctx, s.userID)

	s.mu.Lock()
	s.touchLocked()
	if s.travelMode == m {
		s.mu.Unlock()
		return nil
	}
	s.travelMode = m
	if !s.routeStatus.IsActive() {
		s.mu.Unlock()
		return nil
	}
	req, token, compute := s.beginRouteLocked(loc)
	s.mu.Unlock()

	if compute {
		if err := s.computeRoute(ctx, req, token); err != nil {
			s.logger.Warn("route calculation failed",
				zap.String("mode", string(req.Mode)),
				zap.Error(err),
			)
		}
	}
	return nil
}

// ShowRoute displays the ready route and frames it with the camera.
func (s *MapSession) ShowRoute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.routeStatus != route.StatusReady || s.route == nil {
		return domain.NewInvalidStateError(fmt.Sprintf("no route to show in status %s", s.routeStatus))
	}
	s.setStatusLocked(route.StatusDisplayed)
	bounds := s.route.Bounds()
	s.camera = &bounds
	return nil
}

// HideRoute stops displaying the route but keeps it.
func (s *MapSession) HideRoute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.routeStatus != route.StatusDisplayed {
		return domain.NewInvalidStateError(fmt.Sprintf("no route displayed in status %s", s.routeStatus))
	}
	s.setStatusLocked(route.StatusReady)
	return nil
}

// ClearRoute discards the route and the selection and recenters the camera
// on the user. With no known location the camera is left alone.
func (s *MapSession) ClearRoute(ctx context.Context) {
	loc := s.deps.Location.Snapshot(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	s.deselectLocked()
	if loc.Known() {
		region := geo.RegionAround(loc.Fix.Coordinate)
		s.camera = &region
	}
}

// SetVisibleRegion records the viewport the client is showing. It biases
// later searches.
func (s *MapSession) SetVisibleRegion(ctx context.Context, region geo.Region) error {
	if _, err := geo.NewRegion(region.Center, region.Span); err != nil {
		return domain.NewValidationError(fmt.Sprintf("invalid region: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.visibleRegion = &region
	return nil
}

// SetManualPinMode toggles pin dropping. Any change clears ephemeral results.
func (s *MapSession) SetManualPinMode(ctx context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.manualPinMode == enabled {
		return
	}
	s.manualPinMode = enabled
	s.clearEphemeralLocked(ctx)
}

// State returns the current session state with freshly queried placemarks.
func (s *MapSession) State(ctx context.Context) (*SessionState, error) {
	loc := s.deps.Location.Snapshot(ctx, s.userID)

	s.mu.Lock()
	state := &SessionState{
		Active:        s.active,
		Mode:          ModeTrip,
		DestinationID: s.destinationID,
		ManualPinMode: s.manualPinMode,
		Location:      loc,
		Camera:        s.camera,
		VisibleRegion: s.visibleRegion,
		TravelMode:    s.travelMode,
		RouteStatus:   s.routeStatus,
		Scene:         s.scene,
	}
	if s.destinationID != nil {
		state.Mode = ModeDestination
	}
	if s.route != nil {
		dto := toRouteDTO(s.route)
		state.Route = &dto
	}
	var selectedID *uuid.UUID
	if s.selected != nil {
		id := s.selected.ID()
		selectedID = &id
	}
	s.mu.Unlock()

	if selectedID != nil {
		p, err := s.deps.Placemarks.FindByID(ctx, *selectedID)
		var notFound *domain.NotFoundError
		switch {
		case err == nil:
			dto := toPlacemarkDTO(p)
			state.Selected = &dto
		case !errors.As(err, &notFound):
			return nil, err
		}
	}

	ephemeral, err := s.deps.Placemarks.Find(ctx, placemarkDomain.Filter{
		OwnerID: s.userID,
		State:   placemarkDomain.StateEphemeral,
	})
	if err != nil {
		return nil, err
	}
	state.SearchResults = toPlacemarkDTOs(ephemeral)

	var saved []*placemarkDomain.Placemark
	if state.DestinationID != nil {
		saved, err = s.deps.Placemarks.FindByDestination(ctx, *state.DestinationID)
	} else {
		saved, err = s.deps.Placemarks.Find(ctx, placemarkDomain.Filter{
			OwnerID: s.userID,
			State:   placemarkDomain.StateOwned,
		})
	}
	if err != nil {
		return nil, err
	}
	state.Placemarks = toPlacemarkDTOs(saved)

	return state, nil
}

// LastUsed returns when the session was last touched.
func (s *MapSession) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// selectPlacemark replaces the selection and fetches the scene and route for
// it concurrently. It returns once both have settled.
func (s *MapSession) selectPlacemark(ctx context.Context, p *placemarkDomain.Placemark) {
	loc := s.deps.Location.Snapshot(ctx, s.userID)

	s.mu.Lock()
	s.touchLocked()
	s.selected = p
	s.scene = nil
	s.sceneToken++
	sceneToken := s.sceneToken
	req, routeToken, compute := s.beginRouteLocked(loc)
	s.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		return s.lookupScene(ctx, p.Coordinate(), sceneToken)
	})
	if compute {
		g.Go(func() error {
			return s.computeRoute(ctx, req, routeToken)
		})
	}
	// Both lookups settle session state themselves. Wait only surfaces the
	// first failure for logging.
	if err := g.Wait(); err != nil {
		s.logger.Warn("selection lookup failed",
			zap.String("placemark_id", p.ID().String()),
			zap.Error(err),
		)
	}
}

// beginRouteLocked discards the current route and enters computing when a
// selection and a known location exist outside destination mode. Otherwise
// the route goes idle. Caller holds mu.
func (s *MapSession) beginRouteLocked(loc location.Snapshot) (maps.DirectionsRequest, uint64, bool) {
	s.routeToken++
	s.route = nil

	if s.selected == nil || s.destinationID != nil || !loc.Known() {
		s.setStatusLocked(route.StatusIdle)
		return maps.DirectionsRequest{}, 0, false
	}

	s.setStatusLocked(route.StatusComputing)
	return maps.DirectionsRequest{
		Origin: loc.Fix.Coordinate,
		Target: s.selected.Coordinate(),
		Mode:   s.travelMode,
	}, s.routeToken, true
}

// computeRoute applies a directions result while its token is current. A
// failure returns the route to idle and is returned to the caller; stale
// results are dropped silently.
func (s *MapSession) computeRoute(ctx context.Context, req maps.DirectionsRequest, token uint64) error {
	r, err := s.deps.Directions.Route(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.routeToken {
		s.logger.Debug("discarding stale route")
		return nil
	}
	if err != nil {
		s.setStatusLocked(route.StatusIdle)
		return fmt.Errorf("route calculation: %w", err)
	}
	s.route = r
	s.setStatusLocked(route.StatusReady)
	return nil
}

// lookupScene applies a scene preview while its token is current. Missing
// imagery and a disabled backend are not errors; other failures leave no
// scene and are returned.
func (s *MapSession) lookupScene(ctx context.Context, coord geo.Coordinate, token uint64) error {
	scene, err := s.deps.Scenes.Lookup(ctx, coord)
	if err != nil {
		scene = nil
		if errors.Is(err, maps.ErrNoScene) || errors.Is(err, maps.ErrUnavailable) {
			s.logger.Debug("no scene for selection", zap.Error(err))
			err = nil
		} else {
			err = fmt.Errorf("scene lookup: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.sceneToken {
		return nil
	}
	s.scene = scene
	return err
}

// deselectLocked drops the selection with its scene and route, and
// invalidates in-flight lookups. Caller holds mu.
func (s *MapSession) deselectLocked() {
	s.selected = nil
	s.scene = nil
	s.sceneToken++
	s.routeToken++
	s.route = nil
	s.setStatusLocked(route.StatusIdle)
}

// clearEphemeralLocked deletes the user's ephemeral placemarks and discards
// any search still in flight. A selection that was deleted is dropped.
// Caller holds mu.
func (s *MapSession) clearEphemeralLocked(ctx context.Context) int64 {
	s.searchToken++

	n, err := s.deps.Placemarks.DeleteEphemeral(ctx, s.userID)
	if err != nil {
		s.logger.Error("failed to clear ephemeral placemarks", zap.Error(err))
		return 0
	}

	if s.selected != nil {
		var notFound *domain.NotFoundError
		if _, err := s.deps.Placemarks.FindByID(ctx, s.selected.ID()); errors.As(err, &notFound) {
			s.deselectLocked()
		}
	}
	return n
}

// setStatusLocked moves the route lifecycle along a valid transition.
// Caller holds mu.
func (s *MapSession) setStatusLocked(next route.Status) {
	if s.routeStatus == next && next != route.StatusComputing {
		return
	}
	if !s.routeStatus.CanTransitionTo(next) {
		s.logger.Error("invalid route status transition",
			zap.String("from", s.routeStatus.String()),
			zap.String("to", next.String()),
		)
		return
	}
	s.routeStatus = next
}

func (s *MapSession) touchLocked() {
	s.lastUsed = s.deps.Now()
}

func toRouteDTO(r *route.Route) RouteDTO {
	steps := make([]StepDTO, len(r.Steps))
	for i, st := range r.Steps {
		steps[i] = StepDTO{
			Instruction: st.Instruction,
			DistanceM:   st.DistanceM,
			Distance:    route.FormatDistance(st.DistanceM),
		}
	}
	return RouteDTO{
		Mode:                  r.Mode,
		DistanceM:             r.DistanceM,
		Distance:              route.FormatDistance(r.DistanceM),
		ExpectedTravelSeconds: int64(r.ExpectedTravelTime.Seconds()),
		TravelTime:            r.Mode.Label() + " time: " + route.FormatTravelTime(r.ExpectedTravelTime),
		Steps:                 steps,
		Polyline:              r.Polyline,
		Path:                  r.Path,
		Bounds:                r.Bounds(),
	}
}
