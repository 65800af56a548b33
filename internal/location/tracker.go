package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/pkg/domain"
)

// Authorization is the device's location permission state.
type Authorization string

const (
	AuthorizationNotDetermined Authorization = "not_determined"
	AuthorizationAuthorized    Authorization = "authorized"
	AuthorizationDenied        Authorization = "denied"
)

// IsValid returns true if the authorization is recognized.
func (a Authorization) IsValid() bool {
	switch a {
	case AuthorizationNotDetermined, AuthorizationAuthorized, AuthorizationDenied:
		return true
	}
	return false
}

// ParseAuthorization converts a string to an Authorization.
func ParseAuthorization(s string) (Authorization, error) {
	a := Authorization(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid location authorization: %s", s)
	}
	return a, nil
}

// Fix is a reported device position.
type Fix struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	AccuracyM  float64        `json:"accuracy_m"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Snapshot is the location state of one user.
type Snapshot struct {
	Authorization Authorization `json:"authorization"`
	Fix           *Fix          `json:"fix,omitempty"`
}

// Known reports whether a usable position is available.
func (s Snapshot) Known() bool {
	return s.Authorization != AuthorizationDenied && s.Fix != nil
}

// Provider supplies the current location of a user. Consumers treat it as
// read-only.
type Provider interface {
	Snapshot(ctx context.Context, userID uuid.UUID) Snapshot
}

// Tracker is an in-memory Provider fed by device updates over HTTP or Kafka.
type Tracker struct {
	mu     sync.RWMutex
	states map[uuid.UUID]Snapshot
	now    func() time.Time
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[uuid.UUID]Snapshot),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot returns the user's location state. Unknown users are not_determined.
func (t *Tracker) Snapshot(_ context.Context, userID uuid.UUID) Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.states[userID]
	if !ok {
		return Snapshot{Authorization: AuthorizationNotDetermined}
	}
	if s.Fix != nil {
		fix := *s.Fix
		s.Fix = &fix
	}
	return s
}

// UpdateFix records a new position. A first fix from an undetermined device
// implies authorization; a denied device is rejected.
func (t *Tracker) UpdateFix(_ context.Context, userID uuid.UUID, coord geo.Coordinate, accuracyM float64) error {
	if err := coord.Validate(); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if accuracyM < 0 {
		return domain.NewValidationError("accuracy must be non-negative")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.states[userID]
	if s.Authorization == AuthorizationDenied {
		return domain.NewLocationDeniedError()
	}
	s.Authorization = AuthorizationAuthorized
	s.Fix = &Fix{Coordinate: coord, AccuracyM: accuracyM, RecordedAt: t.now()}
	t.states[userID] = s
	return nil
}

// SetAuthorization records a permission change. Denying access drops the
// last known position.
func (t *Tracker) SetAuthorization(_ context.Context, userID uuid.UUID, auth Authorization) error {
	if !auth.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid location authorization: %s", auth))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.states[userID]
	s.Authorization = auth
	if auth != AuthorizationAuthorized {
		s.Fix = nil
	}
	t.states[userID] = s
	return nil
}

// Current returns the user's position, or a location_denied error when the
// device has refused access. A nil Fix means the position is not yet known.
func (t *Tracker) Current(ctx context.Context, userID uuid.UUID) (*Fix, error) {
	s := t.Snapshot(ctx, userID)
	if s.Authorization == AuthorizationDenied {
		return nil, domain.NewLocationDeniedError()
	}
	return s.Fix, nil
}
