// Package memory holds in-process repositories used for local runs and tests.
// Destinations and placemarks share one Store so a destination delete and its
// placemark cascade happen under a single lock.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	destinationDomain "github.com/mytrips/service-trips/internal/domain/destination"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	"github.com/mytrips/service-trips/pkg/domain"
)

// Store is the shared backing state for the memory repositories.
type Store struct {
	mu           sync.RWMutex
	destinations map[uuid.UUID]*destinationDomain.Destination
	placemarks   map[uuid.UUID]*placemarkDomain.Placemark
}

func NewStore() *Store {
	return &Store{
		destinations: make(map[uuid.UUID]*destinationDomain.Destination),
		placemarks:   make(map[uuid.UUID]*placemarkDomain.Placemark),
	}
}

// Destinations returns a DestinationRepository view of the store.
func (s *Store) Destinations() *DestinationRepository {
	return &DestinationRepository{s: s}
}

// Placemarks returns a PlacemarkRepository view of the store.
func (s *Store) Placemarks() *PlacemarkRepository {
	return &PlacemarkRepository{s: s}
}

// Stored aggregates are copies so callers cannot mutate them without Update.
func copyDestination(d *destinationDomain.Destination) *destinationDomain.Destination {
	return destinationDomain.Reconstruct(d.ID(), d.OwnerID(), d.Name(), d.Region(), d.Version(), d.CreatedAt(), d.UpdatedAt())
}

func copyPlacemark(p *placemarkDomain.Placemark) *placemarkDomain.Placemark {
	var destID *uuid.UUID
	if p.DestinationID() != nil {
		id := *p.DestinationID()
		destID = &id
	}
	return placemarkDomain.Reconstruct(p.ID(), p.OwnerID(), p.Name(), p.Address(), p.Coordinate(), destID, p.CreatedAt(), p.UpdatedAt())
}

// DestinationRepository stores destinations in memory.
type DestinationRepository struct {
	s *Store
}

func (r *DestinationRepository) FindByID(ctx context.Context, id uuid.UUID) (*destinationDomain.Destination, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.destinations[id]
	if !ok {
		return nil, domain.NewNotFoundError("Destination", id.String())
	}
	return copyDestination(d), nil
}

func (r *DestinationRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*destinationDomain.Destination, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []*destinationDomain.Destination
	for _, d := range r.s.destinations {
		if d.IsOwnedBy(ownerID) {
			all = append(all, d)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if c := strings.Compare(all[i].Name(), all[j].Name()); c != 0 {
			return c < 0
		}
		return all[i].CreatedAt().Before(all[j].CreatedAt())
	})

	total := int64(len(all))
	start := (page - 1) * limit
	if start < 0 || start >= len(all) {
		return []*destinationDomain.Destination{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	out := make([]*destinationDomain.Destination, 0, end-start)
	for _, d := range all[start:end] {
		out = append(out, copyDestination(d))
	}
	return out, total, nil
}

func (r *DestinationRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.destinations)), nil
}

func (r *DestinationRepository) Save(ctx context.Context, d *destinationDomain.Destination) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.destinations[d.ID()]; exists {
		return domain.NewConflictError("destination already exists")
	}
	r.s.destinations[d.ID()] = copyDestination(d)
	return nil
}

// Update applies the same version check as the SQL repository.
func (r *DestinationRepository) Update(ctx context.Context, d *destinationDomain.Destination) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, exists := r.s.destinations[d.ID()]
	if !exists || current.Version() != d.Version()-1 {
		return domain.NewConflictError("destination was modified by another request")
	}
	r.s.destinations[d.ID()] = copyDestination(d)
	return nil
}

func (r *DestinationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.destinations[id]; !exists {
		return domain.NewNotFoundError("Destination", id.String())
	}
	for pid, p := range r.s.placemarks {
		if p.BelongsTo(id) {
			delete(r.s.placemarks, pid)
		}
	}
	delete(r.s.destinations, id)
	return nil
}

// PlacemarkRepository stores placemarks in memory.
type PlacemarkRepository struct {
	s *Store
}

func (r *PlacemarkRepository) Save(ctx context.Context, p *placemarkDomain.Placemark) error {
	return r.SaveAll(ctx, []*placemarkDomain.Placemark{p})
}

func (r *PlacemarkRepository) SaveAll(ctx context.Context, ps []*placemarkDomain.Placemark) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range ps {
		if _, exists := r.s.placemarks[p.ID()]; exists {
			return domain.NewConflictError("placemark already exists")
		}
	}
	for _, p := range ps {
		r.s.placemarks[p.ID()] = copyPlacemark(p)
	}
	return nil
}

func (r *PlacemarkRepository) Update(ctx context.Context, p *placemarkDomain.Placemark) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.placemarks[p.ID()]; !exists {
		return domain.NewNotFoundError("Placemark", p.ID().String())
	}
	r.s.placemarks[p.ID()] = copyPlacemark(p)
	return nil
}

func (r *PlacemarkRepository) FindByID(ctx context.Context, id uuid.UUID) (*placemarkDomain.Placemark, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.placemarks[id]
	if !ok {
		return nil, domain.NewNotFoundError("Placemark", id.String())
	}
	return copyPlacemark(p), nil
}

func (r *PlacemarkRepository) Find(ctx context.Context, filter placemarkDomain.Filter) ([]*placemarkDomain.Placemark, error) {
	return r.collect(func(p *placemarkDomain.Placemark) bool {
		if !p.IsOwnedBy(filter.OwnerID) {
			return false
		}
		switch filter.State {
		case placemarkDomain.StateEphemeral:
			if !p.IsEphemeral() {
				return false
			}
		case placemarkDomain.StateOwned:
			if p.IsEphemeral() {
				return false
			}
		}
		return filter.DestinationID == nil || p.BelongsTo(*filter.DestinationID)
	}), nil
}

func (r *PlacemarkRepository) FindByDestination(ctx context.Context, destinationID uuid.UUID) ([]*placemarkDomain.Placemark, error) {
	return r.collect(func(p *placemarkDomain.Placemark) bool {
		return p.BelongsTo(destinationID)
	}), nil
}

func (r *PlacemarkRepository) DeleteEphemeral(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, p := range r.s.placemarks {
		if p.IsOwnedBy(ownerID) && p.IsEphemeral() {
			delete(r.s.placemarks, id)
			n++
		}
	}
	return n, nil
}

func (r *PlacemarkRepository) CountByState(ctx context.Context) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[string]int64{
		string(placemarkDomain.StateOwned):     0,
		string(placemarkDomain.StateEphemeral): 0,
	}
	for _, p := range r.s.placemarks {
		if p.IsEphemeral() {
			counts[string(placemarkDomain.StateEphemeral)]++
		} else {
			counts[string(placemarkDomain.StateOwned)]++
		}
	}
	return counts, nil
}

// collect returns matching placemarks oldest first.
func (r *PlacemarkRepository) collect(match func(*placemarkDomain.Placemark) bool) []*placemarkDomain.Placemark {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*placemarkDomain.Placemark{}
	for _, p := range r.s.placemarks {
		if match(p) {
			out = append(out, copyPlacemark(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}
