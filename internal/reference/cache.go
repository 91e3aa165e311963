// Package reference keeps the place-name and amenity lists the extractors
// and the composer match free text against.
package reference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"guidechat/internal/logging"
	"guidechat/internal/metrics"
	"guidechat/internal/model"
	"guidechat/internal/utils"

	"golang.org/x/sync/singleflight"
)

// PlaceProvider lists administrative units.
type PlaceProvider interface {
	ListProvinces(ctx context.Context) ([]model.ReferenceEntry, error)
	ListWards(ctx context.Context, province string) ([]model.ReferenceEntry, error)
}

// AmenityProvider lists amenities known to the property backend.
type AmenityProvider interface {
	ListAmenities(ctx context.Context) ([]model.ReferenceEntry, error)
}

// Cache is a snapshot of reference data. Provinces and amenities change only
// on Load; wards are fetched once per province on first use.
type Cache struct {
	places       PlaceProvider
	amenitySrc   AmenityProvider
	snapshotPath string
	log          *logging.Logger

	mu        sync.RWMutex
	provinces []model.ReferenceEntry
	amenities []model.ReferenceEntry
	wards     map[string][]model.ReferenceEntry
	loadedAt  time.Time

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithSnapshot sets a YAML snapshot consulted when a provider fails.
func WithSnapshot(path string) Option {
	return func(c *Cache) { c.snapshotPath = path }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// NewCache creates a cache seeded with the built-in lists. Either provider
// may be nil.
func NewCache(places PlaceProvider, amenities AmenityProvider, opts ...Option) *Cache {
	c := &Cache{
		places:     places,
		amenitySrc: amenities,
		log:        logging.Nop(),
		provinces:  BuiltinProvinces(),
		amenities:  BuiltinAmenities(),
		wards:      make(map[string][]model.ReferenceEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load refreshes provinces and amenities and drops cached wards. It is safe to
// call repeatedly. A failing provider is replaced by the snapshot or the
// built-in list; the returned error reports which providers failed, but the
// cache is usable either way.
func (c *Cache) Load(ctx context.Context) error {
	var snap *Snapshot
	if c.snapshotPath != "" {
		s, err := ReadSnapshot(c.snapshotPath)
		if err != nil {
			c.log.Warn().Err(err).Str("path", c.snapshotPath).Msg("reference snapshot unavailable")
		} else {
			snap = s
		}
	}

	var errs []error

	provinces, err := c.fetchProvinces(ctx)
	if err != nil {
		errs = append(errs, err)
		metrics.RecordUpstreamFailure("provinces")
		provinces = BuiltinProvinces()
		if snap != nil && len(snap.Provinces) > 0 {
			provinces = snap.Provinces
		}
	}

	amenities, err := c.fetchAmenities(ctx)
	if err != nil {
		errs = append(errs, err)
		metrics.RecordUpstreamFailure("amenities")
		amenities = BuiltinAmenities()
		if snap != nil && len(snap.Amenities) > 0 {
			amenities = snap.Amenities
		}
	}

	wards := make(map[string][]model.ReferenceEntry)
	if snap != nil {
		for province, list := range snap.Wards {
			wards[utils.Normalize(province)] = list
		}
	}

	c.mu.Lock()
	c.provinces = provinces
	c.amenities = amenities
	c.wards = wards
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.log.Info().
		Int("provinces", len(provinces)).
		Int("amenities", len(amenities)).
		Int("failures", len(errs)).
		Msg("reference data loaded")

	return errors.Join(errs...)
}

func (c *Cache) fetchProvinces(ctx context.Context) ([]model.ReferenceEntry, error) {
	if c.places == nil {
		return nil, errors.New("no place provider configured")
	}
	list, err := c.places.ListProvinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provinces: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("place provider returned no provinces")
	}
	return list, nil
}

func (c *Cache) fetchAmenities(ctx context.Context) ([]model.ReferenceEntry, error) {
	if c.amenitySrc == nil {
		return nil, errors.New("no amenity provider configured")
	}
	list, err := c.amenitySrc.ListAmenities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load amenities: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("amenity provider returned no amenities")
	}
	return list, nil
}

// Provinces returns the current province list.
func (c *Cache) Provinces() []model.ReferenceEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provinces
}

// Amenities returns the current amenity list.
func (c *Cache) Amenities() []model.ReferenceEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.amenities
}

// LoadedAt returns when Load last completed, or the zero time.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Wards returns the wards of a province, fetching them on first use.
// Concurrent callers for the same province share one fetch. A failed fetch
// returns nil and is retried on the next call.
func (c *Cache) Wards(ctx context.Context, province string) []model.ReferenceEntry {
	key := utils.Normalize(province)
	if key == "" {
		return nil
	}

	c.mu.RLock()
	list, ok := c.wards[key]
	c.mu.RUnlock()
	if ok {
		return list
	}
	if c.places == nil {
		return nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		wards, err := c.places.ListWards(ctx, province)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.wards[key] = wards
		c.mu.Unlock()
		return wards, nil
	})
	if err != nil {
		metrics.RecordUpstreamFailure("wards")
		c.log.Warn().Err(err).Str("province", province).Msg("ward lookup failed")
		return nil
	}
	return v.([]model.ReferenceEntry)
}

// Snapshot returns the cache contents, including wards fetched so far.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := &Snapshot{
		GeneratedAt: time.Now().UTC(),
		Provinces:   append([]model.ReferenceEntry(nil), c.provinces...),
		Amenities:   append([]model.ReferenceEntry(nil), c.amenities...),
	}
	if len(c.wards) > 0 {
		snap.Wards = make(map[string][]model.ReferenceEntry, len(c.wards))
		for k, v := range c.wards {
			snap.Wards[k] = append([]model.ReferenceEntry(nil), v...)
		}
	}
	return snap
}
