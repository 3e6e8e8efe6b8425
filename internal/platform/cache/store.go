// Package cache holds the in-process read cache shared by the repository
// decorators and the read services.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var errNoLoader = errors.New("cache: loader is required")

type item struct {
	value     any
	tags      []string
	expiresAt time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !i.expiresAt.After(now)
}

// Store is a TTL cache whose entries can carry tags. Dropping a tag drops
// every entry written under it, which is how evaluations refresh the
// leaderboards and bet results they touched. A zero TTL never expires.
type Store struct {
	ttl   time.Duration
	now   func() time.Time
	loads singleflight.Group

	mu    sync.RWMutex
	items map[string]item
	index map[string]map[string]struct{}
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]item),
		index: make(map[string]map[string]struct{}),
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if it.expired(s.now()) {
		s.mu.Lock()
		s.evict(key)
		s.mu.Unlock()
		return nil, false
	}
	return it.value, true
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetTagged(ctx, key, value)
}

func (s *Store) SetTagged(_ context.Context, key string, value any, tags ...string) {
	if key == "" {
		return
	}
	it := item{value: value}
	if s.ttl > 0 {
		it.expiresAt = s.now().Add(s.ttl)
	}
	for _, tag := range tags {
		if tag != "" {
			it.tags = append(it.tags, tag)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)
	s.items[key] = it
	for _, tag := range it.tags {
		keys := s.index[tag]
		if keys == nil {
			keys = make(map[string]struct{})
			s.index[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// InvalidateTags drops every entry carrying any of tags and reports how many went.
func (s *Store) InvalidateTags(_ context.Context, tags ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, tag := range tags {
		for key := range s.index[tag] {
			if s.evict(key) {
				removed++
			}
		}
	}
	return removed
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	return s.GetOrLoadTagged(ctx, key, nil, loader)
}

// GetOrLoadTagged returns the cached value for key or runs loader once for
// all concurrent callers and caches its result under tags. Loader errors are not cached.
func (s *Store) GetOrLoadTagged(ctx context.Context, key string, tags []string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, errNoLoader
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := s.loads.Do(key, func() (any, error) {
		if v, ok := s.Get(ctx, key); ok {
			return v, nil
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.SetTagged(ctx, key, v, tags...)
		return v, nil
	})
	return v, err
}

// evict removes key and its tag memberships. Callers hold mu.
func (s *Store) evict(key string) bool {
	it, ok := s.items[key]
	if !ok {
		return false
	}
	delete(s.items, key)
	for _, tag := range it.tags {
		if keys := s.index[tag]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.index, tag)
			}
		}
	}
	return true
}
