package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound  = errors.New("page not found")
	ErrStoreFull = errors.New("page store is full")
)

// Store is a thread-safe in-memory page registry with idle eviction.
type Store struct {
	mu       sync.Mutex
	pages    map[string]*Page
	ttl      time.Duration
	maxPages int
	log      *slog.Logger
}

// NewStore creates a store evicting pages idle for longer than ttl and holding
// at most maxPages pages (0 means unbounded).
func NewStore(ttl time.Duration, maxPages int, log *slog.Logger) *Store {
	return &Store{
		pages:    make(map[string]*Page),
		ttl:      ttl,
		maxPages: maxPages,
		log:      log,
	}
}

func (s *Store) Put(p *Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxPages > 0 && len(s.pages) >= s.maxPages {
		return fmt.Errorf("%w (%d pages)", ErrStoreFull, s.maxPages)
	}
	s.pages[p.ID] = p
	return nil
}

func (s *Store) Get(id string) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Delete removes the page and releases its engine.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	p, ok := s.pages[id]
	delete(s.pages, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	p.Close()
	return nil
}

// List returns page summaries, oldest first.
func (s *Store) List() []Summary {
	s.mu.Lock()
	pages := make([]*Page, 0, len(s.pages))
	for _, p := range s.pages {
		pages = append(pages, p)
	}
	s.mu.Unlock()

	out := make([]Summary, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of pages held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Cleanup evicts pages idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Cleanup() int {
	now := time.Now()
	var evicted []*Page
	s.mu.Lock()
	for id, p := range s.pages {
		if now.Sub(p.LastUsed()) > s.ttl {
			delete(s.pages, id)
			evicted = append(evicted, p)
		}
	}
	s.mu.Unlock()

	for _, p := range evicted {
		p.Close()
		s.log.Info("page evicted", "page_id", p.ID)
	}
	return len(evicted)
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Close releases every page and empties the store.
func (s *Store) Close() {
	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[string]*Page)
	s.mu.Unlock()
	for _, p := range pages {
		p.Close()
	}
}
