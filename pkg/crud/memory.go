package crud

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. It backs the seeded demo
// mode and the tests.
type MemoryStore[T any] struct {
	mu     sync.RWMutex
	items  map[uint]T
	nextID uint
	now    func() time.Time
}

// NewMemoryStore returns a store preloaded with seed. Seed records keep
// their ids when set; the rest are numbered after the highest id.
func NewMemoryStore[T any](seed ...T) *MemoryStore[T] {
	s := &MemoryStore[T]{
		items: make(map[uint]T, len(seed)),
		now:   time.Now,
	}
	for i := range seed {
		item := seed[i]
		if id := idOf(&item); id > s.nextID {
			s.nextID = id
		}
	}
	for i := range seed {
		item := seed[i]
		rec := ident(&item)
		if rec.GetID() == 0 {
			s.nextID++
			rec.SetID(s.nextID)
		}
		s.items[rec.GetID()] = item
	}
	return s
}

func (s *MemoryStore[T]) List(ctx context.Context, q Query) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	all := make([]T, 0, len(ids))
	for _, id := range ids {
		all = append(all, s.items[id])
	}
	return Filter(all, q), nil
}

func (s *MemoryStore[T]) Get(ctx context.Context, id uint) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("get %d: %w", id, ErrNotFound)
	}
	return &item, nil
}

func (s *MemoryStore[T]) Create(ctx context.Context, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := any(item).(Coded); ok && c.GetCode() == "" {
		code, err := UniqueCode(c.CodeTemplate(), func(code string) (bool, error) {
			return s.codeTaken(code, 0), nil
		})
		if err != nil {
			return err
		}
		c.SetCode(code)
	} else if ok && s.codeTaken(c.GetCode(), 0) {
		return fmt.Errorf("code %s already exists: %w", c.GetCode(), ErrInvalid)
	}

	s.nextID++
	rec := ident(item)
	rec.SetID(s.nextID)
	now := s.now()
	touch(item, now, now)
	s.items[s.nextID] = *item
	return nil
}

func (s *MemoryStore[T]) Update(ctx context.Context, id uint, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[id]
	if !ok {
		return fmt.Errorf("update %d: %w", id, ErrNotFound)
	}
	if c, ok := any(item).(Coded); ok {
		if c.GetCode() == "" {
			c.SetCode(any(&existing).(Coded).GetCode())
		} else if s.codeTaken(c.GetCode(), id) {
			return fmt.Errorf("code %s already exists: %w", c.GetCode(), ErrInvalid)
		}
	}

	ident(item).SetID(id)
	touch(item, createdOf(&existing), s.now())
	s.items[id] = *item
	return nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("delete %d: %w", id, ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

// Len is the number of stored records.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore[T]) codeTaken(code string, except uint) bool {
	for id, existing := range s.items {
		if id == except {
			continue
		}
		if c, ok := any(&existing).(Coded); ok && c.GetCode() == code {
			return true
		}
	}
	return false
}

type toucher interface {
	Touch(created, updated time.Time)
	Created() time.Time
}

func ident(item any) Identifiable {
	rec, ok := item.(Identifiable)
	if !ok {
		panic(fmt.Sprintf("crud: %T does not implement Identifiable", item))
	}
	return rec
}

func idOf(item any) uint { return ident(item).GetID() }

func touch(item any, created, updated time.Time) {
	if t, ok := item.(toucher); ok {
		t.Touch(created, updated)
	}
}

func createdOf(item any) time.Time {
	if t, ok := item.(toucher); ok {
		return t.Created()
	}
	return time.Time{}
}
