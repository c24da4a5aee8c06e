// Package crud is the generic record store behind every back-office resource.
package crud

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrInvalid  = errors.New("invalid record")
)

// Identifiable is implemented (on the pointer) by every stored record.
type Identifiable interface {
	GetID() uint
	SetID(id uint)
}

// Coded records carry a synthetic business code, e.g. "CS-48213".
type Coded interface {
	CodeTemplate() string
	GetCode() string
	SetCode(code string)
}

// Dated records can be filtered by a date range.
type Dated interface {
	RecordDate() time.Time
}

// Query narrows a List call.
type Query struct {
	Search string    // case-insensitive substring over every field
	From   time.Time // inclusive, zero = open
	To     time.Time // inclusive calendar day, zero = open
}

// Store persists records of one type.
type Store[T any] interface {
	List(ctx context.Context, q Query) ([]T, error)
	Get(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id uint, item *T) error
	Delete(ctx context.Context, id uint) error
}

// matchesRange applies the Query date bounds to a record.
func matchesRange(item any, q Query) bool {
	if q.From.IsZero() && q.To.IsZero() {
		return true
	}
	d, ok := item.(Dated)
	if !ok {
		return true
	}
	t := d.RecordDate()
	if !q.From.IsZero() && t.Before(dayStart(q.From)) {
		return false
	}
	if !q.To.IsZero() && !t.Before(dayStart(q.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Filter applies q to an already loaded slice.
func Filter[T any](items []T, q Query) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if !matchesRange(&items[i], q) {
			continue
		}
		if !Matches(items[i], q.Search) {
			continue
		}
		out = append(out, items[i])
	}
	return out
}
