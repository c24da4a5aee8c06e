package crud

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists records through gorm (postgres or sqlite).
type GormStore[T any] struct {
	db       *gorm.DB
	preloads []string
	scopes   []func(*gorm.DB) *gorm.DB
}

// GormOption configures a GormStore.
type GormOption[T any] func(*GormStore[T])

// WithPreload loads (and on update replaces) the named has-many association.
func WithPreload[T any](assoc string) GormOption[T] {
	return func(s *GormStore[T]) { s.preloads = append(s.preloads, assoc) }
}

// WithScope restricts every query, e.g. to one memo direction.
func WithScope[T any](query string, args ...interface{}) GormOption[T] {
	return func(s *GormStore[T]) {
		s.scopes = append(s.scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(query, args...)
		})
	}
}

func NewGormStore[T any](db *gorm.DB, opts ...GormOption[T]) *GormStore[T] {
	s := &GormStore[T]{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GormStore[T]) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx).Model(new(T)).Scopes(s.scopes...)
	for _, p := range s.preloads {
		q = q.Preload(p)
	}
	return q
}

func (s *GormStore[T]) List(ctx context.Context, q Query) ([]T, error) {
	var items []T
	if err := s.query(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %T: %w", *new(T), err)
	}
	// Search runs over the loaded records so nested items and formatted
	// values behave exactly as in memory.
	return Filter(items, q), nil
}

func (s *GormStore[T]) Get(ctx context.Context, id uint) (*T, error) {
	var item T
	if err := s.query(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("get %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get %d: %w", id, err)
	}
	return &item, nil
}

func (s *GormStore[T]) Create(ctx context.Context, item *T) error {
	if c, ok := any(item).(Coded); ok && c.GetCode() == "" {
		code, err := UniqueCode(c.CodeTemplate(), func(code string) (bool, error) {
			return s.codeTaken(ctx, code)
		})
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.SetCode(code)
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("create: %v: %w", err, ErrInvalid)
		}
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

func (s *GormStore[T]) Update(ctx context.Context, id uint, item *T) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c, ok := any(item).(Coded); ok && c.GetCode() == "" {
		c.SetCode(any(existing).(Coded).GetCode())
	}
	ident(item).SetID(id)
	touch(item, createdOf(existing), createdOf(existing))

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("update %d: %v: %w", id, err, ErrInvalid)
			}
			return fmt.Errorf("update %d: %w", id, err)
		}
		for _, assoc := range s.preloads {
			children := reflect.ValueOf(item).Elem().FieldByName(assoc)
			if !children.IsValid() {
				continue
			}
			// full save so existing child rows take their new values, not
			// only the foreign key
			full := tx.Session(&gorm.Session{FullSaveAssociations: true})
			if err := full.Model(item).Association(assoc).Unscoped().Replace(children.Addr().Interface()); err != nil {
				return fmt.Errorf("update %d %s: %w", id, assoc, err)
			}
		}
		return nil
	})
}

func (s *GormStore[T]) Delete(ctx context.Context, id uint) error {
	// child rows are deleted by parent id alone, so the scoped lookup has to
	// succeed first
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Scopes(s.scopes...)
		if len(s.preloads) > 0 {
			q = q.Select(s.preloads)
		}
		result := q.Delete(item)
		if result.Error != nil {
			return fmt.Errorf("delete %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (s *GormStore[T]) codeTaken(ctx context.Context, code string) (bool, error) {
	c, ok := any(new(T)).(Coded)
	if !ok {
		return false, nil
	}
	column, err := s.codeColumn(c)
	if err != nil {
		return false, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where(column+" = ?", code).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return n > 0, nil
}

// codeColumn finds the column that GetCode reads by setting a marker value.
func (s *GormStore[T]) codeColumn(c Coded) (string, error) {
	const marker = "\x00marker"
	c.SetCode(marker)
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(new(T)); err != nil {
		return "", err
	}
	v := reflect.ValueOf(c).Elem()
	for _, f := range stmt.Schema.Fields {
		fv, isZero := f.ValueOf(context.Background(), v)
		if !isZero {
			if str, ok := fv.(string); ok && str == marker {
				return f.DBName, nil
			}
		}
	}
	return "", fmt.Errorf("no code column on %T", c)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
