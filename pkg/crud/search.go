package crud

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

var timeType = reflect.TypeOf(time.Time{})

// Matches reports whether query occurs, ignoring case, in the string form of
// any field of item. Nested structs and slices (custody items) are searched
// too. Fields tagged json:"-" or search:"-" are skipped. An empty query
// matches everything.
func Matches(item any, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	// Casers keep state and cannot be shared between goroutines.
	folder := cases.Fold()
	needle := folder.String(query)
	found := false
	walkValues(reflect.ValueOf(item), func(s string) bool {
		if strings.Contains(folder.String(s), needle) {
			found = true
			return false
		}
		return true
	})
	return found
}

// walkValues calls fn with the string form of every leaf value until fn
// returns false.
func walkValues(v reflect.Value, fn func(string) bool) bool {
	if !v.IsValid() {
		return true
	}
	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return true
		}
		return fn(t.Format("2006-01-02"))
	}
	if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return fn(s.String())
		}
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return walkValues(v.Elem(), fn)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if f := v.Type().Field(i); !f.IsExported() || hidden(f) {
				continue
			}
			if !walkValues(v.Field(i), fn) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			// raw JSON columns
			return fn(string(v.Bytes()))
		}
		for i := 0; i < v.Len(); i++ {
			if !walkValues(v.Index(i), fn) {
				return false
			}
		}
		return true
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !walkValues(iter.Value(), fn) {
				return false
			}
		}
		return true
	case reflect.String:
		if v.String() == "" {
			return true
		}
		return fn(v.String())
	case reflect.Float32, reflect.Float64:
		return fn(strconv.FormatFloat(v.Float(), 'f', -1, 64))
	default:
		return fn(fmt.Sprint(v.Interface()))
	}
}

func hidden(f reflect.StructField) bool {
	return f.Tag.Get("json") == "-" || f.Tag.Get("search") == "-"
}
