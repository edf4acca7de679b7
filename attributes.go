package grove

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Attributes is a per-object store for side data. It holds two kinds of
// entries: extensions, keyed by their Go type, and named attributes, keyed
// by string. The zero value is ready to use.
//
// Extensions let subsystems attach typed payloads to nodes, states and
// behavior statuses without changing those types.
type Attributes struct {
	extensions map[reflect.Type]any
	named      map[string]any
}

// AttributeProvider is implemented by every type that carries Attributes.
type AttributeProvider interface {
	Attributes() *Attributes
}

// AddExtension stores v as p's extension of type T, replacing any previous
// extension of that type.
func AddExtension[T any](p AttributeProvider, v T) {
	a := p.Attributes()
	if a.extensions == nil {
		a.extensions = make(map[reflect.Type]any)
	}
	a.extensions[reflect.TypeFor[T]()] = v
}

// GetExtension returns p's extension of type T, if present.
func GetExtension[T any](p AttributeProvider) (T, bool) {
	v, ok := p.Attributes().extensions[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// RequireExtension returns p's extension of type T. Panics if absent.
func RequireExtension[T any](p AttributeProvider) T {
	v, ok := GetExtension[T](p)
	if !ok {
		panic(fmt.Sprintf("grove: required extension %v is missing", reflect.TypeFor[T]()))
	}
	return v
}

// HasExtension reports whether p has an extension of type T.
func HasExtension[T any](p AttributeProvider) bool {
	_, ok := p.Attributes().extensions[reflect.TypeFor[T]()]
	return ok
}

// RemoveExtension removes p's extension of type T and reports whether one
// was present.
func RemoveExtension[T any](p AttributeProvider) bool {
	a := p.Attributes()
	key := reflect.TypeFor[T]()
	if _, ok := a.extensions[key]; !ok {
		return false
	}
	delete(a.extensions, key)
	return true
}

// SetAttribute stores a named attribute.
func (a *Attributes) SetAttribute(name string, v any) {
	if a.named == nil {
		a.named = make(map[string]any)
	}
	a.named[name] = v
}

// Attribute returns the named attribute, if present.
func (a *Attributes) Attribute(name string) (any, bool) {
	v, ok := a.named[name]
	return v, ok
}

// RemoveAttribute deletes a named attribute.
func (a *Attributes) RemoveAttribute(name string) {
	delete(a.named, name)
}

// AttributeNames returns the names of all named attributes, sorted.
func (a *Attributes) AttributeNames() []string {
	names := make([]string, 0, len(a.named))
	for k := range a.named {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// SetAttributesFromString parses "key=value" pairs separated by ';' and
// stores them as named attributes. Values are stored as float64, bool or
// string, whichever parses first. Malformed pairs are logged and skipped.
// Returns the number of attributes set.
func (a *Attributes) SetAttributesFromString(s string) int {
	count := 0
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			Logger().Warn("grove: malformed attribute", slog.String("pair", pair))
			continue
		}
		a.SetAttribute(key, parseAttributeValue(strings.TrimSpace(value)))
		count++
	}
	return count
}

func parseAttributeValue(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

// cloneNamed returns a copy holding the named attributes only. Extensions
// describe the relationship of one object to others and are not copied.
func (a *Attributes) cloneNamed() Attributes {
	if len(a.named) == 0 {
		return Attributes{}
	}
	named := make(map[string]any, len(a.named))
	for k, v := range a.named {
		named[k] = v
	}
	return Attributes{named: named}
}
