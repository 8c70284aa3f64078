package playbyplay

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Group maps player names to values and remembers the order names were first seen.
// It marshals as a JSON object in that order.
type Group[T any] struct {
	names []string
	items map[string][]T
}

// NewGroup returns an empty group.
func NewGroup[T any]() *Group[T] {
	return &Group[T]{items: make(map[string][]T)}
}

// Names returns player names in first-seen order.
func (g *Group[T]) Names() []string {
	return append([]string(nil), g.names...)
}

// Get returns the values recorded for name.
func (g *Group[T]) Get(name string) []T {
	return g.items[name]
}

// Has reports whether name has been registered.
func (g *Group[T]) Has(name string) bool {
	_, ok := g.items[name]
	return ok
}

// Len returns the number of names.
func (g *Group[T]) Len() int {
	return len(g.names)
}

// Ensure registers name with an empty list if it is not present yet.
func (g *Group[T]) Ensure(name string) {
	if _, ok := g.items[name]; ok {
		return
	}
	g.names = append(g.names, name)
	g.items[name] = []T{}
}

// Add appends v to name's values, registering name if needed.
func (g *Group[T]) Add(name string, v T) {
	g.Ensure(name)
	g.items[name] = append(g.items[name], v)
}

// Flatten concatenates all values in name order.
func (g *Group[T]) Flatten() []T {
	var out []T
	for _, name := range g.names {
		out = append(out, g.items[name]...)
	}
	return out
}

func (g *Group[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range g.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(g.items[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (g *Group[T]) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("player group: expected object, got %v", tok)
	}
	g.names = nil
	g.items = make(map[string][]T)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("player group: expected key, got %v", tok)
		}
		var vals []T
		if err := dec.Decode(&vals); err != nil {
			return fmt.Errorf("player group %q: %w", name, err)
		}
		g.Ensure(name)
		g.items[name] = append(g.items[name], vals...)
	}
	_, err = dec.Token()
	return err
}
