package core

import (
	"fmt"
	"maps"
)

// Kind tags which shape a Result carries.
type Kind int

const (
	KindNone Kind = iota
	KindOne
	KindMany
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindOne:
		return "one"
	case KindMany:
		return "many"
	case KindData:
		return "data"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is what a Handler returns. The handler picks the shape explicitly, so
// the engine never has to inspect the value to decide how to render it.
type Result struct {
	kind  Kind
	value any
	data  map[string]any
}

// None is the result of a handler that produces nothing.
func None() Result {
	return Result{kind: KindNone}
}

// One wraps a single record.
func One(record any) Result {
	return Result{kind: KindOne, value: record}
}

// Many wraps a sequence of records. The slice is kept as given, so JSON
// clients see exactly what the handler returned.
func Many[T any](records []T) Result {
	if records == nil {
		records = []T{}
	}
	return Result{kind: KindMany, value: records}
}

// Data hands a ready-made render context to the template. JSON clients get the
// map itself.
func Data(data map[string]any) Result {
	return Result{kind: KindData, value: data, data: data}
}

func (r Result) Kind() Kind {
	return r.kind
}

// Value returns the raw handler value: nil, the record, the slice or the map.
func (r Result) Value() any {
	return r.value
}

// ContextKeys names the render context fields single records and sequences
// are exposed under.
type ContextKeys struct {
	Item  string
	Items string
}

var DefaultContextKeys = ContextKeys{Item: "item", Items: "items"}

// Context converts the result into the render context handed to templates.
func (r Result) Context(keys ContextKeys) (map[string]any, error) {
	switch r.kind {
	case KindNone:
		return map[string]any{}, nil
	case KindOne:
		if keys.Item == "" {
			return nil, fmt.Errorf("%w: empty field name for single record", ErrConversion)
		}
		if r.value == nil {
			return nil, fmt.Errorf("%w: single record is nil", ErrConversion)
		}
		return map[string]any{keys.Item: r.value}, nil
	case KindMany:
		if keys.Items == "" {
			return nil, fmt.Errorf("%w: empty field name for records", ErrConversion)
		}
		return map[string]any{keys.Items: r.value}, nil
	case KindData:
		if r.data == nil {
			return map[string]any{}, nil
		}
		return maps.Clone(r.data), nil
	default:
		return nil, fmt.Errorf("%w: unknown result %s", ErrConversion, r.kind)
	}
}
