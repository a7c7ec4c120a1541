// Package extract recovers structured JSON from free text produced by a
// generative model. Extraction never fails: a caller always gets back either a
// parsed value of the requested shape or the default it supplied.
package extract

// Shape is the top-level JSON kind a caller expects.
type Shape int

const (
	// ObjectShape is a single JSON object.
	ObjectShape Shape = iota
	// ArrayOfObjectsShape is a JSON array whose elements are all objects.
	ArrayOfObjectsShape
)

func (s Shape) String() string {
	switch s {
	case ObjectShape:
		return "object"
	case ArrayOfObjectsShape:
		return "array_of_objects"
	default:
		return "unknown"
	}
}

// delimiters returns the bracket pair that encloses a value of this shape.
func (s Shape) delimiters() (open, close byte) {
	if s == ArrayOfObjectsShape {
		return '[', ']'
	}
	return '{', '}'
}

// Conforms reports whether v, as produced by encoding/json decoding into an
// interface value, has this shape. An empty array conforms to
// ArrayOfObjectsShape.
func (s Shape) Conforms(v any) bool {
	switch s {
	case ObjectShape:
		_, ok := v.(map[string]any)
		return ok
	case ArrayOfObjectsShape:
		items, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if _, ok := item.(map[string]any); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
