package models

import "fmt"

// SceneCoordinate marks where on a scene image a guess was placed.
// Every field is optional; nil X/Y means the scene has not been placed yet.
// JSON: { "filename": "Scenes/SME/a.jpg", "x": 1.5, "y": 2 }
type SceneCoordinate struct {
	Filename *string  `json:"filename,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
}

// NewSceneCoordinate builds a placed coordinate.
func NewSceneCoordinate(filename string, x, y float64) SceneCoordinate {
	return SceneCoordinate{Filename: &filename, X: &x, Y: &y}
}

// Placed reports whether both coordinates are present.
func (c SceneCoordinate) Placed() bool {
	return c.X != nil && c.Y != nil
}

// Equals compares field values, treating two nil fields as equal.
func (c SceneCoordinate) Equals(other SceneCoordinate) bool {
	return eqPtr(c.Filename, other.Filename) && eqPtr(c.X, other.X) && eqPtr(c.Y, other.Y)
}

func (c SceneCoordinate) String() string {
	name := "<nil>"
	if c.Filename != nil {
		name = *c.Filename
	}
	return fmt.Sprintf("%s(%s, %s)", name, fmtFloat(c.X), fmtFloat(c.Y))
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *f)
}
