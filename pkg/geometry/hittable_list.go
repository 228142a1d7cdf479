package geometry

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// HittableList is an insertion-ordered aggregate of shapes.
// Hit is a linear scan; the list is read-only once rendering starts.
type HittableList struct {
	shapes []Shape
}

// NewHittableList creates a list holding the given shapes
func NewHittableList(shapes ...Shape) *HittableList {
	list := &HittableList{}
	list.Add(shapes...)
	return list
}

// Add appends shapes to the list
func (l *HittableList) Add(shapes ...Shape) {
	l.shapes = append(l.shapes, shapes...)
}

// Clear removes every shape
func (l *HittableList) Clear() {
	l.shapes = nil
}

// Len returns the number of shapes
func (l *HittableList) Len() int {
	return len(l.shapes)
}

// Shapes returns the shapes in insertion order
func (l *HittableList) Shapes() []Shape {
	return l.shapes
}

// Hit returns the closest intersection among all shapes.
// Each hit narrows tMax to its t. The range is inclusive, so on an exact tie the later shape wins.
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range l.shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}
