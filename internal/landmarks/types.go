package landmarks

import (
	"context"
	"fmt"
	"image"
)

// Key mesh topology indices. The detector returns a fixed-topology face mesh
// in which each array position always maps to the same anatomical point.
const (
	NoseTip       = 1
	BrowCenter    = 8
	ForeheadTop   = 10
	LeftEyeOuter  = 33
	Chin          = 152
	LeftMouth     = 61
	RightEyeOuter = 263
	RightMouth    = 291
	LeftTemple    = 234
	RightTemple   = 454

	// MinMeshPoints is the smallest mesh size the topology constants are
	// valid for (478 with iris refinement enabled).
	MinMeshPoints = 468
)

// Point is a single normalized landmark in [0,1]x[0,1] image space, with an
// optional relative depth component.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Set is an immutable, topology-indexed landmark mesh for one face,
// produced once per frame and discarded after the frame is processed.
type Set struct {
	points []Point
}

// NewSet validates the mesh length against the fixed topology.
func NewSet(points []Point) (*Set, error) {
	if len(points) < MinMeshPoints {
		return nil, fmt.Errorf("landmark mesh has %d points, need at least %d", len(points), MinMeshPoints)
	}
	return &Set{points: points}, nil
}

// Len returns the number of mesh points.
func (s *Set) Len() int {
	return len(s.points)
}

// At returns the normalized landmark at the given topology index.
func (s *Set) At(i int) Point {
	return s.points[i]
}

// Pixel converts the landmark at index i to pixel coordinates for a frame of
// the given dimensions.
func (s *Set) Pixel(i, width, height int) (float64, float64) {
	p := s.points[i]
	return p.X * float64(width), p.Y * float64(height)
}

// Detector locates the single most-confident face in a frame and returns its
// landmark mesh, or (nil, nil) when no face is present.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) (*Set, error)
}
