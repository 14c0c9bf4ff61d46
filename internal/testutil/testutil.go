// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"errors"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// IdentityMatrix returns a fresh column-major 4x4 identity matrix.
func IdentityMatrix() []float32 {
	return []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// NDCForScreen inverts the NDC to screen pixel mapping, so that a point at
// (x, y, 0) under identity transforms lands on (sx, sy).
func NDCForScreen(sx, sy float32, width, height uint32) (x, y float32) {
	x = sx/float32(width)*2 - 1
	y = (1-sy/float32(height))*2 - 1
	return x, y
}

// PointsAtScreen returns a flat XYZ buffer with one point per screen
// position, each at z = 0, for use with identity transforms.
func PointsAtScreen(width, height uint32, screen ...[2]float32) []float32 {
	out := make([]float32, 0, 3*len(screen))
	for _, s := range screen {
		x, y := NDCForScreen(s[0], s[1], width, height)
		out = append(out, x, y, 0)
	}
	return out
}
