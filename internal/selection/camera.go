package selection

import "github.com/go-gl/mathgl/mgl32"

// Camera matrix builders. All follow the OpenGL convention: right-handed
// eye space looking down -Z, clip-space depth in [-1, 1].

// Perspective returns a perspective projection with vertical field of view
// fovY (radians), aspect ratio width/height and near/far plane distances.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	return mgl32.Perspective(fovY, aspect, near, far)
}

// Orthographic returns an orthographic projection of the given box.
func Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	return mgl32.Ortho(left, right, bottom, top, near, far)
}

// LookAt returns a view matrix for a camera at eye looking at center. up
// must not be parallel to the viewing direction.
func LookAt(eye, center, up Vec3) Mat4 {
	return mgl32.LookAtV(eye, center, up)
}
