package calcs

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/CodedInternet/gonao/onboard/perceptor"
)

func calculateCentroid(points []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// Centroid is the mean of points, or false if there are none.
func Centroid(points []mgl64.Vec3) (mgl64.Vec3, bool) {
	if len(points) == 0 {
		return mgl64.Vec3{}, false
	}
	return calculateCentroid(points), true
}

// PlayerPosition estimates where a seen player is, relative to the camera,
// from the centroid of its visible body parts.
func PlayerPosition(ps perceptor.PlayerSighting) (mgl64.Vec3, bool) {
	points := make([]mgl64.Vec3, len(ps.Parts))
	for i, part := range ps.Parts {
		points[i] = PolarToCartesian(part.Bearing)
	}
	return Centroid(points)
}
